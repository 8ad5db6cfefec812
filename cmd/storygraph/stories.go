package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/infrastructure/config"
	embedder "github.com/ersonp/storygraph/internal/infrastructure/embedder/openai"
	"github.com/ersonp/storygraph/internal/infrastructure/vectordb/qdrant"
)

func newStoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Manage stories",
		RunE:  runStoriesList,
	}

	cmd.AddCommand(
		newStoriesListCmd(),
		newStoriesCreateCmd(),
		newStoriesDeleteCmd(),
	)

	return cmd
}

func newStoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stories",
		RunE:  runStoriesList,
	}
}

func runStoriesList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	stories, err := config.LoadStories(cwd)
	if err != nil {
		return fmt.Errorf("loading stories: %w", err)
	}

	if len(stories.Stories) == 0 {
		fmt.Println("No stories configured.")
		fmt.Println("Use 'storygraph stories create NAME' to create a story.")
		return nil
	}

	fmt.Printf("%-20s %-30s %s\n", "NAME", "COLLECTION", "DESCRIPTION")
	fmt.Printf("%-20s %-30s %s\n", "----", "----------", "-----------")
	for name, story := range stories.Stories {
		fmt.Printf("%-20s %-30s %s\n", name, story.Collection, story.Description)
	}

	return nil
}

func newStoriesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoriesCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Story description")

	return cmd
}

func runStoriesCreate(cmd *cobra.Command, name, description string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if !config.Exists(cwd) {
		if err := config.WriteDefault(cwd); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		fmt.Printf("Initialized storygraph in %s\n", config.ConfigDir(cwd))
	}

	stories, err := config.LoadStories(cwd)
	if err != nil {
		return fmt.Errorf("loading stories: %w", err)
	}
	if stories.Exists(name) {
		return fmt.Errorf("story %q already exists", name)
	}

	collection := config.GenerateCollectionName(name)
	stories.Add(name, config.StoryEntry{
		Collection:  collection,
		Description: description,
	})
	if err := stories.Save(cwd); err != nil {
		return fmt.Errorf("saving stories: %w", err)
	}

	if err := os.MkdirAll(config.StoryDir(cwd, name), 0755); err != nil {
		return fmt.Errorf("creating story directory: %w", err)
	}

	fmt.Printf("Created story %q (collection %s)\n", name, collection)

	// The vector collection is created eagerly when Qdrant is reachable;
	// otherwise the first indexed extraction will need it created by hand.
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	qdrantCfg := cfg.Qdrant
	qdrantCfg.Collection = collection

	repo, err := qdrant.NewRepository(qdrantCfg)
	if err != nil {
		fmt.Printf("Warning: could not connect to Qdrant (%v); collection not created.\n", err)
		return nil
	}
	defer repo.Close()

	if err := repo.EnsureCollection(ctx, embedder.VectorSize); err != nil {
		fmt.Printf("Warning: could not create collection %s (%v).\n", collection, err)
		return nil
	}
	fmt.Printf("Created Qdrant collection %s\n", collection)

	return nil
}

func newStoriesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a story, its graph database, and its vector collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoriesDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}

func runStoriesDelete(cmd *cobra.Command, name string, force bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	stories, err := config.LoadStories(cwd)
	if err != nil {
		return fmt.Errorf("loading stories: %w", err)
	}
	entry, err := stories.Get(name)
	if err != nil {
		return err
	}

	if !force {
		fmt.Printf("Delete story %q and all its data? [y/N]: ", name)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	qdrantCfg := cfg.Qdrant
	qdrantCfg.Collection = entry.Collection

	if repo, err := qdrant.NewRepository(qdrantCfg); err == nil {
		defer repo.Close()
		if err := repo.DeleteByStory(ctx, name); err != nil {
			fmt.Printf("Warning: could not clear collection %s (%v).\n", entry.Collection, err)
		}
	}

	if err := os.RemoveAll(config.StoryDir(cwd, name)); err != nil {
		return fmt.Errorf("removing story directory: %w", err)
	}

	stories.Remove(name)
	if err := stories.Save(cwd); err != nil {
		return fmt.Errorf("saving stories: %w", err)
	}

	fmt.Printf("Deleted story %q\n", name)
	return nil
}
