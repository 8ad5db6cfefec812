package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ersonp/storygraph/internal/application/handlers"
	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/domain/services"
	"github.com/ersonp/storygraph/internal/infrastructure/config"
	embedder "github.com/ersonp/storygraph/internal/infrastructure/embedder/openai"
	"github.com/ersonp/storygraph/internal/infrastructure/graphdb/sqlite"
	llm "github.com/ersonp/storygraph/internal/infrastructure/llm/openai"
	"github.com/ersonp/storygraph/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories stay internal.
type Deps struct {
	Config             *config.Config
	Stories            *config.StoriesConfig
	ExtractHandler     *handlers.ExtractHandler
	ConsistencyHandler *handlers.ConsistencyHandler
	ReviewHandler      *handlers.ReviewHandler
	EntityHandler      *handlers.EntityHandler
	RelationHandler    *handlers.RelationHandler
	RuleHandler        *handlers.RuleHandler
	QueryHandler       *handlers.QueryHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	graph    *sqlite.Repository
	vectorDB *qdrant.Repository
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level
// components. Used by commands that need direct repository access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	stories, err := config.LoadStories(cwd)
	if err != nil {
		return fmt.Errorf("loading stories: %w", err)
	}

	if globalStory == "" {
		return errors.New("story is required (use --story flag)")
	}
	if !stories.Exists(globalStory) {
		return fmt.Errorf("story %q not found (run 'storygraph stories create %s' first)", globalStory, globalStory)
	}

	aliases, err := config.LoadAliases(cwd)
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}

	graph, err := sqlite.NewRepository(config.SQLiteConfig{Path: config.SQLitePathForStory(cwd, globalStory)})
	if err != nil {
		return fmt.Errorf("creating graph store: %w", err)
	}
	defer graph.Close()

	if err := graph.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring graph schema: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}

	// The semantic index is best-effort: a missing embedder key or
	// unreachable Qdrant degrades search, never extraction.
	var (
		emb        ports.Embedder
		vectorRepo *qdrant.Repository
		vectorDB   ports.VectorDB
	)
	if e, err := embedder.NewEmbedder(cfg.Embedder); err != nil {
		slog.Warn("embedder unavailable, entity indexing disabled", "error", err)
	} else {
		emb = e

		qdrantCfg := cfg.Qdrant
		if qdrantCfg.Collection, err = stories.GetCollection(globalStory); err != nil {
			return err
		}
		if vectorRepo, err = qdrant.NewRepository(qdrantCfg); err != nil {
			slog.Warn("qdrant unavailable, entity indexing disabled", "error", err)
			emb = nil
		} else {
			defer vectorRepo.Close()
			vectorDB = vectorRepo
		}
	}

	extractor := services.NewExtractionService(llmClient, cfg.Pipeline.Workers)
	validator := services.NewValidator(llmClient)
	committer := services.NewCommitter(graph, graph, cfg.Pipeline.ConfidenceThreshold)
	pipeline := services.NewPipeline(extractor, validator, committer, graph, aliases.Table(), emb, vectorDB)

	scorer := services.NewScorer(cfg.Pipeline.SeverityPenalties, cfg.Pipeline.PassingThreshold)
	checker := services.NewConsistencyService(graph, scorer)
	queryService := services.NewQueryService(emb, vectorDB)

	deps := &internalDeps{
		Deps: Deps{
			Config:             cfg,
			Stories:            stories,
			ExtractHandler:     handlers.NewExtractHandler(pipeline),
			ConsistencyHandler: handlers.NewConsistencyHandler(checker),
			ReviewHandler:      handlers.NewReviewHandler(pipeline, graph),
			EntityHandler:      handlers.NewEntityHandler(graph),
			RelationHandler:    handlers.NewRelationHandler(graph),
			RuleHandler:        handlers.NewRuleHandler(graph),
			QueryHandler:       handlers.NewQueryHandler(queryService),
		},
		graph:    graph,
		vectorDB: vectorRepo,
	}

	return fn(deps)
}
