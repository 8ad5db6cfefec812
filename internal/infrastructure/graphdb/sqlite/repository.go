// Package sqlite provides a SQLite implementation of the GraphStore and
// ReviewStore interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/infrastructure/config"
)

// Repository implements ports.GraphStore and ports.ReviewStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Characters (typed nodes with life status and structured attributes)
	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'unknown',
		location TEXT,
		traits TEXT,
		backstory TEXT,
		motivations TEXT,
		strengths TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_characters_story ON characters(story_id);

	-- Plot nodes (one per narrative event; sequence is unique per story)
	CREATE TABLE IF NOT EXISTS plot_nodes (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		sequence_number INTEGER NOT NULL,
		importance INTEGER NOT NULL DEFAULT 0,
		tension INTEGER NOT NULL DEFAULT 0,
		characters_involved TEXT,
		locations TEXT,
		conflicts TEXT,
		themes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(story_id, sequence_number)
	);
	CREATE INDEX IF NOT EXISTS idx_plot_nodes_story ON plot_nodes(story_id);

	-- World rules (manually curated laws of the fictional world)
	CREATE TABLE IF NOT EXISTS world_rules (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		rule_type TEXT,
		severity TEXT NOT NULL DEFAULT 'moderate',
		consequences TEXT,
		exceptions TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_world_rules_story ON world_rules(story_id);

	-- Generic nodes (locations, items, conflicts, themes, motivations)
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_story ON nodes(story_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(story_id, kind);

	-- Relations (typed directed edges; endpoints checked at insert)
	CREATE TABLE IF NOT EXISTS relations (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		confidence REAL NOT NULL DEFAULT 0,
		trust_level INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_relations_story ON relations(story_id);
	CREATE INDEX IF NOT EXISTS idx_relations_type ON relations(story_id, type);
	CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id);
	CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id);

	-- Review queue (low-confidence extraction candidates awaiting a human)
	CREATE TABLE IF NOT EXISTS review_queue (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payload TEXT NOT NULL,
		source TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_review_queue_story ON review_queue(story_id, status);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// UpsertCharacter saves or updates a character, keyed by ID.
func (r *Repository) UpsertCharacter(ctx context.Context, c *entities.Character) error {
	traits, err := marshalList(c.Traits)
	if err != nil {
		return err
	}
	motivations, err := marshalList(c.Motivations)
	if err != nil {
		return err
	}
	strengths, err := marshalList(c.Strengths)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO characters (id, story_id, name, status, location, traits, backstory, motivations, strengths, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			location = excluded.location,
			traits = excluded.traits,
			backstory = excluded.backstory,
			motivations = excluded.motivations,
			strengths = excluded.strengths,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.StoryID, c.Name, string(c.Status), c.Location,
		traits, c.Backstory, motivations, strengths,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

// UpsertPlotNode saves or updates a plot node, keyed by ID. The unique
// (story_id, sequence_number) constraint rejects a second node at the same
// narrative position.
func (r *Repository) UpsertPlotNode(ctx context.Context, p *entities.PlotNode) error {
	chars, err := marshalList(p.CharactersInvolved)
	if err != nil {
		return err
	}
	locations, err := marshalList(p.Locations)
	if err != nil {
		return err
	}
	conflicts, err := marshalList(p.Conflicts)
	if err != nil {
		return err
	}
	themes, err := marshalList(p.Themes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO plot_nodes (id, story_id, title, description, sequence_number, importance, tension, characters_involved, locations, conflicts, themes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			sequence_number = excluded.sequence_number,
			importance = excluded.importance,
			tension = excluded.tension,
			characters_involved = excluded.characters_involved,
			locations = excluded.locations,
			conflicts = excluded.conflicts,
			themes = excluded.themes,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.StoryID, p.Title, p.Description, p.SequenceNumber,
		p.Importance, p.Tension, chars, locations, conflicts, themes,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving plot node: %w", err)
	}
	return nil
}

// UpsertWorldRule saves or updates a world rule, keyed by ID.
func (r *Repository) UpsertWorldRule(ctx context.Context, rule *entities.WorldRule) error {
	consequences, err := marshalList(rule.Consequences)
	if err != nil {
		return err
	}
	exceptions, err := marshalList(rule.Exceptions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO world_rules (id, story_id, name, description, rule_type, severity, consequences, exceptions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			rule_type = excluded.rule_type,
			severity = excluded.severity,
			consequences = excluded.consequences,
			exceptions = excluded.exceptions
	`
	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.StoryID, rule.Name, rule.Description, rule.RuleType,
		string(rule.Severity), consequences, exceptions, rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving world rule: %w", err)
	}
	return nil
}

// UpsertNode saves or updates a generic node, keyed by ID.
func (r *Repository) UpsertNode(ctx context.Context, n *entities.GenericNode) error {
	query := `
		INSERT INTO nodes (id, story_id, kind, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.StoryID, string(n.Kind), n.Name, n.Description,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving node: %w", err)
	}
	return nil
}

// CreateRelation saves a relation, rejecting endpoints that do not exist.
func (r *Repository) CreateRelation(ctx context.Context, rel *entities.Relation) error {
	for _, endpoint := range []string{rel.SourceID, rel.TargetID} {
		exists, err := r.NodeExists(ctx, endpoint)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("relation endpoint does not exist: %s", endpoint)
		}
	}

	query := `
		INSERT INTO relations (id, story_id, source_id, target_id, type, description, confidence, trust_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			confidence = excluded.confidence,
			trust_level = excluded.trust_level
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID, rel.StoryID, rel.SourceID, rel.TargetID, string(rel.Type),
		rel.Description, rel.Confidence, rel.TrustLevel, rel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving relation: %w", err)
	}
	return nil
}

// NodeExists reports whether any node of any kind has the given ID.
func (r *Repository) NodeExists(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT 1 FROM characters WHERE id = ?
		UNION SELECT 1 FROM plot_nodes WHERE id = ?
		UNION SELECT 1 FROM world_rules WHERE id = ?
		UNION SELECT 1 FROM nodes WHERE id = ?
		LIMIT 1
	`
	var one int
	err := r.db.QueryRowContext(ctx, query, id, id, id, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking node existence: %w", err)
	}
	return true, nil
}

// DeleteNode removes a node and every relation touching it.
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"characters", "plot_nodes", "world_rules", "nodes"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id); err != nil {
			return fmt.Errorf("deleting node: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM relations WHERE source_id = ? OR target_id = ?", id, id); err != nil {
		return fmt.Errorf("deleting relations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// CharactersByStory returns all characters of a story, ordered by name.
func (r *Repository) CharactersByStory(ctx context.Context, storyID string) ([]entities.Character, error) {
	query := `
		SELECT id, story_id, name, status, location, traits, backstory, motivations, strengths, created_at, updated_at
		FROM characters
		WHERE story_id = ?
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	chars := make([]entities.Character, 0, 16)
	for rows.Next() {
		var c entities.Character
		var status string
		var location, traits, backstory, motivations, strengths sql.NullString

		if err := rows.Scan(
			&c.ID, &c.StoryID, &c.Name, &status, &location,
			&traits, &backstory, &motivations, &strengths,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}

		c.Status = entities.CharacterStatus(status)
		c.Location = location.String
		c.Backstory = backstory.String
		if c.Traits, err = unmarshalList(traits); err != nil {
			return nil, err
		}
		if c.Motivations, err = unmarshalList(motivations); err != nil {
			return nil, err
		}
		if c.Strengths, err = unmarshalList(strengths); err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// PlotNodesByStory returns all plot nodes of a story, ordered by sequence.
func (r *Repository) PlotNodesByStory(ctx context.Context, storyID string) ([]entities.PlotNode, error) {
	query := `
		SELECT id, story_id, title, description, sequence_number, importance, tension, characters_involved, locations, conflicts, themes, created_at, updated_at
		FROM plot_nodes
		WHERE story_id = ?
		ORDER BY sequence_number ASC
	`
	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("querying plot nodes: %w", err)
	}
	defer rows.Close()

	plots := make([]entities.PlotNode, 0, 16)
	for rows.Next() {
		var p entities.PlotNode
		var description, chars, locations, conflicts, themes sql.NullString

		if err := rows.Scan(
			&p.ID, &p.StoryID, &p.Title, &description, &p.SequenceNumber,
			&p.Importance, &p.Tension, &chars, &locations, &conflicts, &themes,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning plot node: %w", err)
		}

		p.Description = description.String
		if p.CharactersInvolved, err = unmarshalList(chars); err != nil {
			return nil, err
		}
		if p.Locations, err = unmarshalList(locations); err != nil {
			return nil, err
		}
		if p.Conflicts, err = unmarshalList(conflicts); err != nil {
			return nil, err
		}
		if p.Themes, err = unmarshalList(themes); err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}

// WorldRulesByStory returns all world rules of a story, ordered by name.
func (r *Repository) WorldRulesByStory(ctx context.Context, storyID string) ([]entities.WorldRule, error) {
	query := `
		SELECT id, story_id, name, description, rule_type, severity, consequences, exceptions, created_at
		FROM world_rules
		WHERE story_id = ?
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("querying world rules: %w", err)
	}
	defer rows.Close()

	rules := make([]entities.WorldRule, 0, 16)
	for rows.Next() {
		var rule entities.WorldRule
		var severity string
		var description, ruleType, consequences, exceptions sql.NullString

		if err := rows.Scan(
			&rule.ID, &rule.StoryID, &rule.Name, &description, &ruleType,
			&severity, &consequences, &exceptions, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning world rule: %w", err)
		}

		rule.Severity = entities.RuleSeverity(severity)
		rule.Description = description.String
		rule.RuleType = ruleType.String
		if rule.Consequences, err = unmarshalList(consequences); err != nil {
			return nil, err
		}
		if rule.Exceptions, err = unmarshalList(exceptions); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// NodesByStory returns all generic nodes of one kind, ordered by name.
func (r *Repository) NodesByStory(ctx context.Context, storyID string, kind entities.NodeKind) ([]entities.GenericNode, error) {
	query := `
		SELECT id, story_id, kind, name, description, created_at, updated_at
		FROM nodes
		WHERE story_id = ? AND kind = ?
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, storyID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]entities.GenericNode, 0, 16)
	for rows.Next() {
		var n entities.GenericNode
		var nodeKind string
		var description sql.NullString

		if err := rows.Scan(
			&n.ID, &n.StoryID, &nodeKind, &n.Name, &description,
			&n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}

		n.Kind = entities.NodeKind(nodeKind)
		n.Description = description.String
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// RelationsByStory returns all relations of a story.
func (r *Repository) RelationsByStory(ctx context.Context, storyID string) ([]entities.Relation, error) {
	query := `
		SELECT id, story_id, source_id, target_id, type, description, confidence, trust_level, created_at
		FROM relations
		WHERE story_id = ?
		ORDER BY created_at DESC
	`
	return r.queryRelations(ctx, query, storyID)
}

// RelationsByType returns all relations of one type within a story.
func (r *Repository) RelationsByType(ctx context.Context, storyID string, relType entities.RelationType) ([]entities.Relation, error) {
	query := `
		SELECT id, story_id, source_id, target_id, type, description, confidence, trust_level, created_at
		FROM relations
		WHERE story_id = ? AND type = ?
		ORDER BY created_at DESC
	`
	return r.queryRelations(ctx, query, storyID, string(relType))
}

// queryRelations is a helper to execute relation queries.
func (r *Repository) queryRelations(ctx context.Context, query string, args ...any) ([]entities.Relation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	relations := make([]entities.Relation, 0, 16)
	for rows.Next() {
		var rel entities.Relation
		var relType string
		var description sql.NullString

		if err := rows.Scan(
			&rel.ID, &rel.StoryID, &rel.SourceID, &rel.TargetID, &relType,
			&description, &rel.Confidence, &rel.TrustLevel, &rel.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}

		rel.Type = entities.RelationType(relType)
		rel.Description = description.String
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

// CreateReview stores a new review queue entry.
func (r *Repository) CreateReview(ctx context.Context, entry *entities.ReviewQueueEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshaling review payload: %w", err)
	}

	query := `
		INSERT INTO review_queue (id, story_id, status, payload, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.StoryID, string(entry.Status), string(payload),
		entry.Source, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving review entry: %w", err)
	}
	return nil
}

// ReviewByID returns a review queue entry, or nil if it does not exist.
func (r *Repository) ReviewByID(ctx context.Context, id string) (*entities.ReviewQueueEntry, error) {
	query := `
		SELECT id, story_id, status, payload, source, created_at, updated_at
		FROM review_queue
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, id)

	entry, err := scanReview(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ReviewsByStory lists review entries for a story, newest first. An empty
// status matches all statuses.
func (r *Repository) ReviewsByStory(ctx context.Context, storyID string, status entities.ReviewStatus, limit, offset int) ([]entities.ReviewQueueEntry, error) {
	query := `
		SELECT id, story_id, status, payload, source, created_at, updated_at
		FROM review_queue
		WHERE story_id = ? AND (? = '' OR status = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, storyID, string(status), string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying review entries: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.ReviewQueueEntry, 0, limit)
	for rows.Next() {
		entry, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// UpdateReviewStatus moves an entry to a terminal status.
func (r *Repository) UpdateReviewStatus(ctx context.Context, id string, status entities.ReviewStatus) error {
	query := `UPDATE review_queue SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("updating review status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("review entry not found: %s", id)
	}
	return nil
}

// scanReview scans one review_queue row through the given scan function.
func scanReview(scan func(...any) error) (*entities.ReviewQueueEntry, error) {
	var entry entities.ReviewQueueEntry
	var status, payload string
	var source sql.NullString

	err := scan(
		&entry.ID, &entry.StoryID, &status, &payload, &source,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning review entry: %w", err)
	}

	entry.Status = entities.ReviewStatus(status)
	entry.Source = source.String
	if err := json.Unmarshal([]byte(payload), &entry.Payload); err != nil {
		return nil, fmt.Errorf("unmarshaling review payload: %w", err)
	}
	return &entry, nil
}

// marshalList JSON-encodes a string list column; nil encodes as NULL.
func marshalList(list []string) (any, error) {
	if len(list) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("marshaling list column: %w", err)
	}
	return string(data), nil
}

// unmarshalList decodes a JSON string list column; NULL decodes as nil.
func unmarshalList(col sql.NullString) ([]string, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(col.String), &list); err != nil {
		return nil, fmt.Errorf("unmarshaling list column: %w", err)
	}
	return list, nil
}
