package a

import "log/slog"

func bad() {
	slog.Info("committing nodes", "StoryID", "s1") // want `slog key "StoryID" is not lowercase snake_case`
	slog.Warn("check failed", "rule-name", "motivation") // want `slog key "rule-name" is not lowercase snake_case`
}

func badAfterAttr() {
	slog.Info("indexing", slog.Int("count", 3), "Story", "s1") // want `slog key "Story" is not lowercase snake_case`
}

func badLoggerVar() {
	logger := slog.Default()
	logger.Error("extraction failed", "ChunkIndex", 4) // want `slog key "ChunkIndex" is not lowercase snake_case`
}

func good() {
	slog.Info("committing nodes", "story_id", "s1", "node_count", 12)
	slog.Debug("chunked text", slog.Int("chunks", 7))
}

func goodMessageOnly() {
	slog.Info("pipeline finished")
}

type reporter struct{}

func (r reporter) Error(msg string, kv ...any) {}

func goodOtherReceiver(r reporter) {
	// Not a logger; values are positional, not keys.
	r.Error("x", "NotAKey", 1)
}
