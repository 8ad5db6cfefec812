package a

import "context"

func bad(storyID string, ctx context.Context) error { // want "context.Context should be the first parameter of bad"
	_ = ctx
	_ = storyID
	return nil
}

func badGrouped(a, b string, ctx context.Context, c int) { // want "context.Context should be the first parameter of badGrouped"
	_, _, _, _ = a, b, ctx, c
}

func good(ctx context.Context, storyID string) error {
	_ = ctx
	_ = storyID
	return nil
}

func goodNoContext(storyID string) {
	_ = storyID
}

type svc struct{}

func (s *svc) bad(id string, ctx context.Context) { // want "context.Context should be the first parameter of bad"
	_, _ = id, ctx
}

func (s *svc) good(ctx context.Context, id string) {
	_, _ = ctx, id
}
