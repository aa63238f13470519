package store

import "context"

// ThoughtRepository holds every stored thought, expired ones included.
// Visibility rules live in the feed service.
type ThoughtRepository struct {
	c collection[TodaysThought]
}

func NewThoughtRepository(kv KV) *ThoughtRepository {
	return &ThoughtRepository{c: collection[TodaysThought]{kv: kv}}
}

func (r *ThoughtRepository) List(ctx context.Context) ([]TodaysThought, error) {
	return r.c.list(ctx, KeyThoughts)
}

func (r *ThoughtRepository) Update(ctx context.Context, fn func([]TodaysThought) ([]TodaysThought, error)) ([]TodaysThought, error) {
	return r.c.update(ctx, KeyThoughts, fn)
}

// Initialized reports whether the thoughts table has ever been written.
func (r *ThoughtRepository) Initialized(ctx context.Context) (bool, error) {
	return exists(ctx, r.c.kv, KeyThoughts)
}
