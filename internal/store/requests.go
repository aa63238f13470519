package store

import (
	"context"

	"github.com/pkg/errors"
)

// RequestRepository is the append-only request ledger. Records are never
// removed; only their status changes.
type RequestRepository struct {
	c collection[ChatRequest]
}

func NewRequestRepository(kv KV) *RequestRepository {
	return &RequestRepository{c: collection[ChatRequest]{kv: kv}}
}

func (r *RequestRepository) List(ctx context.Context) ([]ChatRequest, error) {
	return r.c.list(ctx, KeyRequests)
}

func (r *RequestRepository) Update(ctx context.Context, fn func([]ChatRequest) ([]ChatRequest, error)) ([]ChatRequest, error) {
	return r.c.update(ctx, KeyRequests, fn)
}

// Get returns nil, nil when id is not in the ledger.
func (r *RequestRepository) Get(ctx context.Context, id string) (*ChatRequest, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "requestRepo.Get")
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}
