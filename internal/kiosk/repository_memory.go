package kiosk

import (
	"context"
	"sync"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

// InMemoryRepository keeps state and receipts in process memory.
type InMemoryRepository struct {
	mu       sync.Mutex
	state    *dispenser.State
	receipts []Receipt
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Load(ctx context.Context) (dispenser.State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return dispenser.State{}, false, nil
	}
	return copyState(*r.state), true, nil
}

func (r *InMemoryRepository) Save(ctx context.Context, state dispenser.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := copyState(state)
	r.state = &s
	return nil
}

func (r *InMemoryRepository) SaveDispense(ctx context.Context, state dispenser.State, receipt Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := copyState(state)
	r.state = &s
	r.receipts = append(r.receipts, receipt)
	return nil
}

func (r *InMemoryRepository) ListDispenses(ctx context.Context, limit int) ([]Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}
	out := make([]Receipt, 0, min(limit, len(r.receipts)))
	for i := len(r.receipts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.receipts[i])
	}
	return out, nil
}

func copyState(s dispenser.State) dispenser.State {
	stock := make(map[string]int, len(s.Stock))
	for k, v := range s.Stock {
		stock[k] = v
	}
	s.Stock = stock
	return s
}
