package kiosk

import (
	"context"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

// Repository persists machine state and the dispense log.
// Service depends only on this interface.
type Repository interface {
	// Load returns the stored state and false when nothing has been stored yet.
	Load(ctx context.Context) (dispenser.State, bool, error)
	Save(ctx context.Context, state dispenser.State) error
	// SaveDispense stores the post-dispense state and its receipt atomically.
	SaveDispense(ctx context.Context, state dispenser.State, receipt Receipt) error
	// ListDispenses returns up to limit receipts, newest first.
	ListDispenses(ctx context.Context, limit int) ([]Receipt, error)
}
