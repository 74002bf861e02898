// Package kiosk runs one dispenser as a shared service: it serializes callers, persists
// every state change, and keeps a log of dispensed products.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

const defaultDispenseLimit = 50

// Service serializes access to one dispenser and persists every change through a Repository.
type Service struct {
	mu      sync.Mutex
	machine *dispenser.Dispenser
	repo    Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wraps machine. A nil logger disables logging.
func NewService(machine *dispenser.Dispenser, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		machine: machine,
		repo:    repo,
		logger:  logger,
		now:     time.Now,
	}
}

// Load restores persisted state into the machine. With nothing persisted yet, the
// machine's current state is written out instead.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, found, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load machine state: %w", err)
	}
	if !found {
		if err := s.repo.Save(ctx, s.machine.State()); err != nil {
			return fmt.Errorf("save initial machine state: %w", err)
		}
		s.logger.Info("initialized machine state")
		return nil
	}

	if err := s.machine.Restore(state); err != nil {
		return fmt.Errorf("restore machine state: %w", err)
	}
	s.logger.Info("restored machine state",
		zap.Int("coins", state.Coins),
		zap.Int("sugar", state.Sugar),
		zap.Int("sugar_level", state.SugarLevel),
	)
	return nil
}

// InsertCoin adds one coin and returns the resulting state.
func (s *Service) InsertCoin(ctx context.Context) (dispenser.State, error) {
	return s.mutate(ctx, "insert coin", func() error {
		return s.machine.InsertCoin()
	})
}

// SetSugarLevel selects the sugar level for following dispenses.
func (s *Service) SetSugarLevel(ctx context.Context, level int) (dispenser.State, error) {
	return s.mutate(ctx, "set sugar level", func() error {
		return s.machine.SetSugarLevel(level)
	}, zap.Int("sugar_level", level))
}

// AddResource tops up one ingredient.
func (s *Service) AddResource(ctx context.Context, ingredient string, amount int) (dispenser.State, error) {
	return s.mutate(ctx, "add resource", func() error {
		return s.machine.AddResource(ingredient, amount)
	}, zap.String("ingredient", ingredient), zap.Int("amount", amount))
}

// AddSugar tops up the sugar stock.
func (s *Service) AddSugar(ctx context.Context, amount int) (dispenser.State, error) {
	return s.mutate(ctx, "add sugar", func() error {
		return s.machine.AddSugar(amount)
	}, zap.Int("amount", amount))
}

// Dispense makes one product and records a receipt. If the result cannot be persisted
// the machine is rolled back and no coin is consumed.
func (s *Service) Dispense(ctx context.Context, product string) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.machine.State()

	debit, err := s.machine.Dispense(product)
	if err != nil {
		s.logger.Info("dispense rejected", zap.String("product", product), zap.Error(err))
		return Receipt{}, err
	}

	receipt := Receipt{
		ID:          uuid.NewString(),
		Product:     debit.Product,
		SugarLevel:  debit.SugarLevel,
		SugarUsed:   debit.SugarUsed,
		Portions:    debit.Portions,
		DispensedAt: s.now().UTC(),
	}

	if err := s.repo.SaveDispense(ctx, s.machine.State(), receipt); err != nil {
		s.rollback(before)
		s.logger.Error("persist dispense failed", zap.String("product", product), zap.Error(err))
		return Receipt{}, fmt.Errorf("persist dispense: %w", err)
	}

	s.logger.Info("dispensed",
		zap.String("receipt_id", receipt.ID),
		zap.String("product", product),
		zap.Int("sugar_level", receipt.SugarLevel),
		zap.Int("coins", s.machine.Coins()),
	)
	return receipt, nil
}

// Status returns a snapshot of the machine counters.
func (s *Service) Status() dispenser.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Catalog returns the machine's recipes.
func (s *Service) Catalog() dispenser.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Catalog()
}

// Servings reports how many units of product the current stock allows.
func (s *Service) Servings(product string) (Servings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.machine.MaxServings(product)
	if err != nil {
		return Servings{}, err
	}
	return Servings{Product: product, Servings: n}, nil
}

// Dispenses lists recent receipts, newest first. A non-positive limit uses the default.
func (s *Service) Dispenses(ctx context.Context, limit int) ([]Receipt, error) {
	if limit <= 0 {
		limit = defaultDispenseLimit
	}
	receipts, err := s.repo.ListDispenses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list dispenses: %w", err)
	}
	return receipts, nil
}

func (s *Service) mutate(ctx context.Context, op string, fn func() error, fields ...zap.Field) (dispenser.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.machine.State()

	if err := fn(); err != nil {
		s.logger.Info(op+" rejected", append(fields, zap.Error(err))...)
		return dispenser.State{}, err
	}

	after := s.machine.State()
	if err := s.repo.Save(ctx, after); err != nil {
		s.rollback(before)
		s.logger.Error(op+" not persisted", append(fields, zap.Error(err))...)
		return dispenser.State{}, fmt.Errorf("persist %s: %w", op, err)
	}

	s.logger.Debug(op, fields...)
	return after, nil
}

func (s *Service) rollback(before dispenser.State) {
	if err := s.machine.Restore(before); err != nil {
		// before came from this machine, so Restore cannot reject it.
		panic(errors.Join(errors.New("rollback machine state"), err))
	}
}
