package kiosk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

type failingRepository struct {
	*InMemoryRepository
	err error
}

func (r *failingRepository) Save(ctx context.Context, state dispenser.State) error {
	return r.err
}

func (r *failingRepository) SaveDispense(ctx context.Context, state dispenser.State, receipt Receipt) error {
	return r.err
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc := NewService(dispenser.Default(), repo, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return svc
}

func TestService_DispenseRecordsReceipt(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	svc := newTestService(t, repo)

	_, err := svc.InsertCoin(ctx)
	require.NoError(t, err)
	_, err = svc.AddResource(ctx, dispenser.Coffee, 100)
	require.NoError(t, err)
	_, err = svc.AddResource(ctx, dispenser.Milk, 100)
	require.NoError(t, err)
	_, err = svc.AddSugar(ctx, 100)
	require.NoError(t, err)
	_, err = svc.SetSugarLevel(ctx, 5)
	require.NoError(t, err)

	receipt, err := svc.Dispense(ctx, dispenser.CoffeeWithMilk)
	require.NoError(t, err)
	require.NotEmpty(t, receipt.ID)
	require.Equal(t, dispenser.CoffeeWithMilk, receipt.Product)
	require.Equal(t, 15, receipt.SugarUsed)
	require.Equal(t, svc.now(), receipt.DispensedAt)

	status := svc.Status()
	require.Equal(t, 0, status.Coins)
	require.Equal(t, 85, status.Sugar)
	require.Equal(t, 70, status.Stock[dispenser.Coffee])
	require.Equal(t, 80, status.Stock[dispenser.Milk])

	stored, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, status, stored)

	receipts, err := svc.Dispenses(ctx, 0)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, receipt, receipts[0])
}

func TestService_RejectionLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	svc := newTestService(t, repo)

	_, err := svc.InsertCoin(ctx)
	require.NoError(t, err)

	_, err = svc.Dispense(ctx, dispenser.CoffeeAlone)
	require.ErrorIs(t, err, dispenser.ErrInsufficientIngredient)

	_, err = svc.AddResource(ctx, "cocoa", 10)
	require.ErrorIs(t, err, dispenser.ErrUnknownIngredient)

	stored, _, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Coins)

	receipts, err := svc.Dispenses(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestService_RollsBackWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemoryRepository()
	svc := newTestService(t, mem)

	_, err := svc.InsertCoin(ctx)
	require.NoError(t, err)
	_, err = svc.AddResource(ctx, dispenser.Coffee, 100)
	require.NoError(t, err)
	before := svc.Status()

	boom := errors.New("disk full")
	svc.repo = &failingRepository{InMemoryRepository: mem, err: boom}

	_, err = svc.Dispense(ctx, dispenser.CoffeeAlone)
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, svc.Status())

	_, err = svc.InsertCoin(ctx)
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, svc.Status())

	_, err = svc.SetSugarLevel(ctx, 3)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, svc.Status().SugarLevel)
}

func TestService_LoadRestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	require.NoError(t, repo.Save(ctx, dispenser.State{
		Coins:      3,
		Sugar:      40,
		SugarLevel: 2,
		Stock:      map[string]int{dispenser.Coffee: 90, dispenser.Tea: 20},
	}))

	svc := newTestService(t, repo)
	require.NoError(t, svc.Load(ctx))

	status := svc.Status()
	require.Equal(t, 3, status.Coins)
	require.Equal(t, 40, status.Sugar)
	require.Equal(t, 2, status.SugarLevel)
	require.Equal(t, 90, status.Stock[dispenser.Coffee])
	require.Equal(t, 0, status.Stock[dispenser.Milk])
}

func TestService_LoadWritesInitialState(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	svc := newTestService(t, repo)

	require.NoError(t, svc.Load(ctx))

	stored, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, svc.Status(), stored)
}

func TestService_LoadRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	require.NoError(t, repo.Save(ctx, dispenser.State{Coins: -1}))

	svc := newTestService(t, repo)
	require.ErrorIs(t, svc.Load(ctx), dispenser.ErrInvalidState)
}

func TestService_ConcurrentDispensesNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewInMemoryRepository())

	for i := 0; i < 50; i++ {
		_, err := svc.InsertCoin(ctx)
		require.NoError(t, err)
	}
	_, err := svc.AddResource(ctx, dispenser.Coffee, 30*20)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Dispense(ctx, dispenser.CoffeeAlone)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, dispenser.ErrInsufficientIngredient):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 20, succeeded)
	require.Equal(t, 30, short)

	status := svc.Status()
	require.Equal(t, 30, status.Coins)
	require.Equal(t, 0, status.Stock[dispenser.Coffee])
}

func TestService_Servings(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewInMemoryRepository())

	_, err := svc.AddResource(ctx, dispenser.Tea, 35)
	require.NoError(t, err)

	got, err := svc.Servings(dispenser.TeaSimple)
	require.NoError(t, err)
	require.Equal(t, Servings{Product: dispenser.TeaSimple, Servings: 3}, got)

	_, err = svc.Servings("mocha")
	require.ErrorIs(t, err, dispenser.ErrUnknownProduct)
}
