package kiosk

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/brewbox/internal/db"
	"github.com/Simplici0/brewbox/internal/dispenser"
	"github.com/Simplici0/brewbox/internal/migrations"
)

func newSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "kiosk-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, migrations.Up(ctx, database))
	return NewSQLiteRepository(database)
}

func TestSQLiteRepository_LoadEmpty(t *testing.T) {
	repo := newSQLiteRepository(t)

	_, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.False(t, found)
}

func TestSQLiteRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	first := dispenser.State{Coins: 2, Sugar: 10, SugarLevel: 1, Stock: map[string]int{"coffee": 100, "milk": 0, "tea": 5}}
	require.NoError(t, repo.Save(ctx, first))

	second := dispenser.State{Coins: 1, Sugar: 7, SugarLevel: 1, Stock: map[string]int{"coffee": 70, "milk": 0, "tea": 5}}
	require.NoError(t, repo.Save(ctx, second))

	got, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, second, got)
}

func TestSQLiteRepository_SaveRejectsNegativeStock(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	require.NoError(t, repo.Save(ctx, dispenser.State{Coins: 1, Stock: map[string]int{"coffee": 10}}))
	require.Error(t, repo.Save(ctx, dispenser.State{Coins: 5, Stock: map[string]int{"coffee": -1}}))

	got, _, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got.Coins)
	require.Equal(t, 10, got.Stock["coffee"])
}

func TestSQLiteRepository_DispensesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	state := dispenser.State{Stock: map[string]int{"coffee": 0}}
	for i, product := range []string{"coffee_alone", "coffee_double", "tea_simple"} {
		require.NoError(t, repo.SaveDispense(ctx, state, Receipt{
			ID:          product + "-id",
			Product:     product,
			SugarLevel:  i,
			SugarUsed:   i * 3,
			Portions:    dispenser.Recipe{{Ingredient: "coffee", Amount: 30}},
			DispensedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	receipts, err := repo.ListDispenses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	require.Equal(t, "tea_simple", receipts[0].Product)
	require.Equal(t, "coffee_double", receipts[1].Product)
	require.True(t, receipts[0].DispensedAt.Equal(base.Add(2*time.Minute)))
	require.Equal(t, dispenser.Recipe{{Ingredient: "coffee", Amount: 30}}, receipts[1].Portions)
	require.Equal(t, 3, receipts[1].SugarUsed)
}

func TestSQLiteRepository_BacksService(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	svc := newTestService(t, repo)
	require.NoError(t, svc.Load(ctx))
	_, err := svc.InsertCoin(ctx)
	require.NoError(t, err)
	_, err = svc.AddResource(ctx, dispenser.Coffee, 100)
	require.NoError(t, err)
	receipt, err := svc.Dispense(ctx, dispenser.CoffeeAlone)
	require.NoError(t, err)

	restarted := newTestService(t, repo)
	require.NoError(t, restarted.Load(ctx))
	require.Equal(t, svc.Status(), restarted.Status())

	receipts, err := restarted.Dispenses(ctx, 5)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, receipt.ID, receipts[0].ID)
}
