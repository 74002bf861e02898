package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

// Config contains the values required by startup seed.
type Config struct {
	Ingredients  []string
	InitialStock map[string]int
	InitialSugar int
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// DemoConfig stocks a development machine with enough for a few dozen drinks.
func DemoConfig() Config {
	return Config{
		Ingredients: dispenser.DefaultIngredients(),
		InitialStock: map[string]int{
			dispenser.Coffee: 1000,
			dispenser.Milk:   500,
			dispenser.Tea:    200,
		},
		InitialSugar: 300,
	}
}

// EmptyConfig creates rows for the default ingredients with nothing on hand.
func EmptyConfig() Config {
	return Config{Ingredients: dispenser.DefaultIngredients()}
}

// Run executes the startup seed in an idempotent way. Existing rows are never overwritten.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureMachine(ctx, tx, cfg.InitialSugar, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, name := range cfg.Ingredients {
		if err := ensureStock(ctx, tx, name, cfg.InitialStock[name], &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureMachine(ctx context.Context, tx *sql.Tx, sugar int, stats *Stats) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO machine (id, coins, sugar, sugar_level)
		VALUES (1, 0, ?, 0)
		ON CONFLICT (id) DO NOTHING
	`, sugar)
	if err != nil {
		return fmt.Errorf("ensure machine row: %w", err)
	}
	return countInsert(result, stats, "machine row")
}

func ensureStock(ctx context.Context, tx *sql.Tx, name string, quantity int, stats *Stats) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO stock (ingredient, quantity)
		VALUES (?, ?)
		ON CONFLICT (ingredient) DO NOTHING
	`, name, quantity)
	if err != nil {
		return fmt.Errorf("ensure stock for %s: %w", name, err)
	}
	return countInsert(result, stats, "stock for "+name)
}

func countInsert(result sql.Result, stats *Stats, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", what, err)
	}
	stats.Inserts += int(n)
	return nil
}
