package kiosk

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

// Fixed-width UTC layout so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository stores state and receipts in the machine, stock and dispenses tables.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository expects a database migrated with migrations.Up.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (dispenser.State, bool, error) {
	var state dispenser.State
	err := r.db.QueryRowContext(ctx, `
		SELECT coins, sugar, sugar_level
		FROM machine
		WHERE id = 1
	`).Scan(&state.Coins, &state.Sugar, &state.SugarLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return dispenser.State{}, false, nil
	}
	if err != nil {
		return dispenser.State{}, false, fmt.Errorf("query machine row: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT ingredient, quantity FROM stock ORDER BY ingredient`)
	if err != nil {
		return dispenser.State{}, false, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	state.Stock = make(map[string]int)
	for rows.Next() {
		var (
			name     string
			quantity int
		)
		if err := rows.Scan(&name, &quantity); err != nil {
			return dispenser.State{}, false, fmt.Errorf("scan stock row: %w", err)
		}
		state.Stock[name] = quantity
	}
	if err := rows.Err(); err != nil {
		return dispenser.State{}, false, fmt.Errorf("iterate stock rows: %w", err)
	}

	return state, true, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, state dispenser.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}

	if err := saveState(ctx, tx, state); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveDispense(ctx context.Context, state dispenser.State, receipt Receipt) error {
	portions, err := json.Marshal(receipt.Portions)
	if err != nil {
		return fmt.Errorf("encode receipt portions: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dispense transaction: %w", err)
	}

	if err := saveState(ctx, tx, state); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dispenses (id, product, sugar_level, sugar_used, portions_json, dispensed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, receipt.ID, receipt.Product, receipt.SugarLevel, receipt.SugarUsed, string(portions),
		receipt.DispensedAt.UTC().Format(timeLayout)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert dispense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dispense transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDispenses(ctx context.Context, limit int) ([]Receipt, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product, sugar_level, sugar_used, portions_json, dispensed_at
		FROM dispenses
		ORDER BY dispensed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispenses: %w", err)
	}
	defer rows.Close()

	receipts := []Receipt{}
	for rows.Next() {
		var (
			rc          Receipt
			portionsRaw string
			dispensedAt string
		)
		if err := rows.Scan(&rc.ID, &rc.Product, &rc.SugarLevel, &rc.SugarUsed, &portionsRaw, &dispensedAt); err != nil {
			return nil, fmt.Errorf("scan dispense row: %w", err)
		}
		if err := json.Unmarshal([]byte(portionsRaw), &rc.Portions); err != nil {
			return nil, fmt.Errorf("decode portions for dispense %s: %w", rc.ID, err)
		}
		rc.DispensedAt, err = time.Parse(timeLayout, dispensedAt)
		if err != nil {
			return nil, fmt.Errorf("parse dispensed_at for dispense %s: %w", rc.ID, err)
		}
		receipts = append(receipts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispense rows: %w", err)
	}

	return receipts, nil
}

func saveState(ctx context.Context, tx *sql.Tx, state dispenser.State) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO machine (id, coins, sugar, sugar_level, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			coins = excluded.coins,
			sugar = excluded.sugar,
			sugar_level = excluded.sugar_level,
			updated_at = CURRENT_TIMESTAMP
	`, state.Coins, state.Sugar, state.SugarLevel); err != nil {
		return fmt.Errorf("upsert machine row: %w", err)
	}

	for name, quantity := range state.Stock {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock (ingredient, quantity, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (ingredient) DO UPDATE SET
				quantity = excluded.quantity,
				updated_at = CURRENT_TIMESTAMP
		`, name, quantity); err != nil {
			return fmt.Errorf("upsert stock for %s: %w", name, err)
		}
	}
	return nil
}
