package dispenser

import "fmt"

// State is a point-in-time copy of the machine counters.
type State struct {
	Coins      int            `json:"coins"`
	Sugar      int            `json:"sugar"`
	SugarLevel int            `json:"sugar_level"`
	Stock      map[string]int `json:"stock"`
}

// State returns a snapshot that does not alias the dispenser.
func (d *Dispenser) State() State {
	stock := make(map[string]int, len(d.stock))
	for name, n := range d.stock {
		stock[name] = n
	}
	return State{
		Coins:      d.coins,
		Sugar:      d.sugar,
		SugarLevel: d.sugarLevel,
		Stock:      stock,
	}
}

// Restore replaces the counters with s. Ingredients missing from s are set to zero.
// On error the dispenser is left untouched.
func (d *Dispenser) Restore(s State) error {
	if s.Coins < 0 || s.Sugar < 0 || s.SugarLevel < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidState)
	}
	if d.cfg.MaxSugarLevel > 0 && s.SugarLevel > d.cfg.MaxSugarLevel {
		return fmt.Errorf("%w: %w", ErrInvalidState, ErrSugarLevelTooHigh)
	}
	for name, n := range s.Stock {
		if _, ok := d.stock[name]; !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidState, ErrUnknownIngredient, name)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative stock for %q", ErrInvalidState, name)
		}
	}

	d.coins = s.Coins
	d.sugar = s.Sugar
	d.sugarLevel = s.SugarLevel
	for name := range d.stock {
		d.stock[name] = s.Stock[name]
	}
	return nil
}
