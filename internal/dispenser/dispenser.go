// Package dispenser models a coin-operated drink machine: a coin balance, ingredient stock,
// a separate sugar stock scaled by a selectable sugar level, and a fixed recipe catalog.
//
// A Dispenser is not safe for concurrent use. Callers that share one across goroutines
// must serialize access themselves (see package kiosk).
package dispenser

import (
	"errors"
	"fmt"
	"math"
)

const defaultSugarPerLevel = 3

// Config describes which ingredients a machine stocks and what it can make.
type Config struct {
	Ingredients []string
	Recipes     Catalog
	// SugarPerLevel is the sugar consumed per selected level on every dispense.
	SugarPerLevel int
	// MaxSugarLevel bounds SetSugarLevel. Zero leaves the level unbounded.
	MaxSugarLevel int
}

// DefaultConfig returns the coffee/milk/tea machine with the built-in catalog.
func DefaultConfig() Config {
	return Config{
		Ingredients:   DefaultIngredients(),
		Recipes:       DefaultCatalog(),
		SugarPerLevel: defaultSugarPerLevel,
	}
}

func (c Config) validate() error {
	if len(c.Ingredients) == 0 {
		return errors.New("no ingredients configured")
	}
	if c.SugarPerLevel < 0 || c.MaxSugarLevel < 0 {
		return fmt.Errorf("sugar settings: %w", ErrNegativeAmount)
	}

	known := make(map[string]bool, len(c.Ingredients))
	for _, name := range c.Ingredients {
		if name == "" {
			return errors.New("empty ingredient name")
		}
		if known[name] {
			return fmt.Errorf("duplicate ingredient %q", name)
		}
		known[name] = true
	}

	for product, recipe := range c.Recipes {
		if len(recipe) == 0 {
			return fmt.Errorf("recipe %q has no portions", product)
		}
		for _, p := range recipe {
			if !known[p.Ingredient] {
				return fmt.Errorf("recipe %q: %w: %q", product, ErrUnknownIngredient, p.Ingredient)
			}
			if p.Amount <= 0 {
				return fmt.Errorf("recipe %q: portion of %q must be positive", product, p.Ingredient)
			}
		}
	}
	return nil
}

// Debit is what one successful dispense took out of the machine.
type Debit struct {
	Product    string
	SugarLevel int
	SugarUsed  int
	Portions   Recipe
}

// Dispenser holds the machine counters. The zero value is not usable; build one with New or Default.
type Dispenser struct {
	cfg Config

	coins      int
	sugar      int
	sugarLevel int
	stock      map[string]int
}

// New returns an empty machine for cfg. The config's catalog is copied.
func New(cfg Config) (*Dispenser, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid dispenser config: %w", err)
	}
	cfg.Ingredients = append([]string(nil), cfg.Ingredients...)
	cfg.Recipes = cfg.Recipes.clone()

	stock := make(map[string]int, len(cfg.Ingredients))
	for _, name := range cfg.Ingredients {
		stock[name] = 0
	}
	return &Dispenser{cfg: cfg, stock: stock}, nil
}

// Default returns an empty machine using DefaultConfig.
func Default() *Dispenser {
	d, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return d
}

// InsertCoin adds one coin to the balance. It fails only when the balance is already at math.MaxInt.
func (d *Dispenser) InsertCoin() error {
	if d.coins == math.MaxInt {
		return fmt.Errorf("%w: coins", ErrStockOverflow)
	}
	d.coins++
	return nil
}

// SetSugarLevel selects how much sugar each following dispense uses.
// The level stays selected until changed.
func (d *Dispenser) SetSugarLevel(level int) error {
	if level < 0 {
		return ErrNegativeAmount
	}
	if d.cfg.MaxSugarLevel > 0 && level > d.cfg.MaxSugarLevel {
		return fmt.Errorf("%w: %d > %d", ErrSugarLevelTooHigh, level, d.cfg.MaxSugarLevel)
	}
	d.sugarLevel = level
	return nil
}

// AddResource tops up one stocked ingredient.
func (d *Dispenser) AddResource(name string, amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	have, ok := d.stock[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIngredient, name)
	}
	if amount > math.MaxInt-have {
		return fmt.Errorf("%w: %q", ErrStockOverflow, name)
	}
	d.stock[name] += amount
	return nil
}

// AddSugar tops up the sugar stock.
func (d *Dispenser) AddSugar(amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > math.MaxInt-d.sugar {
		return fmt.Errorf("%w: sugar", ErrStockOverflow)
	}
	d.sugar += amount
	return nil
}

// Dispense makes one unit of product.
//
// Checks run against current state in a fixed order: coin, recipe lookup, each recipe
// ingredient in recipe order, then sugar. Nothing is debited unless every check passes.
func (d *Dispenser) Dispense(product string) (Debit, error) {
	if d.coins == 0 {
		return Debit{}, ErrNoCoin
	}

	recipe, ok := d.cfg.Recipes[product]
	if !ok {
		return Debit{}, fmt.Errorf("%w: %q", ErrUnknownProduct, product)
	}

	for _, p := range recipe {
		if have := d.stock[p.Ingredient]; have < p.Amount {
			return Debit{}, &InsufficientIngredientError{
				Ingredient: p.Ingredient,
				Required:   p.Amount,
				Available:  have,
			}
		}
	}

	sugarUsed, ok := d.sugarPerServing()
	if !ok || d.sugar < sugarUsed {
		return Debit{}, ErrInsufficientSugar
	}

	d.coins--
	d.sugar -= sugarUsed
	for _, p := range recipe {
		d.stock[p.Ingredient] -= p.Amount
	}

	return Debit{
		Product:    product,
		SugarLevel: d.sugarLevel,
		SugarUsed:  sugarUsed,
		Portions:   append(Recipe(nil), recipe...),
	}, nil
}

// MaxServings reports how many units of product the current stock and sugar allow,
// ignoring the coin balance.
func (d *Dispenser) MaxServings(product string) (int, error) {
	recipe, ok := d.cfg.Recipes[product]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProduct, product)
	}

	servings := -1
	for _, p := range recipe {
		n := d.stock[p.Ingredient] / p.Amount
		if servings < 0 || n < servings {
			servings = n
		}
	}

	perUnit, ok := d.sugarPerServing()
	if !ok {
		return 0, nil
	}
	if perUnit > 0 {
		if n := d.sugar / perUnit; n < servings {
			servings = n
		}
	}
	return servings, nil
}

// sugarPerServing is the sugar one dispense takes at the selected level.
// It reports false when that amount does not fit in an int, which no sugar stock can cover.
func (d *Dispenser) sugarPerServing() (int, bool) {
	per := d.cfg.SugarPerLevel
	if per == 0 {
		return 0, true
	}
	if d.sugarLevel > math.MaxInt/per {
		return 0, false
	}
	return d.sugarLevel * per, true
}

// Coins returns the coin balance.
func (d *Dispenser) Coins() int { return d.coins }

// Sugar returns the sugar stock.
func (d *Dispenser) Sugar() int { return d.sugar }

// SugarLevel returns the selected sugar level.
func (d *Dispenser) SugarLevel() int { return d.sugarLevel }

// Stock returns the quantity on hand for name and whether the machine stocks it.
func (d *Dispenser) Stock(name string) (int, bool) {
	n, ok := d.stock[name]
	return n, ok
}

// Ingredients returns the stocked ingredient names in configuration order.
func (d *Dispenser) Ingredients() []string {
	return append([]string(nil), d.cfg.Ingredients...)
}

// Products returns the product names this machine can make, sorted.
func (d *Dispenser) Products() []string {
	return d.cfg.Recipes.Products()
}

// Recipe returns a copy of the recipe for product.
func (d *Dispenser) Recipe(product string) (Recipe, bool) {
	r, ok := d.cfg.Recipes[product]
	if !ok {
		return nil, false
	}
	return append(Recipe(nil), r...), true
}

// Catalog returns a copy of the machine's recipes.
func (d *Dispenser) Catalog() Catalog {
	return d.cfg.Recipes.clone()
}
