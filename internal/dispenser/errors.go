package dispenser

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCoin is returned when a product is requested with an empty coin balance.
	ErrNoCoin = errors.New("no coin inserted")
	// ErrUnknownProduct is returned when the requested product has no recipe.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInsufficientIngredient is matched by every *InsufficientIngredientError.
	ErrInsufficientIngredient = errors.New("insufficient ingredient")
	// ErrInsufficientSugar is returned when sugar on hand cannot cover the selected level.
	ErrInsufficientSugar = errors.New("insufficient sugar")
	// ErrUnknownIngredient is returned when stock is added for a name the machine does not hold.
	ErrUnknownIngredient = errors.New("unknown ingredient")
	// ErrNegativeAmount is returned for negative amounts and levels.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrSugarLevelTooHigh is returned when a level exceeds the configured maximum.
	ErrSugarLevelTooHigh = errors.New("sugar level too high")
	// ErrStockOverflow is returned when a top-up would push a counter past math.MaxInt.
	ErrStockOverflow = errors.New("counter would overflow")
	// ErrInvalidState is returned by Restore for snapshots that break the counter invariants.
	ErrInvalidState = errors.New("invalid dispenser state")
)

// InsufficientIngredientError reports the first recipe ingredient found short.
type InsufficientIngredientError struct {
	Ingredient string
	Required   int
	Available  int
}

func (e *InsufficientIngredientError) Error() string {
	return fmt.Sprintf("missing %s", e.Ingredient)
}

// Is lets errors.Is(err, ErrInsufficientIngredient) match.
func (e *InsufficientIngredientError) Is(target error) bool {
	return target == ErrInsufficientIngredient
}
