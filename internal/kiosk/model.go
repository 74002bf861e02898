package kiosk

import (
	"time"

	"github.com/Simplici0/brewbox/internal/dispenser"
)

// Receipt records one successful dispense.
type Receipt struct {
	ID          string           `json:"id"`
	Product     string           `json:"product"`
	SugarLevel  int              `json:"sugar_level"`
	SugarUsed   int              `json:"sugar_used"`
	Portions    dispenser.Recipe `json:"portions"`
	DispensedAt time.Time        `json:"dispensed_at"`
}

// Servings is how many units of a product the machine can still make.
type Servings struct {
	Product  string `json:"product"`
	Servings int    `json:"servings"`
}
