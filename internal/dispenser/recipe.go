package dispenser

import "sort"

// Ingredient names stocked by the default machine.
const (
	Coffee = "coffee"
	Milk   = "milk"
	Tea    = "tea"
)

// Product names in the default catalog.
const (
	CoffeeAlone    = "coffee_alone"
	CoffeeWithMilk = "coffee_with_milk"
	CoffeeDouble   = "coffee_double"
	TeaSimple      = "tea_simple"
)

// Portion is the amount of one ingredient used by one unit of a product.
type Portion struct {
	Ingredient string `json:"ingredient"`
	Amount     int    `json:"amount"`
}

// Recipe lists portions in check order.
type Recipe []Portion

// Catalog maps product names to recipes.
type Catalog map[string]Recipe

var defaultIngredients = []string{Coffee, Milk, Tea}

var defaultCatalog = Catalog{
	CoffeeAlone:    {{Ingredient: Coffee, Amount: 30}},
	CoffeeWithMilk: {{Ingredient: Coffee, Amount: 30}, {Ingredient: Milk, Amount: 20}},
	CoffeeDouble:   {{Ingredient: Coffee, Amount: 60}},
	TeaSimple:      {{Ingredient: Tea, Amount: 10}},
}

// DefaultIngredients returns the ingredient names stocked by the default machine.
func DefaultIngredients() []string {
	return append([]string(nil), defaultIngredients...)
}

// DefaultCatalog returns a copy of the built-in recipe catalog.
func DefaultCatalog() Catalog {
	return defaultCatalog.clone()
}

func (c Catalog) clone() Catalog {
	out := make(Catalog, len(c))
	for name, recipe := range c {
		out[name] = append(Recipe(nil), recipe...)
	}
	return out
}

// Products returns the catalog's product names in sorted order.
func (c Catalog) Products() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
