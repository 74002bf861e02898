package dispenser

const (
	classicProduct      = "coffee"
	classicSugar        = "sugar"
	classicCoffeeShot   = 30
	classicSugarPortion = 5
)

// ClassicConfig is the single-product machine: every cup takes 30 coffee and 5 sugar,
// with sugar stocked as a plain ingredient rather than through the sugar level.
func ClassicConfig() Config {
	return Config{
		Ingredients: []string{Coffee, classicSugar},
		Recipes: Catalog{
			classicProduct: {
				{Ingredient: Coffee, Amount: classicCoffeeShot},
				{Ingredient: classicSugar, Amount: classicSugarPortion},
			},
		},
		SugarPerLevel: 0,
	}
}

// Classic is the fixed-recipe coffee machine.
type Classic struct {
	d *Dispenser
}

// NewClassic returns an empty fixed-recipe machine.
func NewClassic() *Classic {
	d, err := New(ClassicConfig())
	if err != nil {
		panic(err)
	}
	return &Classic{d: d}
}

// InsertCoin adds one coin.
func (c *Classic) InsertCoin() error { return c.d.InsertCoin() }

// InsertCoffee adds coffee to the hopper.
func (c *Classic) InsertCoffee(amount int) error {
	return c.d.AddResource(Coffee, amount)
}

// InsertSugar adds sugar to the hopper.
func (c *Classic) InsertSugar(amount int) error {
	return c.d.AddResource(classicSugar, amount)
}

// GetCoffee pours one cup.
func (c *Classic) GetCoffee() error {
	_, err := c.d.Dispense(classicProduct)
	return err
}

// CountCoffeeLeft is the number of cups the hoppers can still make.
func (c *Classic) CountCoffeeLeft() int {
	n, _ := c.d.MaxServings(classicProduct)
	return n
}

// Coins returns the coin balance.
func (c *Classic) Coins() int { return c.d.Coins() }

// Coffee returns the coffee left in the hopper.
func (c *Classic) Coffee() int {
	n, _ := c.d.Stock(Coffee)
	return n
}

// SugarStock returns the sugar left in the hopper.
func (c *Classic) SugarStock() int {
	n, _ := c.d.Stock(classicSugar)
	return n
}
