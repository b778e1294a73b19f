package simulator

import (
	"fmt"
	"math/rand"

	"github.com/florex-io/florex/pkg/core"
)

// Generator produces randomized order intents for load testing. Prices land
// in a band around the configured range so buys and sells cross often enough
// to exercise the matching loop.
type Generator struct {
	cfg  *Config
	rng  *rand.Rand
	next int
}

// NewGenerator creates a Generator from the config.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Next returns the next randomized intent.
func (g *Generator) Next() core.OrderIntent {
	g.next++
	clientID := fmt.Sprintf("sim-%d", g.next)

	if g.cfg.InvalidRate > 0 && g.rng.Float64() < g.cfg.InvalidRate {
		return g.invalidIntent(clientID)
	}

	side := "1"
	if g.rng.Intn(2) == 0 {
		side = "2"
	}

	quantity := core.LotSize * (1 + g.rng.Int63n(core.MaxQuantity/core.LotSize))
	price := g.cfg.PriceMin + g.rng.Float64()*(g.cfg.PriceMax-g.cfg.PriceMin)

	return core.OrderIntent{
		ClientOrderID: clientID,
		Instrument:    g.cfg.Instruments[g.rng.Intn(len(g.cfg.Instruments))],
		Side:          side,
		Quantity:      fmt.Sprintf("%d", quantity),
		Price:         fmt.Sprintf("%.2f", price),
	}
}

// invalidIntent returns an intent violating one validation rule at random.
func (g *Generator) invalidIntent(clientID string) core.OrderIntent {
	instrument := g.cfg.Instruments[g.rng.Intn(len(g.cfg.Instruments))]
	intent := core.OrderIntent{
		ClientOrderID: clientID,
		Instrument:    instrument,
		Side:          "1",
		Quantity:      "100",
		Price:         "10.00",
	}

	switch g.rng.Intn(5) {
	case 0:
		intent.Instrument = " "
	case 1:
		intent.Quantity = "fifteen"
	case 2:
		intent.Side = "3"
	case 3:
		intent.Quantity = "15"
	case 4:
		intent.Instrument = "Daisy"
	}

	return intent
}
