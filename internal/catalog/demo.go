package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"salespulse/internal/core"
)

// demoDays is how many days of the target month get generated sales.
const demoDays = 15

// DemoSales generates a plausible first half of the month: up to two closed
// sales a day, each priced within ±10% of the product's default price.
func DemoSales(seed Seed, rng *rand.Rand) []core.Sale {
	if len(seed.Products) == 0 || len(seed.Representatives) == 0 {
		return nil
	}
	days := min(demoDays, seed.Target.DaysInMonth)

	var out []core.Sale
	for day := 1; day <= days; day++ {
		n := rng.IntN(3)
		for range n {
			p := seed.Products[rng.IntN(len(seed.Products))]
			amount := math.Floor(float64(p.DefaultPrice.Cents) * (0.9 + rng.Float64()*0.2))
			out = append(out, core.Sale{
				ID:             uuid.NewString(),
				Date:           core.NewDate(seed.Target.Month.Year, seed.Target.Month.Month, day),
				Amount:         core.Money{Cents: max(1, int64(amount))},
				Customer:       fmt.Sprintf("Cliente %04d", rng.IntN(10000)),
				Representative: seed.Representatives[rng.IntN(len(seed.Representatives))],
				Product:        p.Name,
				Status:         core.StatusClosed,
			})
		}
	}
	return out
}
