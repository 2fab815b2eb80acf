package instance

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"q.log/twophase/model"
)

// Random returns a balanced m×n transportation problem whose supplies and
// demands each add up to total. Supplies and demands are drawn in
// [1000, 4000) and scaled down to total, the last node absorbing the rounding.
// Costs are integers in [1, 100]. The same seed yields the same instance.
func Random(m, n, total int, seed uint64) (*model.Transportation, error) {
	if m <= 0 || n <= 0 {
		return nil, errors.Wrapf(model.ErrConstruction, "need positive dimensions, got %dx%d", m, n)
	}
	if total < m || total < n {
		return nil, errors.Wrapf(model.ErrConstruction, "total %d is too small for a %dx%d problem", total, m, n)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	cost := make([][]float64, m)
	for i := range cost {
		cost[i] = make([]float64, n)
	}
	supply := scaled(rng, m, total)
	demand := scaled(rng, n, total)
	for i := range cost {
		for j := range cost[i] {
			cost[i][j] = float64(rng.IntN(100) + 1)
		}
	}

	return model.NewTransportation(supply, demand, cost)
}

func scaled(rng *rand.Rand, k, total int) []float64 {
	raw := make([]int, k)
	sum := 0
	for i := range raw {
		raw[i] = rng.IntN(3000) + 1000
		sum += raw[i]
	}

	out := make([]float64, k)
	acc := 0
	for i, v := range raw {
		q := v * total / sum
		out[i] = float64(q)
		acc += q
	}
	out[k-1] += float64(total - acc)
	return out
}
