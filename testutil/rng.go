package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SparseVector returns n values of which about density are non-zero.
// Non-zero values are whole numbers in [1, 100], like prescription counts.
func (r *RNG) SparseVector(n int, density float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sparseLocked(n, density)
}

func (r *RNG) sparseLocked(n int, density float64) []float64 {
	vec := make([]float64, n)
	for i := range vec {
		if r.rand.Float64() < density {
			vec[i] = float64(1 + r.rand.Intn(100))
		}
	}
	return vec
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule), which
// matches how a few presentations dominate prescribing volume.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// Dates returns n consecutive month keys starting at 2020-01-01.
func Dates(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%04d-%02d-01", 2020+i/12, 1+i%12)
	}
	return out
}

// Practices returns n practice codes of the form A81001.
func Practices(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%c%02d%03d", 'A'+i%26, 81+(i/26)%19, i%1000)
	}
	return out
}

// Fixture returns a random fixture with the given shape. Presentation
// codes share chapter prefixes so prefix queries match several rows, and
// density follows a Zipf curve across presentations.
func (r *RNG) Fixture(practices, dates, presentations int) Fixture {
	f := Fixture{
		Dates:     Dates(dates),
		Practices: Practices(practices),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := practices * dates
	for i := range presentations {
		density := 0.05 + 0.5/float64(1+r.zipfLocked(10, 1.5))
		items := r.sparseLocked(n, density)
		quantity := make([]float64, n)
		cost := make([]float64, n)
		for j, v := range items {
			quantity[j] = v * 28
			cost[j] = math.Round(v*float64(1+i%7)*100) / 100
		}
		f.Presentations = append(f.Presentations, Presentation{
			BNFCode:    fmt.Sprintf("%02d%02d%011d", 1+i%15, 1+(i/15)%9, i),
			Items:      items,
			Quantity:   quantity,
			NetCost:    cost,
			ActualCost: cost,
		})
	}

	f.Statistics = []Statistic{
		{Name: "total_list_size", Values: r.sparseLocked(n, 1)},
	}
	return f
}
