package rule

import (
	"math/rand"
	"time"

	"github.com/c360studio/semwafer/wafer"
)

// RandomSampling selects a random subset of the available dies without
// replacement. Each Apply draws from its own PRNG: a fixed seed makes
// runs reproducible, and no global randomness is ever touched.
//
// Parameters:
//
//	count: dies to select (default 10)
//	seed:  optional PRNG seed for reproducible selection
type RandomSampling struct {
	count int
	seed  *int64
}

// NewRandomSampling builds the rule from raw parameters.
func NewRandomSampling(params Params) *RandomSampling {
	r := &RandomSampling{
		count: params.Int("count", 10),
	}
	if s, ok := params.Seed("seed"); ok {
		r.seed = &s
	}
	return r
}

// Type implements Rule.
func (r *RandomSampling) Type() string {
	return TypeRandomSampling
}

// Apply returns count randomly chosen available dies. When count meets or
// exceeds the available population the whole population is returned in
// map iteration order. Non-positive counts select nothing.
func (r *RandomSampling) Apply(m *wafer.Map, _ *ExecutionContext) []wafer.Die {
	if m == nil || r.count <= 0 {
		return nil
	}
	available := m.Available()
	if len(available) <= r.count {
		return available
	}

	rng := r.newRand()
	out := make([]wafer.Die, 0, r.count)
	for _, i := range rng.Perm(len(available))[:r.count] {
		out = append(out, available[i])
	}
	return out
}

func (r *RandomSampling) newRand() *rand.Rand {
	if r.seed != nil {
		return rand.New(rand.NewSource(*r.seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// EstimatePerformance implements Rule.
func (r *RandomSampling) EstimatePerformance(m *wafer.Map) PerformanceEstimate {
	return linearEstimate(m)
}
