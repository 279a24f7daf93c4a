package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semwafer/wafer"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{
		TypeCenterEdge,
		TypeFixedPoint,
		TypeRandomSampling,
		TypeUniformGrid,
	}, r.Types(), "Types is sorted")

	for _, typ := range r.Types() {
		t.Run(typ, func(t *testing.T) {
			assert.True(t, r.Has(typ))
			rl, err := r.Create(typ, nil)
			require.NoError(t, err)
			assert.Equal(t, typ, rl.Type())
		})
	}
}

func TestRegistry_CreateUnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Create("hotspot_priority", Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "hotspot_priority")
}

type stubRule struct{}

func (stubRule) Type() string { return "stub" }

func (stubRule) Apply(*wafer.Map, *ExecutionContext) []wafer.Die { return nil }

func (stubRule) EstimatePerformance(*wafer.Map) PerformanceEstimate {
	return PerformanceEstimate{}
}

func TestRegistry_RegisterCustomFactory(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func(Params) (Rule, error) { return stubRule{}, nil })

	assert.True(t, r.Has("stub"))

	rl, err := r.Create("stub", Params{"anything": 1})
	require.NoError(t, err)
	assert.Equal(t, "stub", rl.Type())

	assert.Contains(t, r.Types(), "stub")
}
