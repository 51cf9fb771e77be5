package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostStringUnmarshal(t *testing.T) {
	var rec ModelRecord
	err := json.Unmarshal([]byte(`{"id":"m1","cost_context":"0.01","cost_completion":0.02}`), &rec)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, rec.CostContext.Value(), 1e-12)
	assert.InDelta(t, 0.02, rec.CostCompletion.Value(), 1e-12)

	err = json.Unmarshal([]byte(`{"id":"m2","cost_context":null}`), &rec)
	require.NoError(t, err)
	assert.True(t, math.IsInf(rec.CostContext.Value(), 1))
}

func TestCostStringValue(t *testing.T) {
	cases := []struct {
		in   CostString
		want float64
	}{
		{"0.01", 0.01},
		{"3", 3},
		{"", math.Inf(1)},
		{"free", math.Inf(1)},
		{"1,5", math.Inf(1)},
	}
	for _, tc := range cases {
		got := tc.in.Value()
		if math.IsInf(tc.want, 1) {
			assert.True(t, math.IsInf(got, 1), "cost %q", tc.in)
		} else {
			assert.InDelta(t, tc.want, got, 1e-12, "cost %q", tc.in)
		}
	}
}

func TestTotalCostIsSumOfUnitCosts(t *testing.T) {
	rec := ModelRecord{CostContext: "0.01", CostCompletion: "0.02"}
	assert.InDelta(t, 0.03, rec.TotalCost(), 1e-12)
	assert.True(t, rec.HasCostData())

	// Any missing or non-numeric field makes the model unrankable.
	rec.CostCompletion = ""
	assert.True(t, math.IsInf(rec.TotalCost(), 1))
	assert.False(t, rec.HasCostData())
}

func TestVisionFlags(t *testing.T) {
	yes, no := true, false

	confirmed := ModelRecord{VisionChecked: true, HasVision: &yes}
	assert.True(t, confirmed.VisionConfirmed())
	assert.False(t, confirmed.VisionDenied())

	denied := ModelRecord{VisionChecked: true, HasVision: &no}
	assert.False(t, denied.VisionConfirmed())
	assert.True(t, denied.VisionDenied())

	unknown := ModelRecord{}
	assert.False(t, unknown.VisionConfirmed())
	assert.False(t, unknown.VisionDenied())
}
