package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphpipe/internal/config"
)

func testPricing() map[string]config.PricingInfo {
	return map[string]config.PricingInfo{
		"gpt-4o":  {InputPer1K: 0.01, OutputPer1K: 0.03},
		"cheapo":  {InputPer1K: 0.0005, OutputPer1K: 0.0015},
		"exact":   {InputPer1K: 1, OutputPer1K: 2},
		"default": {InputPer1K: 0.01, OutputPer1K: 0.03},
	}
}

func newTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "api_usage_stats.json")
	return New(path, testPricing()), path
}

func TestRecordCallAccumulates(t *testing.T) {
	l, _ := newTestLedger(t)

	c1 := l.RecordCall("gpt-4o", 1000, 200)
	assert.InDelta(t, 0.01+0.006, c1, 1e-9)

	c2 := l.RecordCall("cheapo", 2000, 1000)
	c3 := l.RecordCall("gpt-4o", 500, 100)

	stats := l.Stats()
	assert.Equal(t, 3, stats.CallCount)
	assert.InDelta(t, c1+c2+c3, stats.TotalCost, 1e-9)

	gpt := stats.ByModel["gpt-4o"]
	assert.Equal(t, 2, gpt.Count)
	assert.Equal(t, int64(1500), gpt.InputTokens)
	assert.Equal(t, int64(300), gpt.OutputTokens)
	assert.InDelta(t, c1+c3, gpt.TotalCost, 1e-9)
}

func TestRecordCallUnknownModelUsesDefaultRate(t *testing.T) {
	l, _ := newTestLedger(t)
	cost := l.RecordCall("mystery-model", 1000, 1000)
	assert.InDelta(t, 0.01+0.03, cost, 1e-9)
}

func TestRecordCallPersistsLedger(t *testing.T) {
	l, path := newTestLedger(t)
	l.RecordCall("gpt-4o", 100, 50)
	l.RecordCall("gpt-4o", 100, 50)

	stats, err := LoadStats(path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CallCount)
	assert.Equal(t, l.Stats().SessionID, stats.SessionID)
	assert.InDelta(t, l.Stats().TotalCost, stats.TotalCost, 1e-9)
	assert.Equal(t, int64(200), stats.ByModel["gpt-4o"].InputTokens)
}

func TestRecordCallSurvivesPersistenceFailure(t *testing.T) {
	// Point the ledger at a path that cannot be a file.
	dir := t.TempDir()
	l := New(dir, testPricing())

	cost := l.RecordCall("gpt-4o", 100, 50)
	assert.Greater(t, cost, 0.0)
	assert.Equal(t, 1, l.Stats().CallCount)
}

func TestCheckBudgetBoundary(t *testing.T) {
	l, _ := newTestLedger(t)

	// "exact" at 1000/500 costs exactly 2.0 with no rounding noise.
	check := l.CheckBudget("exact", 1000, 500, 2.0)
	assert.False(t, check.WouldExceed, "projected == limit is within budget")

	check = l.CheckBudget("exact", 1000, 500, 1.99)
	assert.True(t, check.WouldExceed)
	assert.InDelta(t, 2.0, check.ProjectedCost, 1e-9)
}

func TestCheckBudgetCountsPriorSpend(t *testing.T) {
	l, _ := newTestLedger(t)
	l.RecordCall("gpt-4o", 1000, 200) // 0.016

	check := l.CheckBudget("gpt-4o", 1000, 200, 0.03)
	assert.True(t, check.WouldExceed)
	assert.InDelta(t, 0.016, check.CurrentTotal, 1e-9)
	assert.InDelta(t, 0.032, check.ProjectedCost, 1e-9)
}

func TestCheckBudgetDoesNotMutate(t *testing.T) {
	l, path := newTestLedger(t)
	l.CheckBudget("gpt-4o", 1000, 200, 0.001)

	assert.Equal(t, 0, l.Stats().CallCount)
	assert.InDelta(t, 0.0, l.Stats().TotalCost, 1e-12)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "pre-flight check must not persist anything")
}

func TestCostWarningDoesNotMutate(t *testing.T) {
	l, _ := newTestLedger(t)
	cost := l.CostWarning("gpt-4o", 1200)
	assert.InDelta(t, 1.2*(0.01+0.03), cost, 1e-9)
	assert.Equal(t, 0, l.Stats().CallCount)
}

func TestLoadStatsMissingFile(t *testing.T) {
	_, err := LoadStats(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}
