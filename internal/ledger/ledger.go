package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"graphpipe/internal/config"
	"graphpipe/internal/models"
)

// Ledger accumulates estimated API spend for one process and flushes
// every mutation to durable storage, so a crash loses at most the
// in-flight call. It is an explicitly owned object passed to call
// sites, not package state: tests and runs get their own budgets.
type Ledger struct {
	mu      sync.Mutex
	path    string
	pricing map[string]config.PricingInfo
	stats   models.UsageStats
}

// New starts an empty ledger for this session. pricing maps model id to
// per-1K-token rates and must contain a "default" entry for unknown
// models.
func New(path string, pricing map[string]config.PricingInfo) *Ledger {
	return &Ledger{
		path:    path,
		pricing: pricing,
		stats: models.UsageStats{
			SessionID:    uuid.NewString(),
			SessionStart: time.Now().UTC(),
			ByModel:      map[string]models.ModelUsage{},
		},
	}
}

func (l *Ledger) rateFor(modelID string) config.PricingInfo {
	if p, ok := l.pricing[strings.ToLower(modelID)]; ok {
		return p
	}
	return l.pricing["default"]
}

func (l *Ledger) callCost(modelID string, tokensIn, tokensOut int) float64 {
	rate := l.rateFor(modelID)
	return float64(tokensIn)/1000*rate.InputPer1K + float64(tokensOut)/1000*rate.OutputPer1K
}

// RecordCall accounts for a completed API call and returns its
// estimated cost. It never fails the caller: persistence errors are
// logged and the in-memory totals stay correct.
func (l *Ledger) RecordCall(modelID string, tokensIn, tokensOut int) float64 {
	cost := l.callCost(modelID, tokensIn, tokensOut)

	l.mu.Lock()
	l.stats.CallCount++
	l.stats.TotalCost += cost

	mu := l.stats.ByModel[modelID]
	mu.Count++
	mu.TotalCost += cost
	mu.InputTokens += int64(tokensIn)
	mu.OutputTokens += int64(tokensOut)
	l.stats.ByModel[modelID] = mu

	total := l.stats.TotalCost
	l.persistLocked()
	l.mu.Unlock()

	log.Infof("API call: %s, tokens: %d/%d, cost: $%.4f, total: $%.4f",
		modelID, tokensIn, tokensOut, cost, total)
	return cost
}

// CheckBudget projects the aggregate cost after a hypothetical call and
// reports whether it would exceed limit. No state is mutated; the
// caller gates the call first, then records actual usage afterward, so
// nothing is under- or double-counted. The result is advisory — the
// caller decides whether to escalate to a hard stop.
func (l *Ledger) CheckBudget(modelID string, tokensIn, tokensOut int, limit float64) models.BudgetCheck {
	cost := l.callCost(modelID, tokensIn, tokensOut)

	l.mu.Lock()
	current := l.stats.TotalCost
	l.mu.Unlock()

	check := models.BudgetCheck{
		ModelID:       modelID,
		CallCost:      cost,
		CurrentTotal:  current,
		ProjectedCost: current + cost,
		Limit:         limit,
		WouldExceed:   current+cost > limit,
	}

	if check.WouldExceed {
		log.Warnf("Budget limit would be exceeded: model %s, call $%.4f, projected $%.4f, limit $%.2f",
			modelID, cost, check.ProjectedCost, limit)
		color.Red("BUDGET WARNING: request to %s estimated at $%.4f\n"+
			"Current session total: $%.4f\n"+
			"After this request: $%.4f\n"+
			"This exceeds the configured budget limit: $%.2f",
			modelID, cost, current, check.ProjectedCost, limit)
	}
	return check
}

// CostWarning prints an informational cost projection for a planned
// call. Pure output, no state mutation.
func (l *Ledger) CostWarning(modelID string, estimatedTokens int) float64 {
	rate := l.rateFor(modelID)
	cost := float64(estimatedTokens) / 1000 * (rate.InputPer1K + rate.OutputPer1K)

	l.mu.Lock()
	total := l.stats.TotalCost
	l.mu.Unlock()

	color.Yellow("NOTE: about to use model %s\n"+
		"Estimated operation cost: $%.4f (for ~%d tokens)\n"+
		"Current session total: $%.4f",
		modelID, cost, estimatedTokens, total)
	return cost
}

// Stats returns a copy of the current totals.
func (l *Ledger) Stats() models.UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.stats
	out.ByModel = make(map[string]models.ModelUsage, len(l.stats.ByModel))
	for k, v := range l.stats.ByModel {
		out.ByModel[k] = v
	}
	return out
}

func (l *Ledger) persistLocked() {
	data, err := json.MarshalIndent(l.stats, "", "  ")
	if err != nil {
		log.Warnf("Could not serialize API usage stats: %v", err)
		return
	}
	dir := filepath.Dir(l.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warnf("Could not create ledger directory %s: %v", dir, err)
			return
		}
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		log.Warnf("Could not save API usage stats: %v", err)
	}
}

// LoadStats reads a previously persisted ledger file, for reporting
// commands that only display past spend.
func LoadStats(path string) (models.UsageStats, error) {
	var stats models.UsageStats
	data, err := os.ReadFile(path)
	if err != nil {
		return stats, err
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, err
	}
	if stats.ByModel == nil {
		stats.ByModel = map[string]models.ModelUsage{}
	}
	return stats, nil
}
