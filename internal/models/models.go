package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// CostString holds a per-1K-token unit cost as reported by the catalog
// endpoint. The gateway is inconsistent about the JSON type (sometimes a
// quoted string, sometimes a bare number), so unmarshalling accepts both
// and keeps the raw text. An empty or non-numeric value means the cost
// is unusable.
type CostString string

func (c *CostString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CostString(s)
		return nil
	}
	// Bare number; keep its textual form.
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CostString(n.String())
	return nil
}

// Value returns the parsed cost, or +Inf when the field is absent or
// not a number. Infinite cost makes a model ineligible for selection
// rather than free — defaulting to zero would bias the selector.
func (c CostString) Value() float64 {
	if c == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(string(c), 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// Valid reports whether the cost parses to a finite number.
func (c CostString) Valid() bool {
	return !math.IsInf(c.Value(), 1)
}

// ModelRecord is the cached view of one catalog model. Owned by the
// catalog cache; mutated only during a refresh cycle.
type ModelRecord struct {
	ID             string     `json:"id"`
	Title          string     `json:"title,omitempty"`
	CostContext    CostString `json:"cost_context,omitempty"`
	CostCompletion CostString `json:"cost_completion,omitempty"`
	// HasVision is tri-state: nil means never determined.
	HasVision     *bool     `json:"has_vision,omitempty"`
	VisionChecked bool      `json:"vision_checked"`
	LastSeen      time.Time `json:"last_seen"`
}

// TotalCost is the selection metric: declared input cost plus declared
// output cost, or +Inf when either is unusable.
func (m ModelRecord) TotalCost() float64 {
	return m.CostContext.Value() + m.CostCompletion.Value()
}

// HasCostData reports whether both unit costs are usable.
func (m ModelRecord) HasCostData() bool {
	return m.CostContext.Valid() && m.CostCompletion.Valid()
}

// VisionConfirmed reports whether a live probe positively confirmed
// image input support.
func (m ModelRecord) VisionConfirmed() bool {
	return m.VisionChecked && m.HasVision != nil && *m.HasVision
}

// VisionDenied reports whether vision support was explicitly ruled out.
func (m ModelRecord) VisionDenied() bool {
	return m.HasVision != nil && !*m.HasVision
}

// CatalogSnapshot is the persisted unit of the model cache. It is
// replaced wholesale on every successful refresh, never patched on disk.
type CatalogSnapshot struct {
	LastUpdated *time.Time             `json:"last_updated"`
	Models      map[string]ModelRecord `json:"models"`
}

// EmptySnapshot returns a snapshot equivalent to "no cache on disk".
func EmptySnapshot() *CatalogSnapshot {
	return &CatalogSnapshot{Models: map[string]ModelRecord{}}
}

// Candidate is a model that passed vision qualification, with the tier
// that admitted it. Heuristic candidates were never positively probed;
// callers running unattended may want to refuse them.
type Candidate struct {
	ModelRecord
	Heuristic bool
}

// ModelUsage accumulates per-model call statistics in the usage ledger.
type ModelUsage struct {
	Count        int     `json:"count"`
	TotalCost    float64 `json:"total_cost"`
	InputTokens  int64   `json:"total_tokens_input"`
	OutputTokens int64   `json:"total_tokens_output"`
}

// UsageStats is the persisted usage-ledger shape: aggregate counters,
// per-model subtotals and the session start timestamp.
type UsageStats struct {
	SessionID    string                `json:"session_id"`
	SessionStart time.Time             `json:"session_start"`
	CallCount    int                   `json:"calls_count"`
	TotalCost    float64               `json:"total_cost_estimate"`
	ByModel      map[string]ModelUsage `json:"calls_by_model"`
}

// BudgetCheck is the result of a pre-flight budget projection.
type BudgetCheck struct {
	ModelID       string
	CallCost      float64
	CurrentTotal  float64
	ProjectedCost float64
	Limit         float64
	WouldExceed   bool
}

// Edge is one undirected edge of an extracted graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GraphResult is the outcome of a successful extraction call.
type GraphResult struct {
	ModelID   string   `json:"model_id"`
	Vertices  []string `json:"vertices"`
	Edges     []Edge   `json:"edges"`
	Adjacency [][]int  `json:"adjacency"`
	CallCost  float64  `json:"call_cost"`
}
