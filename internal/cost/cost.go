// Package cost tracks generation spend for one batch: per-asset-type,
// per-model unit counts and monetary totals.
package cost

import "sync"

// Entry aggregates the spend for one (asset type, model) pair.
type Entry struct {
	Units int     `json:"units"`
	Cost  float64 `json:"cost"`
}

// Ledger is the mutable cost record owned by the execution engine for the
// duration of one batch.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]map[string]Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]map[string]Entry)}
}

// Record adds one generation's spend under the asset type and model.
func (l *Ledger) Record(assetType, model string, units int, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	models, ok := l.entries[assetType]
	if !ok {
		models = make(map[string]Entry)
		l.entries[assetType] = models
	}
	e := models[model]
	e.Units += units
	e.Cost += cost
	models[model] = e
}

// Total returns the summed cost across every asset type and model.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, models := range l.entries {
		for _, e := range models {
			total += e.Cost
		}
	}
	return total
}

// Breakdown returns a copy of the per-type, per-model aggregation.
func (l *Ledger) Breakdown() map[string]map[string]Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]map[string]Entry, len(l.entries))
	for assetType, models := range l.entries {
		out[assetType] = make(map[string]Entry, len(models))
		for model, e := range models {
			out[assetType][model] = e
		}
	}
	return out
}
