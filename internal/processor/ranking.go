package processor

import (
	"sort"
	"sync"
)

// RankResults returns a copy of results ordered by descending ScaledEnergy.
// Equal energies keep their submission order.
func RankResults(results []AnalysisResult) []AnalysisResult {
	ranked := append([]AnalysisResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ScaledEnergy > ranked[j].ScaledEnergy
	})
	return ranked
}

// History accumulates completed batches, newest batch first. Each batch is
// ranked on its own; earlier batches are never re-sorted.
type History struct {
	mu      sync.Mutex
	results []AnalysisResult
}

// Add ranks batch and prepends it, returning the ranked batch
func (h *History) Add(batch []AnalysisResult) []AnalysisResult {
	ranked := RankResults(batch)

	h.mu.Lock()
	defer h.mu.Unlock()
	merged := make([]AnalysisResult, 0, len(ranked)+len(h.results))
	merged = append(merged, ranked...)
	h.results = append(merged, h.results...)
	return ranked
}

// Results returns a copy of the history in display order
func (h *History) Results() []AnalysisResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]AnalysisResult(nil), h.results...)
}

// Len returns the number of results held
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.results)
}
