package processor

import "testing"

func resultsNamed(pairs ...any) []AnalysisResult {
	var out []AnalysisResult
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, AnalysisResult{
			FileName:     pairs[i].(string),
			ScaledEnergy: pairs[i+1].(float64),
		})
	}
	return out
}

func names(results []AnalysisResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.FileName
	}
	return out
}

func equalNames(t *testing.T, got []AnalysisResult, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("order = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("order = %v, want %v", g, want)
		}
	}
}

func TestRankResults(t *testing.T) {
	in := resultsNamed("quiet", 1.0, "loud", 30.0, "tie-first", 5.0, "tie-second", 5.0, "zero", 0.0)

	ranked := RankResults(in)
	equalNames(t, ranked, "loud", "tie-first", "tie-second", "quiet", "zero")

	// Input untouched
	equalNames(t, in, "quiet", "loud", "tie-first", "tie-second", "zero")
}

func TestHistoryPrependsBatches(t *testing.T) {
	var h History

	first := h.Add(resultsNamed("a", 1.0, "b", 2.0))
	equalNames(t, first, "b", "a")

	second := h.Add(resultsNamed("c", 0.5, "d", 9.0))
	equalNames(t, second, "d", "c")

	// Newest batch first, and the older batch is not re-ranked against it
	equalNames(t, h.Results(), "d", "c", "b", "a")
	if h.Len() != 4 {
		t.Errorf("Len() = %d, want 4", h.Len())
	}

	h.Add(nil)
	if h.Len() != 4 {
		t.Errorf("Len() after empty batch = %d, want 4", h.Len())
	}
}
