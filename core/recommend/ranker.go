package recommend

import "sort"

// Rank sorts scored candidates by composite score descending and returns
// at most limit entries. The sort is stable: candidates with equal scores
// keep their pool order. An empty pool yields an empty result.
func Rank(scored []ScoredCandidate, limit int) []ScoredCandidate {
	out := append([]ScoredCandidate(nil), scored...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalScore > out[j].TotalScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
