package ranking

import "math"

// RelevanceScore converts a zero-based position within a result list of
// totalResults entries into a relevance signal in [0, 1]. Position 0 scores
// 1.0 and the score decays on a log scale, de-emphasizing differences among
// low-ranked results. An empty or unknown result set scores a neutral 0.5.
func RelevanceScore(position, totalResults int) float64 {
	if totalResults <= 0 {
		return neutralScore
	}
	normalized := float64(position) / float64(totalResults)
	score := 1.0 - math.Log1p(normalized*9)/math.Ln10
	return clamp01(score)
}
