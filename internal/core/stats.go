package core

// HighConfidenceThreshold is the exclusive lower bound for a high-confidence verdict
const HighConfidenceThreshold = 0.8

// BatchStats summarizes a batch of verdicts
type BatchStats struct {
	Total                   int                  `json:"total" yaml:"total"`
	CountByCategory         map[Category]int     `json:"count_by_category" yaml:"count_by_category"`
	AvgConfidenceByCategory map[Category]float64 `json:"avg_confidence_by_category" yaml:"avg_confidence_by_category"`
	HighConfidenceCount     int                  `json:"high_confidence_count" yaml:"high_confidence_count"`
}

// Aggregate folds verdicts into per-category counts and mean confidence.
// Every category is reported; nil entries are skipped.
func Aggregate(results []*ClassificationResult) BatchStats {
	stats := BatchStats{
		CountByCategory:         make(map[Category]int, len(Categories)),
		AvgConfidenceByCategory: make(map[Category]float64, len(Categories)),
	}
	sums := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		stats.CountByCategory[c] = 0
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		stats.Total++
		stats.CountByCategory[r.Category]++
		sums[r.Category] += r.Confidence
		if r.Confidence > HighConfidenceThreshold {
			stats.HighConfidenceCount++
		}
	}

	for c, n := range stats.CountByCategory {
		if n == 0 {
			stats.AvgConfidenceByCategory[c] = 0
			continue
		}
		stats.AvgConfidenceByCategory[c] = sums[c] / float64(n)
	}
	return stats
}
