package search

import (
	"sort"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// rank zips theses with their positional scores, sorts by score
// descending, and keeps entries strictly above the threshold.
// The sort is stable: equal scores preserve corpus order.
func rank(corpus []domain.Thesis, scores []float64, threshold float64) []domain.RankedThesis {
	ranked := make([]domain.RankedThesis, 0, len(corpus))
	for i, t := range corpus {
		if scores[i] > threshold {
			ranked = append(ranked, domain.RankedThesis{Thesis: t, Score: scores[i]})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	return ranked
}
