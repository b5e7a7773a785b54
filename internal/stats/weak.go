package stats

import (
	"sort"

	"github.com/verte-zerg/tuiz/internal/model"
)

// WeakestCategories selects the lowest-accuracy categories with at least minTotal answers.
func WeakestCategories(buckets map[string]model.Bucket, top, minTotal int) []BucketRow {
	candidates := make([]BucketRow, 0, len(buckets))
	for _, row := range bucketRows(buckets) {
		if row.Bucket.Total < minTotal || row.Bucket.Total == 0 {
			continue
		}
		candidates = append(candidates, row)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := candidates[i].Bucket.Accuracy()
		aj := candidates[j].Bucket.Accuracy()
		if ai == aj {
			return candidates[i].Name < candidates[j].Name
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}
