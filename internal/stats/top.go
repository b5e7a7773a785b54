package stats

import (
	"sort"

	"github.com/verte-zerg/tuiz/internal/model"
)

// BucketRow pairs a category or difficulty name with its counts.
type BucketRow struct {
	Name   string
	Bucket model.Bucket
}

// CategoryRows orders categories by total answered, most played first.
func CategoryRows(buckets map[string]model.Bucket) []BucketRow {
	rows := bucketRows(buckets)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Bucket.Total == rows[j].Bucket.Total {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Bucket.Total > rows[j].Bucket.Total
	})
	return rows
}

// DifficultyRows orders difficulties Easy, Medium, Hard, then any unknown names.
func DifficultyRows(buckets map[string]model.Bucket) []BucketRow {
	rank := func(name string) int {
		for i, d := range model.Difficulties {
			if string(d) == name {
				return i
			}
		}
		return len(model.Difficulties)
	}
	rows := bucketRows(buckets)
	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rank(rows[i].Name), rank(rows[j].Name)
		if ri == rj {
			return rows[i].Name < rows[j].Name
		}
		return ri < rj
	})
	return rows
}

func bucketRows(buckets map[string]model.Bucket) []BucketRow {
	rows := make([]BucketRow, 0, len(buckets))
	for name, b := range buckets {
		rows = append(rows, BucketRow{Name: name, Bucket: b})
	}
	return rows
}
