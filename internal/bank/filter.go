package bank

import (
	"strings"

	"github.com/verte-zerg/tuiz/internal/model"
)

// FilterFunc returns true when a question should be kept.
type FilterFunc func(model.Question) bool

// FilterFor returns the filter matching the settings. All disables a criterion.
func FilterFor(settings model.Settings) FilterFunc {
	difficulty := strings.TrimSpace(settings.Difficulty)
	category := strings.TrimSpace(settings.Category)
	return func(q model.Question) bool {
		if difficulty != "" && difficulty != model.All && string(q.Difficulty) != difficulty {
			return false
		}
		if category != "" && category != model.All && q.Category != category {
			return false
		}
		return true
	}
}

// Eligible returns the questions matching the settings, in bank order.
func (b *Bank) Eligible(settings model.Settings) []model.Question {
	keep := FilterFor(settings)
	out := make([]model.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// ValidSettings reports whether the filters name a known difficulty and category.
func (b *Bank) ValidSettings(settings model.Settings) bool {
	if settings.Difficulty != model.All {
		if _, ok := ParseDifficulty(settings.Difficulty); !ok {
			return false
		}
	}
	if settings.Category == model.All {
		return true
	}
	for _, c := range b.categories {
		if c == settings.Category {
			return true
		}
	}
	return false
}
