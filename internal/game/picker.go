package game

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuiz/internal/model"
)

// Picker selects questions uniformly without repeats until the pool runs out.
type Picker struct {
	rnd *rand.Rand
}

// NewPicker returns a Picker; a nil rnd is seeded with the current time.
func NewPicker(rnd *rand.Rand) *Picker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{rnd: rnd}
}

// Next picks a question and records it in used.
//
// Unused eligible questions are preferred. Once every eligible question was
// used, used restarts with the new pick. When nothing is eligible the pick
// falls back to the whole bank. all must not be empty.
func (p *Picker) Next(all, eligible []model.Question, used map[int]struct{}) model.Question {
	candidates := make([]model.Question, 0, len(eligible))
	for _, q := range eligible {
		if _, ok := used[q.ID]; !ok {
			candidates = append(candidates, q)
		}
	}

	var q model.Question
	switch {
	case len(candidates) > 0:
		q = candidates[p.rnd.Intn(len(candidates))]
	case len(eligible) > 0:
		q = eligible[p.rnd.Intn(len(eligible))]
		clear(used)
	default:
		q = all[p.rnd.Intn(len(all))]
		clear(used)
	}
	used[q.ID] = struct{}{}
	return q
}
