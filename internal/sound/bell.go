// Package sound turns game events into terminal bells.
package sound

import (
	"io"
	"sync"

	"github.com/verte-zerg/tuiz/internal/game"
)

// Bell rings the terminal bell for audible game events. It starts muted.
type Bell struct {
	mu    sync.Mutex
	out   io.Writer
	muted bool
	rings map[game.Event]int
}

// NewBell returns a Bell writing to out.
func NewBell(out io.Writer, muted bool) *Bell {
	return &Bell{
		out:   out,
		muted: muted,
		rings: map[game.Event]int{
			game.EventQuestionCorrect:   1,
			game.EventQuestionIncorrect: 2,
			game.EventTimeWarning:       1,
		},
	}
}

// Listen is a game.Listener.
func (b *Bell) Listen(e game.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.muted {
		return
	}
	for i := 0; i < b.rings[e]; i++ {
		if _, err := io.WriteString(b.out, "\a"); err != nil {
			// Best-effort bell.
			_ = err
			return
		}
	}
}

// ToggleMute flips the mute state and returns the new value.
func (b *Bell) ToggleMute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muted = !b.muted
	return b.muted
}

// Muted reports whether the bell is silent.
func (b *Bell) Muted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}
