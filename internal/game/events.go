package game

import "sync"

// Event is a side-channel notification for feedback layers such as sound.
type Event int

// Events fired alongside transitions.
const (
	EventQuestionCorrect Event = iota + 1
	EventQuestionIncorrect
	EventTimeWarning
	EventGameStart
	EventHover
)

func (e Event) String() string {
	switch e {
	case EventQuestionCorrect:
		return "question-correct"
	case EventQuestionIncorrect:
		return "question-incorrect"
	case EventTimeWarning:
		return "time-warning"
	case EventGameStart:
		return "game-start"
	case EventHover:
		return "hover"
	default:
		return "unknown"
	}
}

// Listener receives events. It must not call back into the Game.
type Listener func(Event)

type eventBus struct {
	mu        sync.RWMutex
	listeners []Listener
}

func (b *eventBus) subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// publish runs listeners synchronously, in subscription order.
func (b *eventBus) publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		l(e)
	}
}
