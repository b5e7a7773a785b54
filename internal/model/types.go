// Package model defines shared data structures.
package model

import "time"

// Difficulty grades a question.
type Difficulty string

// Difficulty levels.
const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// All disables a settings filter.
const All = "All"

// Difficulties lists the levels in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is a known level.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	default:
		return false
	}
}

// Question is a single trivia item. Answers always holds at least one entry.
type Question struct {
	ID         int
	Text       string
	Answers    []string
	Category   string
	Difficulty Difficulty
}

// Settings filters the question pool. Difficulty and Category accept All.
type Settings struct {
	Difficulty string
	Category   string
}

// DefaultSettings returns settings with both filters disabled.
func DefaultSettings() Settings {
	return Settings{Difficulty: All, Category: All}
}

// Phase is the mode the game session is in.
type Phase int

// Session phases.
const (
	PhaseMenu Phase = iota
	PhasePlaying
	PhaseGameOver
	PhaseStatistics
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game-over"
	case PhaseStatistics:
		return "statistics"
	default:
		return "unknown"
	}
}

// Bucket counts answers for one category or difficulty.
type Bucket struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns Correct/Total, or 0 for an empty bucket.
func (b Bucket) Accuracy() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Total)
}

// Statistics aggregates answers across every game played.
type Statistics struct {
	TotalGames             int               `json:"totalGames"`
	TotalQuestions         int               `json:"totalQuestions"`
	CorrectAnswers         int               `json:"correctAnswers"`
	CategoriesPlayed       map[string]Bucket `json:"categoriesPlayed"`
	DifficultiesPlayed     map[string]Bucket `json:"difficultiesPlayed"`
	AverageTimePerQuestion float64           `json:"averageTimePerQuestion"`
	BestStreak             int               `json:"bestStreak"`
	GamesThisWeek          int               `json:"gamesThisWeek"`
	WeekAnchor             string            `json:"weekAnchor"`
}

// Clone returns a deep copy so callers can fold updates without aliasing maps.
func (s Statistics) Clone() Statistics {
	out := s
	out.CategoriesPlayed = cloneBuckets(s.CategoriesPlayed)
	out.DifficultiesPlayed = cloneBuckets(s.DifficultiesPlayed)
	return out
}

func cloneBuckets(in map[string]Bucket) map[string]Bucket {
	out := make(map[string]Bucket, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Profile is the durable cross-session player record.
type Profile struct {
	HighScore      int        `json:"highScore"`
	CurrentStreak  int        `json:"currentStreak"`
	LastPlayedDate string     `json:"lastPlayedDate"`
	Statistics     Statistics `json:"statistics"`
}

// PartialProfile carries the fields a save should overwrite; nil fields are kept.
type PartialProfile struct {
	HighScore      *int
	CurrentStreak  *int
	LastPlayedDate *string
	Statistics     *Statistics
}

// GameRecord captures a finished game for history reporting.
type GameRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
	Score      int       `json:"score"`
	Questions  int       `json:"questions"`
	Difficulty string    `json:"difficulty"`
	Category   string    `json:"category"`
	TimedOut   bool      `json:"timedOut"`
}

// StatsConfig defines filters for the history shown in stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}
