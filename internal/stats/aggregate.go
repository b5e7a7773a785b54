package stats

import (
	"time"

	"github.com/verte-zerg/tuiz/internal/model"
)

// NewStatistics returns empty statistics anchored to the week containing now.
func NewStatistics(now time.Time) model.Statistics {
	return model.Statistics{
		CategoriesPlayed:   map[string]model.Bucket{},
		DifficultiesPlayed: map[string]model.Bucket{},
		WeekAnchor:         WeekAnchor(now),
	}
}

// Normalize fills nil maps and clamps negative counters left by hand-edited data.
func Normalize(s model.Statistics) model.Statistics {
	s = s.Clone()
	s.TotalGames = nonNegative(s.TotalGames)
	s.TotalQuestions = nonNegative(s.TotalQuestions)
	s.CorrectAnswers = nonNegative(s.CorrectAnswers)
	s.BestStreak = nonNegative(s.BestStreak)
	s.GamesThisWeek = nonNegative(s.GamesThisWeek)
	if s.AverageTimePerQuestion < 0 {
		s.AverageTimePerQuestion = 0
	}
	return s
}

// ApplyWeekRollover resets GamesThisWeek when now falls in a different week than
// the stored anchor. It reports whether a reset happened.
func ApplyWeekRollover(s model.Statistics, now time.Time) (model.Statistics, bool) {
	anchor := WeekAnchor(now)
	if s.WeekAnchor == anchor {
		return s, false
	}
	s.GamesThisWeek = 0
	s.WeekAnchor = anchor
	return s, true
}

// RecordAnswer folds one question outcome into s and returns the result; s is not modified.
func RecordAnswer(s model.Statistics, category, difficulty string, correct bool, timeSpent float64, now time.Time) model.Statistics {
	s = s.Clone()
	if timeSpent < 0 {
		timeSpent = 0
	}
	s.TotalQuestions++
	if correct {
		s.CorrectAnswers++
	}
	s.CategoriesPlayed[category] = bump(s.CategoriesPlayed[category], correct)
	s.DifficultiesPlayed[difficulty] = bump(s.DifficultiesPlayed[difficulty], correct)

	prev := float64(s.TotalQuestions - 1)
	s.AverageTimePerQuestion = (s.AverageTimePerQuestion*prev + timeSpent) / float64(s.TotalQuestions)

	s, _ = ApplyWeekRollover(s, now)
	return s
}

// RecordGameEnd counts a finished game with the given final score.
func RecordGameEnd(s model.Statistics, finalScore int) model.Statistics {
	s = s.Clone()
	s.TotalGames++
	s.GamesThisWeek++
	if finalScore > s.BestStreak {
		s.BestStreak = finalScore
	}
	return s
}

// Accuracy returns CorrectAnswers/TotalQuestions, or 0 before any answer.
func Accuracy(s model.Statistics) float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalQuestions)
}

func bump(b model.Bucket, correct bool) model.Bucket {
	b.Total++
	if correct {
		b.Correct++
	}
	return b
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
