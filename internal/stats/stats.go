// Package stats folds question outcomes into running statistics and renders reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuiz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample squeezes values into at most width points by averaging neighbours.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// ScoreSeries returns the final scores of games in order.
func ScoreSeries(games []model.GameRecord) []float64 {
	out := make([]float64, len(games))
	for i, g := range games {
		out[i] = float64(g.Score)
	}
	return out
}

// RenderSummary prints the headline numbers of a profile.
func RenderSummary(w io.Writer, p model.Profile) error {
	s := p.Statistics
	lines := []string{
		"Summary",
		fmt.Sprintf("Games: %d (this week %d)", s.TotalGames, s.GamesThisWeek),
		fmt.Sprintf("High score: %d", p.HighScore),
		fmt.Sprintf("Daily streak: %d", p.CurrentStreak),
		fmt.Sprintf("Best run: %d", s.BestStreak),
		fmt.Sprintf("Questions: %d (%d correct)", s.TotalQuestions, s.CorrectAnswers),
		fmt.Sprintf("Accuracy: %.1f%%", Accuracy(s)*100),
		fmt.Sprintf("Avg time: %.1fs", s.AverageTimePerQuestion),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderBreakdown prints a per-bucket accuracy table.
func RenderBreakdown(w io.Writer, title string, rows []BucketRow) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "No answers recorded."); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "")
		return err
	}
	headers := []string{"Name", "Accuracy", "Correct", "Total"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Name,
			fmt.Sprintf("%.1f%%", r.Bucket.Accuracy()*100),
			fmt.Sprintf("%d", r.Bucket.Correct),
			fmt.Sprintf("%d", r.Bucket.Total),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints a sparkline of recent game scores smoothed over window games.
func RenderHistory(w io.Writer, games []model.GameRecord, window, width int) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games recorded.")
		return err
	}
	scores := ScoreSeries(games)
	smoothed := Resample(MovingAverage(scores, window), width)
	best := 0.0
	for _, s := range scores {
		best = math.Max(best, s)
	}
	if _, err := fmt.Fprintf(w, "Score history (%d games, window %d, best %.0f)\n", len(games), window, best); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "[%s]\n", Sparkline(smoothed)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
