package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/tuiz/internal/model"
)

// HistorySource lists finished games.
type HistorySource interface {
	ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Profile      model.Profile
	Games        []model.GameRecord
	Categories   []BucketRow
	Difficulties []BucketRow
	Weakest      []BucketRow
}

// BuildReport prepares a profile and its game history for rendering.
// A nil hist yields a report without games.
func BuildReport(ctx context.Context, p model.Profile, hist HistorySource, cfg model.StatsConfig) (Report, error) {
	var games []model.GameRecord
	if hist != nil {
		var err error
		games, err = hist.ListGames(ctx, cfg)
		if err != nil {
			return Report{}, err
		}
	}
	if cfg.Last > 0 && len(games) > cfg.Last {
		games = games[len(games)-cfg.Last:]
	}
	return Report{
		Profile:      p,
		Games:        games,
		Categories:   CategoryRows(p.Statistics.CategoriesPlayed),
		Difficulties: DifficultyRows(p.Statistics.DifficultiesPlayed),
		Weakest:      WeakestCategories(p.Statistics.CategoriesPlayed, 3, 3),
	}, nil
}

// Render writes the whole report as plain text.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Profile); err != nil {
		return err
	}
	if err := RenderBreakdown(w, "Categories", r.Categories); err != nil {
		return err
	}
	if err := RenderBreakdown(w, "Difficulties", r.Difficulties); err != nil {
		return err
	}
	return RenderHistory(w, r.Games, window, width)
}
