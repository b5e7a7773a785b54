// Package profile loads and saves the durable player profile through a key-value store.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuiz/internal/model"
	"github.com/verte-zerg/tuiz/internal/stats"
	"github.com/verte-zerg/tuiz/internal/store"
)

// Key is the store key holding the profile blob.
const Key = "trivia_game_data"

var (
	// ErrRead reports that the store could not be read.
	ErrRead = errors.New("profile read failed")
	// ErrCorrupt reports that the stored blob could not be decoded.
	ErrCorrupt = errors.New("profile data corrupt")
	// ErrWrite reports that the store could not be written.
	ErrWrite = errors.New("profile write failed")
)

// Adapter is the read-modify-write gateway to the stored profile.
type Adapter struct {
	kv  store.KV
	now func() time.Time
	log zerolog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the wall clock used for day and week identity.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// WithLogger sets the logger for persistence failures.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Adapter) {
		a.log = log
	}
}

// New returns an adapter over kv.
func New(kv store.KV, opts ...Option) *Adapter {
	a := &Adapter{kv: kv, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Default returns the profile of a player who has never played.
func Default(now time.Time) model.Profile {
	return model.Profile{Statistics: stats.NewStatistics(now)}
}

// Load returns the stored profile. It never returns an unusable profile: on
// failure the default profile is returned together with the reason. A stale
// week anchor is rolled over and written back before returning.
func (a *Adapter) Load(ctx context.Context) (model.Profile, error) {
	p, rolled, err := a.read(ctx)
	if err != nil || !rolled {
		return p, err
	}
	a.log.Info().Str("weekAnchor", p.Statistics.WeekAnchor).Msg("weekly counter reset")
	if err := a.write(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

// Save merges the non-nil fields of partial over the stored profile and writes the result.
func (a *Adapter) Save(ctx context.Context, partial model.PartialProfile) error {
	p, _, err := a.read(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	return a.write(ctx, Merge(p, partial))
}

// Clear removes the stored profile.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Merge overlays the fields present in partial onto p.
func Merge(p model.Profile, partial model.PartialProfile) model.Profile {
	if partial.HighScore != nil {
		p.HighScore = *partial.HighScore
	}
	if partial.CurrentStreak != nil {
		p.CurrentStreak = *partial.CurrentStreak
	}
	if partial.LastPlayedDate != nil {
		p.LastPlayedDate = *partial.LastPlayedDate
	}
	if partial.Statistics != nil {
		p.Statistics = partial.Statistics.Clone()
	}
	return p
}

// TodayPlayed reports whether p already recorded a game on the day of now.
func TodayPlayed(p model.Profile, now time.Time) bool {
	return p.LastPlayedDate != "" && p.LastPlayedDate == stats.DayString(now)
}

func (a *Adapter) read(ctx context.Context) (model.Profile, bool, error) {
	now := a.now()
	data, ok, err := a.kv.Get(ctx, Key)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to read profile, using defaults")
		return Default(now), false, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if !ok {
		return Default(now), false, nil
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		a.log.Warn().Err(err).Msg("stored profile is corrupt, using defaults")
		return Default(now), false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	p = normalize(p)
	var rolled bool
	p.Statistics, rolled = stats.ApplyWeekRollover(p.Statistics, now)
	return p, rolled, nil
}

func (a *Adapter) write(ctx context.Context, p model.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := a.kv.Set(ctx, Key, data); err != nil {
		a.log.Error().Err(err).Msg("failed to write profile")
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func normalize(p model.Profile) model.Profile {
	if p.HighScore < 0 {
		p.HighScore = 0
	}
	if p.CurrentStreak < 0 {
		p.CurrentStreak = 0
	}
	p.Statistics = stats.Normalize(p.Statistics)
	return p
}
