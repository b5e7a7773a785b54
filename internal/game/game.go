// Package game runs a trivia session: phases, question selection, scoring and persistence.
package game

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuiz/internal/answer"
	"github.com/verte-zerg/tuiz/internal/bank"
	"github.com/verte-zerg/tuiz/internal/model"
	"github.com/verte-zerg/tuiz/internal/profile"
	"github.com/verte-zerg/tuiz/internal/stats"
)

var (
	// ErrWrongPhase is returned when an intent is not allowed in the current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrEmptyAnswer is returned for blank submissions.
	ErrEmptyAnswer = errors.New("answer is empty")
)

// ProfileStore is the durable profile gateway.
type ProfileStore interface {
	Load(ctx context.Context) (model.Profile, error)
	Save(ctx context.Context, partial model.PartialProfile) error
}

// GameLog receives finished games.
type GameLog interface {
	AppendGame(ctx context.Context, rec model.GameRecord) error
}

// Feedback describes the outcome of the last submission.
type Feedback struct {
	Shown    bool
	Correct  bool
	Expected string
}

// Result summarizes a finished game.
type Result struct {
	Score        int
	NewHighScore bool
	TimedOut     bool
	Question     model.Question
}

// SettingsUpdate carries the settings fields to change; nil fields are kept.
type SettingsUpdate struct {
	Difficulty *string
	Category   *string
}

// Game is the session state machine. It is not safe for concurrent use; the
// caller feeds it one intent at a time.
type Game struct {
	bank     *bank.Bank
	profiles ProfileStore
	history  GameLog
	picker   *Picker
	now      func() time.Time
	log      zerolog.Logger
	events   eventBus

	phase         model.Phase
	settings      model.Settings
	categories    []string
	question      *model.Question
	score         int
	answered      int
	used          map[int]struct{}
	questionStart time.Time
	gameStart     time.Time
	seq           int
	countdown     Countdown
	feedback      Feedback
	result        Result

	profile     model.Profile
	todayPlayed bool
	// unsaved is set while the cache holds changes the store rejected.
	unsaved bool
}

// Option configures a Game.
type Option func(*Game)

// WithHistory records every finished game in h.
func WithHistory(h GameLog) Option {
	return func(g *Game) {
		g.history = h
	}
}

// WithRand sets the random source used for question selection.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Game) {
		g.picker = NewPicker(rnd)
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Game) {
		g.log = log
	}
}

// WithTimer sets the countdown thresholds.
func WithTimer(cfg TimerConfig) Option {
	return func(g *Game) {
		g.countdown = NewCountdown(cfg)
	}
}

// WithSettings sets the initial filters.
func WithSettings(s model.Settings) Option {
	return func(g *Game) {
		g.settings = s
	}
}

// New creates a session in the menu phase and loads the cached profile.
func New(ctx context.Context, b *bank.Bank, profiles ProfileStore, opts ...Option) *Game {
	g := &Game{
		bank:      b,
		profiles:  profiles,
		picker:    NewPicker(nil),
		now:       time.Now,
		log:       zerolog.Nop(),
		phase:     model.PhaseMenu,
		settings:  model.DefaultSettings(),
		used:      map[int]struct{}{},
		countdown: NewCountdown(DefaultTimerConfig()),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.categories = b.Categories()
	p, _ := g.loadProfile(ctx)
	g.profile = p
	g.todayPlayed = profile.TodayPlayed(p, g.now())
	return g
}

// Subscribe registers l for side-channel events.
func (g *Game) Subscribe(l Listener) {
	g.events.subscribe(l)
}

// StartGame begins a new game from the menu.
func (g *Game) StartGame() error {
	if g.phase != model.PhaseMenu {
		return ErrWrongPhase
	}
	now := g.now()
	g.score = 0
	g.answered = 0
	g.feedback = Feedback{}
	g.result = Result{}
	clear(g.used)
	g.gameStart = now
	g.phase = model.PhasePlaying
	g.events.publish(EventGameStart)
	g.nextQuestion()
	g.log.Debug().Str("difficulty", g.settings.Difficulty).Str("category", g.settings.Category).Msg("game started")
	return nil
}

// SubmitAnswer evaluates text against the current question. It reports
// whether the answer was correct. A wrong answer ends the game.
func (g *Game) SubmitAnswer(ctx context.Context, text string) (bool, error) {
	if g.phase != model.PhasePlaying || g.question == nil {
		return false, ErrWrongPhase
	}
	if strings.TrimSpace(text) == "" {
		return false, ErrEmptyAnswer
	}
	q := *g.question
	correct := answer.IsMatch(text, q.Answers)
	g.recordAnswer(ctx, q, correct)
	g.feedback = Feedback{Shown: true, Correct: correct, Expected: q.Answers[0]}
	if correct {
		g.score++
		g.events.publish(EventQuestionCorrect)
		g.nextQuestion()
		return true, nil
	}
	g.events.publish(EventQuestionIncorrect)
	g.endGame(ctx, false)
	return false, nil
}

// TimeExpired ends the game because the countdown ran out. The current
// question counts as answered incorrectly.
func (g *Game) TimeExpired(ctx context.Context) error {
	if g.phase != model.PhasePlaying || g.question == nil {
		return ErrWrongPhase
	}
	g.expire(ctx)
	return nil
}

// Tick advances the countdown for question seq. Ticks for any other question,
// or outside play, are ignored and reported as not applied.
func (g *Game) Tick(ctx context.Context, seq int) bool {
	if g.phase != model.PhasePlaying {
		return false
	}
	res := g.countdown.Tick(seq)
	if !res.Applied {
		return false
	}
	if res.Warn {
		g.events.publish(EventTimeWarning)
	}
	if res.Expired {
		g.expire(ctx)
	}
	return true
}

// ReturnToMenu leaves game over or statistics.
func (g *Game) ReturnToMenu() error {
	if g.phase != model.PhaseGameOver && g.phase != model.PhaseStatistics {
		return ErrWrongPhase
	}
	g.countdown.Stop()
	g.question = nil
	g.feedback = Feedback{}
	g.phase = model.PhaseMenu
	return nil
}

// ViewStatistics opens the statistics phase with a freshly loaded profile.
func (g *Game) ViewStatistics(ctx context.Context) error {
	if g.phase != model.PhaseMenu {
		return ErrWrongPhase
	}
	if !g.unsaved {
		if p, ok := g.loadProfile(ctx); ok {
			g.profile = p
			g.todayPlayed = profile.TodayPlayed(p, g.now())
		}
	}
	g.phase = model.PhaseStatistics
	return nil
}

// UpdateSettings merges u into the settings. Only allowed in the menu.
func (g *Game) UpdateSettings(u SettingsUpdate) error {
	if g.phase != model.PhaseMenu {
		return ErrWrongPhase
	}
	if u.Difficulty != nil {
		g.settings.Difficulty = *u.Difficulty
	}
	if u.Category != nil {
		g.settings.Category = *u.Category
	}
	return nil
}

// Hover fires a hover event for menu navigation feedback.
func (g *Game) Hover() {
	g.events.publish(EventHover)
}

// Phase returns the current phase.
func (g *Game) Phase() model.Phase { return g.phase }

// Question returns the current question, if any.
func (g *Game) Question() (model.Question, bool) {
	if g.question == nil {
		return model.Question{}, false
	}
	return *g.question, true
}

// Score returns the running score.
func (g *Game) Score() int { return g.score }

// HighScore returns the cached high score.
func (g *Game) HighScore() int { return g.profile.HighScore }

// CurrentStreak returns the cached daily streak.
func (g *Game) CurrentStreak() int { return g.profile.CurrentStreak }

// TodayPlayed reports whether a game was already finished today.
func (g *Game) TodayPlayed() bool { return g.todayPlayed }

// Settings returns the active filters.
func (g *Game) Settings() model.Settings { return g.settings }

// Categories returns the sorted categories of the bank.
func (g *Game) Categories() []string { return append([]string(nil), g.categories...) }

// Profile returns the cached profile.
func (g *Game) Profile() model.Profile {
	p := g.profile
	p.Statistics = p.Statistics.Clone()
	return p
}

// Statistics returns the cached statistics.
func (g *Game) Statistics() model.Statistics { return g.profile.Statistics.Clone() }

// Countdown returns the timer state of the current question.
func (g *Game) Countdown() Countdown { return g.countdown }

// Seq returns the sequence number of the current question.
func (g *Game) Seq() int { return g.seq }

// Feedback returns the outcome of the last submission.
func (g *Game) Feedback() Feedback { return g.feedback }

// Result returns the summary of the last finished game.
func (g *Game) Result() Result { return g.result }

func (g *Game) nextQuestion() {
	all := g.bank.Questions()
	q := g.picker.Next(all, g.bank.Eligible(g.settings), g.used)
	g.question = &q
	g.questionStart = g.now()
	g.seq++
	g.countdown.Start(g.seq)
}

func (g *Game) expire(ctx context.Context) {
	q := *g.question
	g.countdown.Stop()
	g.recordAnswer(ctx, q, false)
	g.feedback = Feedback{Shown: true, Expected: q.Answers[0]}
	g.events.publish(EventQuestionIncorrect)
	g.endGame(ctx, true)
}

// recordAnswer folds one outcome into the persisted statistics.
func (g *Game) recordAnswer(ctx context.Context, q model.Question, correct bool) {
	now := g.now()
	g.answered++
	base := g.base(ctx)
	elapsed := now.Sub(g.questionStart).Seconds()
	updated := stats.RecordAnswer(base.Statistics, q.Category, string(q.Difficulty), correct, elapsed, now)
	err := g.profiles.Save(ctx, model.PartialProfile{Statistics: &updated})
	if err != nil {
		g.log.Error().Err(err).Int("question", q.ID).Msg("failed to save answer statistics")
	}
	g.unsaved = err != nil
	g.profile.Statistics = updated
}

func (g *Game) endGame(ctx context.Context, timedOut bool) {
	g.countdown.Stop()
	now := g.now()
	today := stats.DayString(now)

	persisted := g.base(ctx)

	newHighScore := max(g.score, g.profile.HighScore, persisted.HighScore)
	newStreak := g.profile.CurrentStreak
	if !profile.TodayPlayed(persisted, now) {
		if persisted.LastPlayedDate == stats.Yesterday(now) {
			newStreak = g.profile.CurrentStreak + 1
		} else {
			newStreak = 1
		}
	}
	updated := stats.RecordGameEnd(persisted.Statistics, g.score)

	partial := model.PartialProfile{
		HighScore:      &newHighScore,
		CurrentStreak:  &newStreak,
		LastPlayedDate: &today,
		Statistics:     &updated,
	}
	err := g.profiles.Save(ctx, partial)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to save game result")
	}
	g.unsaved = err != nil
	g.profile = profile.Merge(persisted, partial)
	g.todayPlayed = true

	if g.history != nil {
		rec := model.GameRecord{
			ID:         uuid.NewString(),
			StartedAt:  g.gameStart,
			EndedAt:    now,
			Score:      g.score,
			Questions:  g.answered,
			Difficulty: g.settings.Difficulty,
			Category:   g.settings.Category,
			TimedOut:   timedOut,
		}
		if err := g.history.AppendGame(ctx, rec); err != nil {
			g.log.Error().Err(err).Msg("failed to record game history")
		}
	}

	g.result = Result{
		Score:        g.score,
		NewHighScore: g.score == newHighScore && g.score > 0,
		TimedOut:     timedOut,
		Question:     *g.question,
	}
	g.phase = model.PhaseGameOver
	g.log.Info().Int("score", g.score).Int("answered", g.answered).Bool("timedOut", timedOut).Msg("game over")
}

// base returns the profile updates are folded into: the stored one unless it
// cannot be read or is behind the cache.
func (g *Game) base(ctx context.Context) model.Profile {
	if g.unsaved {
		return g.profile
	}
	if p, ok := g.loadProfile(ctx); ok {
		return p
	}
	return g.profile
}

// loadProfile reports false when the store could not be read at all; a
// corrupt blob still yields the usable default.
func (g *Game) loadProfile(ctx context.Context) (model.Profile, bool) {
	p, err := g.profiles.Load(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("failed to load profile")
		if !errors.Is(err, profile.ErrCorrupt) {
			return p, false
		}
	}
	return p, true
}
