package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiz/internal/bank"
	"github.com/verte-zerg/tuiz/internal/model"
	"github.com/verte-zerg/tuiz/internal/profile"
	"github.com/verte-zerg/tuiz/internal/stats"
)

const wrongAnswer = "qqqq"

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type memKV struct {
	data   map[string][]byte
	setErr error
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type memHistory struct {
	games []model.GameRecord
}

func (h *memHistory) AppendGame(_ context.Context, rec model.GameRecord) error {
	h.games = append(h.games, rec)
	return nil
}

type fixture struct {
	clock    *clock
	kv       *memKV
	profiles *profile.Adapter
	history  *memHistory
	events   []Event
	game     *Game
}

func testBank(t *testing.T) *bank.Bank {
	t.Helper()
	b, err := bank.New([]model.Question{
		{ID: 1, Text: "one", Answers: []string{"mercury"}, Category: "Science", Difficulty: model.Easy},
		{ID: 2, Text: "two", Answers: []string{"venus"}, Category: "Science", Difficulty: model.Medium},
		{ID: 3, Text: "three", Answers: []string{"napoleon"}, Category: "History", Difficulty: model.Hard},
		{ID: 4, Text: "four", Answers: []string{"everest", "mount everest"}, Category: "Geography", Difficulty: model.Easy},
		{ID: 5, Text: "five", Answers: []string{"shakespeare"}, Category: "Literature", Difficulty: model.Medium},
	})
	require.NoError(t, err)
	return b
}

func newFixture(t *testing.T, seed model.Profile, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		// Wednesday 2026-10-14.
		clock:   &clock{t: time.Date(2026, 10, 14, 15, 0, 0, 0, time.Local)},
		kv:      &memKV{data: map[string][]byte{}},
		history: &memHistory{},
	}
	f.profiles = profile.New(f.kv, profile.WithClock(f.clock.now))
	if seed.Statistics.WeekAnchor != "" {
		saveProfile(t, f.profiles, seed)
	}
	opts = append([]Option{
		WithClock(f.clock.now),
		WithRand(rand.New(rand.NewSource(7))),
		WithHistory(f.history),
	}, opts...)
	f.game = New(context.Background(), testBank(t), f.profiles, opts...)
	f.game.Subscribe(func(e Event) {
		f.events = append(f.events, e)
	})
	return f
}

func saveProfile(t *testing.T, a *profile.Adapter, p model.Profile) {
	t.Helper()
	require.NoError(t, a.Save(context.Background(), model.PartialProfile{
		HighScore:      &p.HighScore,
		CurrentStreak:  &p.CurrentStreak,
		LastPlayedDate: &p.LastPlayedDate,
		Statistics:     &p.Statistics,
	}))
}

func (f *fixture) answerCorrectly(t *testing.T) {
	t.Helper()
	q, ok := f.game.Question()
	require.True(t, ok)
	correct, err := f.game.SubmitAnswer(context.Background(), q.Answers[0])
	require.NoError(t, err)
	require.True(t, correct)
}

// playGame plays one game that ends with score correct answers and a wrong one.
func (f *fixture) playGame(t *testing.T, score int) {
	t.Helper()
	require.NoError(t, f.game.StartGame())
	for i := 0; i < score; i++ {
		f.answerCorrectly(t)
	}
	correct, err := f.game.SubmitAnswer(context.Background(), wrongAnswer)
	require.NoError(t, err)
	require.False(t, correct)
	require.Equal(t, model.PhaseGameOver, f.game.Phase())
	require.NoError(t, f.game.ReturnToMenu())
}

func (f *fixture) stored(t *testing.T) model.Profile {
	t.Helper()
	p, err := f.profiles.Load(context.Background())
	require.NoError(t, err)
	return p
}

func TestThreeCorrectThenTimeout(t *testing.T) {
	f := newFixture(t, model.Profile{})
	ctx := context.Background()

	require.NoError(t, f.game.StartGame())
	for i := 0; i < 3; i++ {
		f.clock.advance(2 * time.Second)
		f.answerCorrectly(t)
	}
	assert.Equal(t, 3, f.game.Score())

	for i := 0; i < 20; i++ {
		f.clock.advance(time.Second)
		require.True(t, f.game.Tick(ctx, f.game.Seq()))
	}
	assert.Equal(t, model.PhaseGameOver, f.game.Phase())
	assert.False(t, f.game.Tick(ctx, f.game.Seq()))

	p := f.stored(t)
	assert.Equal(t, 3, p.HighScore)
	assert.Equal(t, 1, p.Statistics.TotalGames)
	assert.Equal(t, 3, p.Statistics.BestStreak)
	assert.Equal(t, 4, p.Statistics.TotalQuestions)
	assert.Equal(t, 3, p.Statistics.CorrectAnswers)
	assert.Equal(t, 1, p.Statistics.GamesThisWeek)
	assert.InDelta(t, (2.0*3+20)/4, p.Statistics.AverageTimePerQuestion, 1e-9)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, "2026-10-14", p.LastPlayedDate)
	assert.Equal(t, p, f.game.Profile())
	assert.True(t, f.game.TodayPlayed())

	res := f.game.Result()
	assert.True(t, res.TimedOut)
	assert.True(t, res.NewHighScore)
	assert.Equal(t, 3, res.Score)

	require.Len(t, f.history.games, 1)
	rec := f.history.games[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 3, rec.Score)
	assert.Equal(t, 4, rec.Questions)
	assert.True(t, rec.TimedOut)

	assert.Equal(t, []Event{
		EventGameStart,
		EventQuestionCorrect, EventQuestionCorrect, EventQuestionCorrect,
		EventTimeWarning,
		EventQuestionIncorrect,
	}, f.events)
}

func TestStaleTickIsIgnored(t *testing.T) {
	f := newFixture(t, model.Profile{})
	ctx := context.Background()
	require.NoError(t, f.game.StartGame())
	first := f.game.Seq()
	require.True(t, f.game.Tick(ctx, first))
	f.answerCorrectly(t)

	for i := 0; i < 30; i++ {
		assert.False(t, f.game.Tick(ctx, first))
	}
	assert.Equal(t, model.PhasePlaying, f.game.Phase())
	assert.Equal(t, 20, f.game.Countdown().Remaining())
}

func TestEmptyAnswerIsRejected(t *testing.T) {
	f := newFixture(t, model.Profile{})
	require.NoError(t, f.game.StartGame())
	seq := f.game.Seq()

	_, err := f.game.SubmitAnswer(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Equal(t, model.PhasePlaying, f.game.Phase())
	assert.Equal(t, seq, f.game.Seq())
	assert.True(t, f.game.Countdown().Running())
	assert.Equal(t, 0, f.stored(t).Statistics.TotalQuestions)
}

func TestIntentsInWrongPhase(t *testing.T) {
	f := newFixture(t, model.Profile{})
	ctx := context.Background()

	_, err := f.game.SubmitAnswer(ctx, "venus")
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.ErrorIs(t, f.game.TimeExpired(ctx), ErrWrongPhase)
	assert.ErrorIs(t, f.game.ReturnToMenu(), ErrWrongPhase)

	require.NoError(t, f.game.StartGame())
	assert.ErrorIs(t, f.game.StartGame(), ErrWrongPhase)
	assert.ErrorIs(t, f.game.ViewStatistics(ctx), ErrWrongPhase)
	hard := string(model.Hard)
	assert.ErrorIs(t, f.game.UpdateSettings(SettingsUpdate{Difficulty: &hard}), ErrWrongPhase)
	assert.Equal(t, model.All, f.game.Settings().Difficulty)
}

func TestWrongAnswerEndsGame(t *testing.T) {
	f := newFixture(t, model.Profile{})
	f.playGame(t, 2)

	p := f.stored(t)
	assert.Equal(t, 2, p.HighScore)
	assert.Equal(t, 3, p.Statistics.TotalQuestions)
	assert.Equal(t, 2, p.Statistics.CorrectAnswers)
	assert.False(t, f.history.games[0].TimedOut)
	assert.Equal(t, model.PhaseMenu, f.game.Phase())
	_, ok := f.game.Question()
	assert.False(t, ok)
}

func TestHighScoreNeverDecreases(t *testing.T) {
	f := newFixture(t, model.Profile{})
	want := []int{5, 5, 9, 9}
	for i, score := range []int{5, 2, 9, 3} {
		f.playGame(t, score)
		p := f.stored(t)
		assert.Equal(t, want[i], p.HighScore)
		assert.Equal(t, want[i], f.game.HighScore())
	}
	p := f.stored(t)
	assert.Equal(t, 9, p.Statistics.BestStreak)
	assert.Equal(t, 4, p.Statistics.TotalGames)
}

func TestDailyStreak(t *testing.T) {
	cases := []struct {
		name       string
		lastPlayed string
		streak     int
		want       int
	}{
		{name: "consecutive day", lastPlayed: "2026-10-13", streak: 3, want: 4},
		{name: "missed days", lastPlayed: "2026-10-09", streak: 3, want: 1},
		{name: "same day", lastPlayed: "2026-10-14", streak: 2, want: 2},
		{name: "first game", lastPlayed: "", streak: 0, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.Local)
			seed := model.Profile{
				CurrentStreak:  tc.streak,
				LastPlayedDate: tc.lastPlayed,
				Statistics:     stats.NewStatistics(now),
			}
			f := newFixture(t, seed)
			f.playGame(t, 1)
			assert.Equal(t, tc.want, f.stored(t).CurrentStreak)
			assert.Equal(t, tc.want, f.game.CurrentStreak())
		})
	}
}

func TestSettingsFilterQuestions(t *testing.T) {
	f := newFixture(t, model.Profile{})
	science := "Science"
	require.NoError(t, f.game.UpdateSettings(SettingsUpdate{Category: &science}))
	assert.Equal(t, model.All, f.game.Settings().Difficulty)

	require.NoError(t, f.game.StartGame())
	q, _ := f.game.Question()
	assert.Equal(t, "Science", q.Category)
	f.answerCorrectly(t)
	q, _ = f.game.Question()
	assert.Equal(t, "Science", q.Category)
}

func TestUnmatchedFiltersFallBackToWholeBank(t *testing.T) {
	f := newFixture(t, model.Profile{}, WithSettings(model.Settings{Difficulty: string(model.Hard), Category: "Science"}))
	require.NoError(t, f.game.StartGame())
	_, ok := f.game.Question()
	assert.True(t, ok)
}

func TestViewStatisticsReloadsProfile(t *testing.T) {
	f := newFixture(t, model.Profile{})
	ctx := context.Background()
	assert.Equal(t, 0, f.game.Statistics().TotalGames)

	now := f.clock.now()
	s := stats.RecordGameEnd(stats.NewStatistics(now), 4)
	require.NoError(t, f.profiles.Save(ctx, model.PartialProfile{Statistics: &s}))

	require.NoError(t, f.game.ViewStatistics(ctx))
	assert.Equal(t, model.PhaseStatistics, f.game.Phase())
	assert.Equal(t, 1, f.game.Statistics().TotalGames)
	require.NoError(t, f.game.ReturnToMenu())
	assert.Equal(t, model.PhaseMenu, f.game.Phase())
}

func TestSaveFailureKeepsSessionRunning(t *testing.T) {
	f := newFixture(t, model.Profile{})
	f.kv.setErr = errors.New("read-only filesystem")

	require.NoError(t, f.game.StartGame())
	f.answerCorrectly(t)
	require.NoError(t, f.game.TimeExpired(context.Background()))

	assert.Equal(t, model.PhaseGameOver, f.game.Phase())
	assert.Equal(t, 1, f.game.HighScore())
	assert.Equal(t, 1, f.game.Statistics().TotalGames)
	assert.Equal(t, 2, f.game.Statistics().TotalQuestions)
	_, ok := f.kv.data[profile.Key]
	assert.False(t, ok)
}

func TestCategoriesAreSorted(t *testing.T) {
	f := newFixture(t, model.Profile{})
	assert.Equal(t, []string{"Geography", "History", "Literature", "Science"}, f.game.Categories())
}

func TestHoverPublishesEvent(t *testing.T) {
	f := newFixture(t, model.Profile{})
	f.game.Hover()
	assert.Equal(t, []Event{EventHover}, f.events)
}
