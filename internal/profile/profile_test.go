package profile

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiz/internal/model"
	"github.com/verte-zerg/tuiz/internal/stats"
	"github.com/verte-zerg/tuiz/internal/store"
)

// Wednesday; the week started on Sunday 2026-10-11.
var now = time.Date(2026, 10, 14, 15, 0, 0, 0, time.Local)

func fixedClock() time.Time { return now }

type memKV struct {
	data map[string][]byte
	sets int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.sets++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type brokenKV struct {
	getErr error
	setErr error
}

func (b brokenKV) Get(context.Context, string) ([]byte, bool, error) {
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	return nil, false, nil
}

func (b brokenKV) Set(context.Context, string, []byte) error { return b.setErr }

func (b brokenKV) Delete(context.Context, string) error { return b.setErr }

func storeProfile(t *testing.T, kv store.KV, p model.Profile) {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), Key, data))
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	kv := newMemKV()
	p, err := New(kv, WithClock(fixedClock)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.HighScore)
	assert.Equal(t, "2026-10-11", p.Statistics.WeekAnchor)
	assert.NotNil(t, p.Statistics.CategoriesPlayed)
	assert.Zero(t, kv.sets)
}

func TestLoadRollsOverStaleWeekAndPersists(t *testing.T) {
	kv := newMemKV()
	stale := Default(now)
	stale.HighScore = 7
	stale.Statistics.GamesThisWeek = 4
	stale.Statistics.WeekAnchor = stats.DayString(now.AddDate(0, 0, -8))
	storeProfile(t, kv, stale)

	p, err := New(kv, WithClock(fixedClock)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Statistics.GamesThisWeek)
	assert.Equal(t, "2026-10-11", p.Statistics.WeekAnchor)
	assert.Equal(t, 7, p.HighScore)

	var persisted model.Profile
	require.NoError(t, json.Unmarshal(kv.data[Key], &persisted))
	assert.Equal(t, 0, persisted.Statistics.GamesThisWeek)
	assert.Equal(t, "2026-10-11", persisted.Statistics.WeekAnchor)
}

func TestLoadKeepsCurrentWeek(t *testing.T) {
	kv := newMemKV()
	p := Default(now)
	p.Statistics.GamesThisWeek = 3
	storeProfile(t, kv, p)
	sets := kv.sets

	got, err := New(kv, WithClock(fixedClock)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Statistics.GamesThisWeek)
	assert.Equal(t, sets, kv.sets)
}

func TestLoadCorruptReturnsDefault(t *testing.T) {
	kv := newMemKV()
	kv.data[Key] = []byte("{not json")

	p, err := New(kv, WithClock(fixedClock)).Load(context.Background())
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, Default(now), p)
}

func TestLoadReadFailure(t *testing.T) {
	p, err := New(brokenKV{getErr: errors.New("disk gone")}, WithClock(fixedClock)).Load(context.Background())
	require.ErrorIs(t, err, ErrRead)
	assert.Equal(t, 0, p.HighScore)
}

func TestSaveMergesPresentFields(t *testing.T) {
	kv := newMemKV()
	base := Default(now)
	base.HighScore = 10
	base.CurrentStreak = 2
	base.LastPlayedDate = "2026-10-13"
	storeProfile(t, kv, base)

	a := New(kv, WithClock(fixedClock))
	streak := 3
	day := "2026-10-14"
	require.NoError(t, a.Save(context.Background(), model.PartialProfile{CurrentStreak: &streak, LastPlayedDate: &day}))

	p, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, p.HighScore)
	assert.Equal(t, 3, p.CurrentStreak)
	assert.Equal(t, "2026-10-14", p.LastPlayedDate)
	assert.True(t, TodayPlayed(p, now))
	assert.False(t, TodayPlayed(p, now.AddDate(0, 0, 1)))
}

func TestSaveOverwritesCorruptData(t *testing.T) {
	kv := newMemKV()
	kv.data[Key] = []byte("[]")
	a := New(kv, WithClock(fixedClock))
	high := 4
	require.NoError(t, a.Save(context.Background(), model.PartialProfile{HighScore: &high}))

	p, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, p.HighScore)
}

func TestSaveWriteFailure(t *testing.T) {
	high := 1
	err := New(brokenKV{setErr: errors.New("read-only")}).Save(context.Background(), model.PartialProfile{HighScore: &high})
	require.ErrorIs(t, err, ErrWrite)
}

func TestNegativeCountersAreClamped(t *testing.T) {
	kv := newMemKV()
	kv.data[Key] = []byte(`{"highScore":-3,"currentStreak":-1,"statistics":{"totalGames":-2,"weekAnchor":"2026-10-11"}}`)
	p, err := New(kv, WithClock(fixedClock)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.HighScore)
	assert.Equal(t, 0, p.CurrentStreak)
	assert.Equal(t, 0, p.Statistics.TotalGames)
}

func TestAdapterOverSQLite(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "tuiz.db"))
	require.NoError(t, err)
	defer func() {
		_ = st.Close()
	}()

	a := New(st, WithClock(fixedClock))
	high := 12
	require.NoError(t, a.Save(context.Background(), model.PartialProfile{HighScore: &high}))
	p, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, p.HighScore)

	require.NoError(t, a.Clear(context.Background()))
	p, err = a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.HighScore)
}
