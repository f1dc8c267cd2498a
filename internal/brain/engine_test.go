package brain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is an in-memory Store for tests.
type mapStore struct {
	data   map[string]string
	writes int
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string]string)}
}

func (m *mapStore) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Set(key, value string) error {
	m.data[key] = value
	m.writes++
	return nil
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (failingStore) Set(string, string) error         { return errors.New("disk on fire") }

// seqRand always returns the same index (mod n).
type seqRand struct{ idx int }

func (r seqRand) Intn(n int) int { return r.idx % n }

const testNow int64 = 1_700_000_000_000

func fixedClock(ms int64) Clock {
	return func() int64 { return ms }
}

func newTestEngine(t *testing.T, store Store, opts ...Option) *Engine {
	t.Helper()
	base := []Option{WithClock(fixedClock(testNow)), WithRand(seqRand{})}
	return New(store, append(base, opts...)...)
}

func open(subject string) UserAction {
	return NewAction(KindAppOpen, subject, testNow)
}

func TestNew_Defaults(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	s := e.Snapshot()

	assert.Equal(t, SkillBeginner, s.SkillLevel)
	assert.Empty(t, s.Stats)
	assert.Empty(t, s.RecentActions)
	assert.Empty(t, s.Predictions)
	assert.Equal(t, 0.7, s.Visibility)
	assert.Equal(t, PersonalitySassy, s.Personality)
	assert.Equal(t, testNow, s.SessionStartTime)
	assert.Equal(t, 0, s.TotalInteractions)
	assert.True(t, s.IsFirstSession)
	assert.Equal(t, MoodExcited, s.Mood)
}

func TestNew_MalformedStateFallsBackToDefaults(t *testing.T) {
	store := newMapStore()
	store.data[DefaultStateKey] = "{not json"

	e := newTestEngine(t, store)
	s := e.Snapshot()

	assert.Equal(t, 0.7, s.Visibility)
	assert.True(t, s.IsFirstSession)
	assert.Empty(t, s.Stats)
}

func TestNew_StoreReadFailureFallsBackToDefaults(t *testing.T) {
	e := newTestEngine(t, failingStore{})
	assert.Equal(t, SkillBeginner, e.Snapshot().SkillLevel)
}

func TestNew_ZeroInteractionsAlwaysLooksNew(t *testing.T) {
	store := newMapStore()
	store.data[DefaultStateKey] = `{"userLevel":"advanced","totalInteractions":0,"isFirstSession":false,"currentMood":"bored","aiVisibility":0.5}`

	e := newTestEngine(t, store)
	s := e.Snapshot()

	assert.True(t, s.IsFirstSession)
	assert.Equal(t, MoodExcited, s.Mood)
	assert.Equal(t, SkillAdvanced, s.SkillLevel)
	assert.Equal(t, 0.5, s.Visibility)
}

func TestNew_CustomStateKey(t *testing.T) {
	store := newMapStore()
	e := newTestEngine(t, store, WithStateKey("other_key"))
	e.RecordAction(open("paint"))

	_, found := store.data[DefaultStateKey]
	assert.False(t, found)
	assert.Contains(t, store.data["other_key"], `"paint"`)
}

func TestRecordAction_BoundedWindow(t *testing.T) {
	e := newTestEngine(t, newMapStore())

	var all []UserAction
	for i := 0; i < 57; i++ {
		a := NewAction(KindAppFocus, fmt.Sprintf("app%d", i), testNow+int64(i))
		all = append(all, a)
		e.RecordAction(a)
	}

	s := e.Snapshot()
	require.Len(t, s.RecentActions, 50)
	assert.Equal(t, all[7:], s.RecentActions)
}

func TestRecordAction_UpdatesStatsByKind(t *testing.T) {
	e := newTestEngine(t, newMapStore())

	e.RecordAction(NewAction(KindAppOpen, "paint", 1000))
	e.RecordAction(NewAction(KindAppOpen, "paint", 2000))
	e.RecordAction(NewAction(KindAppClose, "paint", 3000).WithDuration(1500))
	e.RecordAction(NewAction(KindAppClose, "paint", 3500))
	e.RecordAction(NewAction(KindError, "paint", 4000))
	e.RecordAction(NewAction(KindHesitation, "paint", 5000))
	e.RecordAction(NewAction(KindAppFocus, "paint", 6000))

	st := e.Snapshot().Stats["paint"]
	require.NotNil(t, st)
	assert.Equal(t, AppStats{
		OpenCount:       2,
		TotalTimeSpent:  1500,
		LastOpened:      2000,
		ErrorCount:      1,
		HesitationCount: 1,
	}, *st)
}

func TestRecordAction_StatsAreMonotonic(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	kinds := []ActionKind{KindAppOpen, KindError, KindHesitation, KindAppClose, KindAppFocus}

	var prev AppStats
	for i := 0; i < 120; i++ {
		e.RecordAction(NewAction(kinds[i%len(kinds)], "notepad", testNow))
		cur := *e.Snapshot().Stats["notepad"]
		assert.GreaterOrEqual(t, cur.OpenCount, prev.OpenCount)
		assert.GreaterOrEqual(t, cur.ErrorCount, prev.ErrorCount)
		assert.GreaterOrEqual(t, cur.HesitationCount, prev.HesitationCount)
		prev = cur
	}
}

func TestRecordAction_CreatesStatsForEverySubject(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	e.RecordAction(NewAction(KindDesktopClick, SubjectDesktop, testNow))
	e.RecordAction(NewAction(KindStartMenuOpen, SubjectStartMenu, testNow))

	s := e.Snapshot()
	for _, a := range s.RecentActions {
		assert.Contains(t, s.Stats, a.SubjectID)
	}
}

func TestRecordAction_WritesThrough(t *testing.T) {
	store := newMapStore()
	e := newTestEngine(t, store)

	e.RecordAction(open("paint"))
	e.RecordAction(open("snake"))

	assert.Equal(t, 2, store.writes)
}

func TestRecordAction_PersistFailureIsSilent(t *testing.T) {
	e := newTestEngine(t, failingStore{})
	assert.NotPanics(t, func() {
		e.RecordAction(open("paint"))
		e.RecordRejection("paint")
		_ = e.GenerateComment(open("paint"), "")
	})
	assert.Equal(t, 1, e.Snapshot().Stats["paint"].OpenCount)
}

func TestRecordAction_NilStore(t *testing.T) {
	e := New(nil, WithClock(fixedClock(testNow)))
	e.RecordAction(open("paint"))
	assert.Equal(t, 1, e.Snapshot().Stats["paint"].OpenCount)
}

func TestRecordRejection_VisibilityFloor(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	e.RecordAction(open("paint"))

	e.RecordRejection("paint")
	e.RecordRejection("paint")
	assert.Equal(t, 0.7, e.Snapshot().Visibility)

	e.RecordRejection("paint")
	assert.Equal(t, 0.5, e.Snapshot().Visibility)

	for i := 0; i < 15; i++ {
		e.RecordRejection("paint")
		assert.GreaterOrEqual(t, e.Snapshot().Visibility, 0.1)
	}
	assert.Equal(t, 0.1, e.Snapshot().Visibility)
	assert.Equal(t, 18, e.Snapshot().Stats["paint"].RejectionCount)
}

func TestRecordRejection_UnknownSubjectIgnored(t *testing.T) {
	store := newMapStore()
	e := newTestEngine(t, store)

	for i := 0; i < 5; i++ {
		e.RecordRejection("ghost")
	}

	assert.NotContains(t, e.Snapshot().Stats, "ghost")
	assert.Equal(t, 0.7, e.Snapshot().Visibility)
	assert.Equal(t, 0, store.writes)
}

func TestShouldShowHelper(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	assert.False(t, e.ShouldShowHelper())

	e.RecordAction(NewAction(KindHesitation, SubjectSystem, testNow))
	assert.False(t, e.ShouldShowHelper())

	e.RecordAction(NewAction(KindHesitation, SubjectSystem, testNow))
	assert.True(t, e.ShouldShowHelper())

	// Leaves a single hesitation in the last five.
	for i := 0; i < 4; i++ {
		e.RecordAction(open("paint"))
	}
	assert.False(t, e.ShouldShowHelper())
}

func TestShouldShowHelper_LowVisibility(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	e.RecordAction(open("paint"))
	for i := 0; i < 4; i++ {
		e.RecordRejection("paint")
	}
	require.Equal(t, 0.3, e.Snapshot().Visibility)

	e.RecordAction(NewAction(KindHesitation, SubjectSystem, testNow))
	e.RecordAction(NewAction(KindHesitation, SubjectSystem, testNow))
	assert.False(t, e.ShouldShowHelper())
}

func TestGetPredictions_FiltersBelowThreshold(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	e.state.Predictions = []Prediction{
		{SubjectID: "low", Confidence: 0.59, Reason: "x"},
		{SubjectID: "edge", Confidence: 0.6, Reason: "x"},
		{SubjectID: "high", Confidence: 0.85, Reason: "x"},
	}

	got := e.GetPredictions()
	require.Len(t, got, 2)
	assert.Equal(t, "edge", got[0].SubjectID)
	assert.Equal(t, "high", got[1].SubjectID)
}

func TestGetSortedApps(t *testing.T) {
	t.Run("no stats keeps input order", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		assert.Equal(t, []string{"x", "y", "z"}, e.GetSortedApps([]string{"x", "y", "z"}))
	})

	t.Run("known before unknown, by score", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		old := testNow - 10*60*1000
		e.RecordAction(NewAction(KindAppOpen, "paint", old))
		for i := 0; i < 3; i++ {
			e.RecordAction(NewAction(KindAppOpen, "snake", old))
		}
		// One recent open: 1 + 5 beats 3.
		e.RecordAction(NewAction(KindAppOpen, "tetris", testNow))

		input := []string{"notepad", "paint", "calculator", "snake", "tetris"}
		got := e.GetSortedApps(input)

		assert.Equal(t, []string{"tetris", "snake", "paint", "notepad", "calculator"}, got)
		assert.Equal(t, []string{"notepad", "paint", "calculator", "snake", "tetris"}, input)
	})

	t.Run("equal scores keep input order", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		e.RecordAction(open("b"))
		e.RecordAction(open("a"))
		assert.Equal(t, []string{"a", "b"}, e.GetSortedApps([]string{"a", "b"}))
		assert.Equal(t, []string{"b", "a"}, e.GetSortedApps([]string{"b", "a"}))
	})
}

func TestShouldShowSystemDialog_Cadence(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	notices := e.catalog.Dialogs.Notices

	tests := []struct {
		total int
		want  bool
		kind  DialogKind
	}{
		{0, false, ""},
		{1, false, ""},
		{15, true, notices[0].Kind},
		{25, false, ""},
		{30, true, notices[0].Kind},
		{50, true, DialogError},
		{75, true, notices[0].Kind},
		{100, true, DialogError},
		{150, true, notices[0].Kind},
		{16, false, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d", tt.total), func(t *testing.T) {
			e.state.TotalInteractions = tt.total
			d, ok := e.ShouldShowSystemDialog()
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.kind, d.Kind)
		})
	}
}

func TestShouldShowSystemDialog_RandomNotice(t *testing.T) {
	e := newTestEngine(t, newMapStore(), WithRand(seqRand{idx: 2}))
	e.state.TotalInteractions = 45

	d, ok := e.ShouldShowSystemDialog()
	require.True(t, ok)
	assert.Equal(t, DialogWarning, d.Kind)
	assert.Equal(t, "Behavioral Analysis", d.Title)
}

func TestDebugInfo(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		for j := 0; j <= i; j++ {
			e.RecordAction(NewAction(KindAppOpen, id, 0))
		}
	}

	info := e.DebugInfo()
	assert.Equal(t, SkillAdvanced, info.SkillLevel)
	assert.Equal(t, 0.7, info.Visibility)
	assert.Equal(t, 21, info.TotalActions)
	require.Len(t, info.TopApps, 5)
	assert.Equal(t, "f", info.TopApps[0].ID)
	assert.Equal(t, 6, info.TopApps[0].OpenCount)
	assert.Equal(t, "b", info.TopApps[4].ID)
}

func TestPersistence_RoundTrip(t *testing.T) {
	store := newMapStore()
	e := newTestEngine(t, store)

	e.RecordAction(open("paint"))
	e.RecordAction(open("snake"))
	e.RecordAction(open("paint"))
	e.RecordAction(NewAction(KindWindowDrag, "paint", testNow).WithWindow("win-1"))
	e.RecordAction(NewAction(KindAppClose, "paint", testNow).WithDuration(42))
	_ = e.GenerateComment(open("paint"), "Ada")
	_ = e.GenerateComment(open("paint"), "Ada")

	reloaded := newTestEngine(t, store)
	assert.Equal(t, e.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, e.GetSortedApps([]string{"snake", "paint"}), reloaded.GetSortedApps([]string{"snake", "paint"}))
}
