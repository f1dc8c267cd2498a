package brain

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// DefaultStateKey is the key the engine state is stored under.
const DefaultStateKey = "retroos_ai_state"

const (
	rejectionLimit      = 3
	visibilityStep      = 0.2
	helperLookback      = 5
	helperHesitations   = 2
	helperMinVisibility = 0.3
	debugTopSubjects    = 5
)

// Store is the durable key-value store the engine persists to.
// Get reports found=false when the key has never been written.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// Rand is the randomness source used to pick phrases and dialogs.
type Rand interface {
	Intn(n int) int
}

// Clock returns the current time in milliseconds since the epoch.
type Clock func() int64

// SystemClock reads the wall clock.
func SystemClock() int64 {
	return time.Now().UnixMilli()
}

// Engine is the behavior engine. It is not safe for concurrent use;
// callers that share an engine must serialize access.
type Engine struct {
	store   Store
	key     string
	clock   Clock
	rnd     Rand
	catalog *Catalog
	logger  *zap.Logger
	state   *State
}

// Option configures an Engine.
type Option func(*Engine)

// WithStateKey overrides the key the state is stored under.
func WithStateKey(key string) Option {
	return func(e *Engine) {
		if key != "" {
			e.key = key
		}
	}
}

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rnd = r
		}
	}
}

// WithSeed seeds a private math/rand source. Zero seeds from the clock.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithCatalog replaces the built-in phrase catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine and loads its state from store. A missing or
// unreadable state yields a fresh default state.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		key:    DefaultStateKey,
		clock:  SystemClock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}

	e.state = e.load()

	// A state that has never commented always looks new.
	if e.state.TotalInteractions == 0 {
		e.state.IsFirstSession = true
		e.state.Mood = MoodExcited
	}

	return e
}

// load reads the state from the store, falling back to defaults.
func (e *Engine) load() *State {
	now := e.clock()
	if e.store == nil {
		return defaultState(now)
	}

	blob, found, err := e.store.Get(e.key)
	if err != nil {
		e.logger.Warn("failed to read engine state, using defaults", zap.String("key", e.key), zap.Error(err))
		return defaultState(now)
	}
	if !found || blob == "" {
		return defaultState(now)
	}

	s, err := decodeState(blob, now)
	if err != nil {
		e.logger.Warn("stored engine state is malformed, using defaults", zap.String("key", e.key), zap.Error(err))
		return defaultState(now)
	}
	return s
}

// save writes the state through to the store. Failures are logged only.
func (e *Engine) save() {
	if e.store == nil {
		return
	}
	blob, err := encodeState(e.state)
	if err != nil {
		e.logger.Warn("failed to encode engine state", zap.Error(err))
		return
	}
	if err := e.store.Set(e.key, blob); err != nil {
		e.logger.Warn("failed to persist engine state", zap.String("key", e.key), zap.Error(err))
	}
}

// RecordAction appends an action to the window, updates the subject's
// stats, recomputes skill level and predictions, and persists.
func (e *Engine) RecordAction(action UserAction) {
	s := e.state

	s.RecentActions = append(s.RecentActions, action)
	if len(s.RecentActions) > maxRecentActions {
		s.RecentActions = append([]UserAction(nil), s.RecentActions[len(s.RecentActions)-maxRecentActions:]...)
	}

	stats := s.statsFor(action.SubjectID)
	switch action.Kind {
	case KindAppOpen:
		stats.OpenCount++
		stats.LastOpened = action.Timestamp
	case KindAppClose:
		if action.Duration != nil {
			stats.TotalTimeSpent += *action.Duration
		}
	case KindHesitation:
		stats.HesitationCount++
	case KindError:
		stats.ErrorCount++
	}

	s.SkillLevel = deriveSkillLevel(s.RecentActions)
	s.Predictions = generatePredictions(s, e.clock())

	e.logger.Debug("recorded action",
		zap.String("kind", string(action.Kind)),
		zap.String("subject", action.SubjectID),
		zap.String("skill", string(s.SkillLevel)),
		zap.Int("predictions", len(s.Predictions)),
	)

	e.save()
}

// RecordRejection notes that the user dismissed a suggestion for a
// subject. From the third rejection on, every rejection lowers visibility.
// Subjects the engine has never seen are ignored.
func (e *Engine) RecordRejection(subjectID string) {
	stats, ok := e.state.Stats[subjectID]
	if !ok {
		e.logger.Debug("rejection for unknown subject ignored", zap.String("subject", subjectID))
		return
	}

	stats.RejectionCount++
	if stats.RejectionCount >= rejectionLimit {
		e.state.Visibility = lowerVisibility(e.state.Visibility)
	}

	e.save()
}

// lowerVisibility steps visibility down, rounding to two decimals so
// repeated steps don't drift.
func lowerVisibility(v float64) float64 {
	next := math.Round((v-visibilityStep)*100) / 100
	return math.Max(minVisibility, next)
}

// GetPredictions returns the current predictions at or above the threshold.
func (e *Engine) GetPredictions() []Prediction {
	out := []Prediction{}
	for _, p := range e.state.Predictions {
		if p.Confidence >= predictionThreshold {
			out = append(out, p)
		}
	}
	return out
}

// GetSortedApps orders ids by usage. The input slice is not modified.
func (e *Engine) GetSortedApps(ids []string) []string {
	return rankSubjects(ids, e.state.Stats, e.clock())
}

// ShouldShowHelper reports whether the assistant should pop up.
func (e *Engine) ShouldShowHelper() bool {
	hesitations := countKind(lastN(e.state.RecentActions, helperLookback), KindHesitation)
	return hesitations >= helperHesitations && e.state.Visibility > helperMinVisibility
}

// ShouldShowSystemDialog returns a dialog on interaction milestones.
// Multiples of 15 win over multiples of 25.
func (e *Engine) ShouldShowSystemDialog() (Dialog, bool) {
	n := e.state.TotalInteractions
	if n > 0 && n%15 == 0 {
		notices := e.catalog.Dialogs.Notices
		return notices[e.rnd.Intn(len(notices))], true
	}
	if n > 30 && n%25 == 0 {
		return e.catalog.Dialogs.FrequentUser, true
	}
	return Dialog{}, false
}

// SubjectStats pairs a subject with a copy of its stats.
type SubjectStats struct {
	ID string `json:"id"`
	AppStats
}

// DebugInfo is a read-only snapshot for diagnostics.
type DebugInfo struct {
	SkillLevel   SkillLevel     `json:"userLevel"`
	Visibility   float64        `json:"aiVisibility"`
	TotalActions int            `json:"totalActions"`
	Predictions  []Prediction   `json:"predictions"`
	TopApps      []SubjectStats `json:"topApps"`
}

// DebugInfo returns a snapshot of the engine.
func (e *Engine) DebugInfo() DebugInfo {
	s := e.state
	info := DebugInfo{
		SkillLevel:   s.SkillLevel,
		Visibility:   s.Visibility,
		TotalActions: len(s.RecentActions),
		Predictions:  append([]Prediction{}, s.Predictions...),
		TopApps:      []SubjectStats{},
	}
	for _, id := range topSubjects(s, debugTopSubjects) {
		info.TopApps = append(info.TopApps, SubjectStats{ID: id, AppStats: *s.Stats[id]})
	}
	return info
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	s := *e.state
	s.Stats = make(map[string]*AppStats, len(e.state.Stats))
	for id, st := range e.state.Stats {
		cp := *st
		s.Stats[id] = &cp
	}
	s.order = e.state.subjects()
	s.RecentActions = append([]UserAction{}, e.state.RecentActions...)
	s.Predictions = append([]Prediction{}, e.state.Predictions...)
	return s
}
