package brain

import (
	"encoding/json"
	"fmt"
)

// SkillLevel is the coarse proficiency classification of the user.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Mood colors the regular app-open commentary.
type Mood string

const (
	MoodExcited   Mood = "excited" // initial value only, never derived
	MoodBored     Mood = "bored"
	MoodImpressed Mood = "impressed"
	MoodConcerned Mood = "concerned"
	MoodPlayful   Mood = "playful"
)

// Personality is fixed at creation.
type Personality string

const (
	PersonalitySassy       Personality = "sassy"
	PersonalityHelpful     Personality = "helpful"
	PersonalitySarcastic   Personality = "sarcastic"
	PersonalityEncouraging Personality = "encouraging"
)

const (
	// maxRecentActions bounds the recent-action window.
	maxRecentActions = 50

	defaultVisibility = 0.7
	minVisibility     = 0.1
	maxVisibility     = 1.0
)

// AppStats aggregates everything the engine knows about one subject.
type AppStats struct {
	OpenCount       int   `json:"openCount"`
	TotalTimeSpent  int64 `json:"totalTimeSpent"`
	LastOpened      int64 `json:"lastOpened"`
	ErrorCount      int   `json:"errorCount"`
	HesitationCount int   `json:"hesitationCount"`
	RejectionCount  int   `json:"rejectionCount"`
}

// Prediction is a guess at the user's next app.
type Prediction struct {
	SubjectID  string  `json:"appId"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// State is the full engine state. Stats are kept in a map with a separate
// insertion order so that ties and persistence are deterministic.
type State struct {
	SkillLevel        SkillLevel
	Stats             map[string]*AppStats
	order             []string
	RecentActions     []UserAction
	Predictions       []Prediction
	Visibility        float64
	Personality       Personality
	SessionStartTime  int64
	TotalInteractions int
	IsFirstSession    bool
	Mood              Mood
}

func defaultState(now int64) *State {
	return &State{
		SkillLevel:       SkillBeginner,
		Stats:            make(map[string]*AppStats),
		RecentActions:    []UserAction{},
		Predictions:      []Prediction{},
		Visibility:       defaultVisibility,
		Personality:      PersonalitySassy,
		SessionStartTime: now,
		IsFirstSession:   true,
		Mood:             MoodExcited,
	}
}

// statsFor returns the stats for a subject, creating them on first use.
func (s *State) statsFor(subjectID string) *AppStats {
	if st, ok := s.Stats[subjectID]; ok {
		return st
	}
	st := &AppStats{}
	s.Stats[subjectID] = st
	s.order = append(s.order, subjectID)
	return st
}

// subjects returns the subject ids in first-seen order.
func (s *State) subjects() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// statsPair is one entry of the persisted stats list, encoded as
// a two-element JSON array: [subjectId, stats].
type statsPair struct {
	SubjectID string
	Stats     AppStats
}

func (p statsPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.SubjectID, p.Stats})
}

func (p *statsPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("stats entry: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.SubjectID); err != nil {
		return fmt.Errorf("stats entry id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Stats); err != nil {
		return fmt.Errorf("stats entry %s: %w", p.SubjectID, err)
	}
	return nil
}

// stateJSON is the persisted form of State.
type stateJSON struct {
	UserLevel         SkillLevel   `json:"userLevel"`
	AppStats          []statsPair  `json:"appStats"`
	RecentActions     []UserAction `json:"recentActions"`
	Predictions       []Prediction `json:"predictions"`
	AIVisibility      *float64     `json:"aiVisibility"`
	Personality       Personality  `json:"personality"`
	SessionStartTime  int64        `json:"sessionStartTime"`
	TotalInteractions int          `json:"totalInteractions"`
	IsFirstSession    bool         `json:"isFirstSession"`
	CurrentMood       Mood         `json:"currentMood"`
}

// encodeState serializes the state for the key-value store.
func encodeState(s *State) (string, error) {
	pairs := make([]statsPair, 0, len(s.order))
	for _, id := range s.order {
		pairs = append(pairs, statsPair{SubjectID: id, Stats: *s.Stats[id]})
	}

	data, err := json.Marshal(stateJSON{
		UserLevel:         s.SkillLevel,
		AppStats:          pairs,
		RecentActions:     s.RecentActions,
		Predictions:       s.Predictions,
		AIVisibility:      &s.Visibility,
		Personality:       s.Personality,
		SessionStartTime:  s.SessionStartTime,
		TotalInteractions: s.TotalInteractions,
		IsFirstSession:    s.IsFirstSession,
		CurrentMood:       s.Mood,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	return string(data), nil
}

// decodeState parses a persisted blob. Out-of-range or unknown values
// are normalized to their defaults rather than rejected.
func decodeState(blob string, now int64) (*State, error) {
	var raw stateJSON
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}

	s := defaultState(now)
	switch raw.UserLevel {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		s.SkillLevel = raw.UserLevel
	}
	switch raw.Personality {
	case PersonalitySassy, PersonalityHelpful, PersonalitySarcastic, PersonalityEncouraging:
		s.Personality = raw.Personality
	}
	switch raw.CurrentMood {
	case MoodExcited, MoodBored, MoodImpressed, MoodConcerned, MoodPlayful:
		s.Mood = raw.CurrentMood
	}

	for _, p := range raw.AppStats {
		st := s.statsFor(p.SubjectID)
		*st = p.Stats
	}

	if raw.RecentActions != nil {
		s.RecentActions = raw.RecentActions
		if len(s.RecentActions) > maxRecentActions {
			s.RecentActions = s.RecentActions[len(s.RecentActions)-maxRecentActions:]
		}
	}
	for _, p := range raw.Predictions {
		if p.Confidence >= 0 && p.Confidence <= 1 {
			s.Predictions = append(s.Predictions, p)
		}
	}

	if raw.AIVisibility != nil {
		s.Visibility = clampVisibility(*raw.AIVisibility)
	}
	if raw.SessionStartTime > 0 {
		s.SessionStartTime = raw.SessionStartTime
	}
	if raw.TotalInteractions > 0 {
		s.TotalInteractions = raw.TotalInteractions
	}
	s.IsFirstSession = raw.IsFirstSession

	return s, nil
}

func clampVisibility(v float64) float64 {
	if v < minVisibility {
		return minVisibility
	}
	if v > maxVisibility {
		return maxVisibility
	}
	return v
}
