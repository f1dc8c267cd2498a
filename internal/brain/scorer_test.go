package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionsOf(kinds ...ActionKind) []UserAction {
	out := make([]UserAction, len(kinds))
	for i, k := range kinds {
		out[i] = NewAction(k, "x", testNow)
	}
	return out
}

func repeatKind(k ActionKind, n int) []ActionKind {
	out := make([]ActionKind, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestDeriveSkillLevel(t *testing.T) {
	tests := []struct {
		name    string
		actions []UserAction
		want    SkillLevel
	}{
		{"empty window", nil, SkillBeginner},
		{"nine clean actions", actionsOf(repeatKind(KindAppOpen, 9)...), SkillBeginner},
		{"ten clean actions", actionsOf(repeatKind(KindAppOpen, 10)...), SkillAdvanced},
		{
			"one error one hesitation",
			actionsOf(append(repeatKind(KindAppOpen, 8), KindError, KindHesitation)...),
			SkillIntermediate,
		},
		{
			"thirty percent errors",
			actionsOf(append(repeatKind(KindAppOpen, 7), KindError, KindError, KindError)...),
			SkillBeginner,
		},
		{
			"thirty percent hesitations",
			actionsOf(append(repeatKind(KindAppOpen, 7), KindHesitation, KindHesitation, KindHesitation)...),
			SkillBeginner,
		},
		{
			"low rates over a large window",
			actionsOf(append(repeatKind(KindAppOpen, 19), KindError)...),
			SkillAdvanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveSkillLevel(tt.actions))
		})
	}
}

func TestSkillLevel_ThroughEngine(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	for i := 0; i < 10; i++ {
		e.RecordAction(NewAction(KindAppFocus, "paint", testNow))
	}
	assert.Equal(t, SkillAdvanced, e.Snapshot().SkillLevel)

	e = newTestEngine(t, newMapStore())
	for i := 0; i < 7; i++ {
		e.RecordAction(NewAction(KindAppFocus, "paint", testNow))
	}
	for i := 0; i < 3; i++ {
		e.RecordAction(NewAction(KindError, "paint", testNow))
	}
	assert.Equal(t, SkillBeginner, e.Snapshot().SkillLevel)
}

func TestDeriveMood(t *testing.T) {
	tests := []struct {
		name    string
		actions []UserAction
		total   int
		want    Mood
	}{
		{"empty window is playful", nil, 2, MoodPlayful},
		{"four errors", actionsOf(append(repeatKind(KindAppOpen, 6), repeatKind(KindError, 4)...)...), 2, MoodConcerned},
		{"three errors is not enough", actionsOf(append(repeatKind(KindAppOpen, 7), repeatKind(KindError, 3)...)...), 2, MoodPlayful},
		{"five hesitations", actionsOf(append(repeatKind(KindAppOpen, 5), repeatKind(KindHesitation, 5)...)...), 2, MoodBored},
		{"errors win over hesitations", actionsOf(append(repeatKind(KindError, 4), repeatKind(KindHesitation, 6)...)...), 2, MoodConcerned},
		{"veteran user", actionsOf(repeatKind(KindAppOpen, 10)...), 51, MoodImpressed},
		{"short window is diluted", actionsOf(KindError, KindError), 2, MoodPlayful},
		{"only the last ten count", actionsOf(append(repeatKind(KindError, 10), repeatKind(KindAppOpen, 10)...)...), 2, MoodPlayful},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveMood(tt.actions, tt.total)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, MoodExcited, got)
		})
	}
}

func TestPatternDetection(t *testing.T) {
	t.Run("A B A predicts B", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		e.RecordAction(open("A"))
		e.RecordAction(open("B"))
		e.RecordAction(open("A"))

		preds := e.GetPredictions()
		require.Len(t, preds, 1)
		assert.Equal(t, Prediction{SubjectID: "B", Confidence: 0.85, Reason: "Detected repeated workflow pattern"}, preds[0])
	})

	t.Run("A B C predicts nothing", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		e.RecordAction(open("A"))
		e.RecordAction(open("B"))
		e.RecordAction(open("C"))

		for _, p := range e.GetPredictions() {
			assert.NotEqual(t, patternReason, p.Reason)
		}
	})

	t.Run("non-open actions are skipped", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		e.RecordAction(open("A"))
		e.RecordAction(NewAction(KindAppFocus, "C", testNow))
		e.RecordAction(open("B"))
		e.RecordAction(NewAction(KindDesktopClick, SubjectDesktop, testNow))
		e.RecordAction(open("A"))

		preds := e.GetPredictions()
		require.NotEmpty(t, preds)
		assert.Equal(t, "B", preds[0].SubjectID)
	})

	t.Run("A A A is not a cycle", func(t *testing.T) {
		_, ok := detectPattern([]string{"A", "A", "A"})
		assert.False(t, ok)
	})

	t.Run("too short", func(t *testing.T) {
		_, ok := detectPattern([]string{"A", "B"})
		assert.False(t, ok)
	})
}

func TestRecentOpens_LastTen(t *testing.T) {
	var actions []UserAction
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		actions = append(actions, NewAction(KindAppOpen, id, testNow))
		actions = append(actions, NewAction(KindAppFocus, id, testNow))
	}

	assert.Equal(t, []string{"c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}, recentOpens(actions, 10))
}

func TestFrequencyPrediction(t *testing.T) {
	t.Run("recent favorite crosses threshold", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		for i := 0; i < 9; i++ {
			e.RecordAction(open("paint"))
		}

		preds := e.GetPredictions()
		require.Len(t, preds, 1)
		assert.Equal(t, "paint", preds[0].SubjectID)
		assert.InDelta(t, 0.65, preds[0].Confidence, 1e-9)
		assert.Equal(t, "Most frequently used (9 times)", preds[0].Reason)
	})

	t.Run("below threshold emits nothing", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		for i := 0; i < 7; i++ {
			e.RecordAction(open("paint"))
		}
		// 7/10*0.5 + 0.2 = 0.55
		assert.Empty(t, e.Snapshot().Predictions)
	})

	t.Run("confidence is capped", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		for i := 0; i < 40; i++ {
			e.RecordAction(open("paint"))
		}
		preds := e.GetPredictions()
		require.Len(t, preds, 1)
		assert.Equal(t, 0.9, preds[0].Confidence)
	})

	t.Run("ties go to the subject seen first", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		for i := 0; i < 13; i++ {
			e.RecordAction(NewAction(KindAppOpen, "a", 0))
		}
		for i := 0; i < 13; i++ {
			e.RecordAction(NewAction(KindAppOpen, "b", 0))
		}

		preds := e.GetPredictions()
		require.Len(t, preds, 1)
		assert.Equal(t, "a", preds[0].SubjectID)
		assert.InDelta(t, 0.65, preds[0].Confidence, 1e-9)
	})

	t.Run("pattern and frequency are concatenated", func(t *testing.T) {
		e := newTestEngine(t, newMapStore())
		for i := 0; i < 9; i++ {
			e.RecordAction(open("paint"))
		}
		e.RecordAction(open("snake"))
		e.RecordAction(open("paint"))

		preds := e.GetPredictions()
		require.Len(t, preds, 2)
		assert.Equal(t, "snake", preds[0].SubjectID)
		assert.Equal(t, patternReason, preds[0].Reason)
		assert.Equal(t, "paint", preds[1].SubjectID)
	})
}

func TestPredictions_ConfidenceInRange(t *testing.T) {
	e := newTestEngine(t, newMapStore())
	ids := []string{"a", "b", "a", "c", "a", "b", "a", "a", "a", "a", "a", "b", "a"}
	for i := 0; i < 10; i++ {
		for _, id := range ids {
			e.RecordAction(open(id))
			for _, p := range e.Snapshot().Predictions {
				assert.GreaterOrEqual(t, p.Confidence, 0.0)
				assert.LessOrEqual(t, p.Confidence, 1.0)
			}
		}
	}
}

func TestRate_EmptyWindow(t *testing.T) {
	assert.Equal(t, 0.0, rate(0, 0))
	assert.Equal(t, 0.0, rate(3, 0))
	assert.Equal(t, 0.5, rate(1, 2))
}
