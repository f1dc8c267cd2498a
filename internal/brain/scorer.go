package brain

import (
	"fmt"
	"math"
	"sort"
)

const (
	// predictionThreshold is the minimum confidence surfaced by GetPredictions.
	predictionThreshold = 0.6

	// patternConfidence is the fixed confidence of an A→B→A cycle.
	patternConfidence = 0.85
	patternReason     = "Detected repeated workflow pattern"
	patternLookback   = 10

	// recencyWindow is how recently an app must have been opened to earn a bonus (5 min).
	recencyWindow int64 = 300000

	frequencyRecencyBonus = 0.2
	frequencyCap          = 0.9

	// sortRecencyBonus is added to the open count when ranking menu entries.
	sortRecencyBonus = 5

	// skillMinActions is the window size below which the user is always a beginner.
	skillMinActions = 10

	moodLookback = 10
)

// countKind counts actions of one kind.
func countKind(actions []UserAction, kind ActionKind) int {
	n := 0
	for _, a := range actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// rate divides safely, returning 0 for an empty denominator.
func rate(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// deriveSkillLevel classifies the user from the full recent window.
func deriveSkillLevel(actions []UserAction) SkillLevel {
	n := len(actions)
	if n < skillMinActions {
		return SkillBeginner
	}

	errorRate := rate(countKind(actions, KindError), n)
	hesitationRate := rate(countKind(actions, KindHesitation), n)

	switch {
	case errorRate < 0.1 && hesitationRate < 0.15:
		return SkillAdvanced
	case errorRate < 0.2 && hesitationRate < 0.3:
		return SkillIntermediate
	default:
		return SkillBeginner
	}
}

// deriveMood looks at the last ten actions. Rates are always taken over
// ten slots, so a short window dilutes them. Excited is never produced.
func deriveMood(actions []UserAction, totalInteractions int) Mood {
	window := lastN(actions, moodLookback)
	errorRate := rate(countKind(window, KindError), moodLookback)
	hesitationRate := rate(countKind(window, KindHesitation), moodLookback)

	switch {
	case errorRate > 0.3:
		return MoodConcerned
	case hesitationRate > 0.4:
		return MoodBored
	case totalInteractions > 50:
		return MoodImpressed
	default:
		return MoodPlayful
	}
}

func lastN(actions []UserAction, n int) []UserAction {
	if len(actions) <= n {
		return actions
	}
	return actions[len(actions)-n:]
}

// recentOpens returns the subjects of the last n app_open actions in order.
func recentOpens(actions []UserAction, n int) []string {
	var opens []string
	for _, a := range actions {
		if a.Kind == KindAppOpen {
			opens = append(opens, a.SubjectID)
		}
	}
	if len(opens) > n {
		opens = opens[len(opens)-n:]
	}
	return opens
}

// detectPattern finds an A→B→A cycle at the tail and returns B.
func detectPattern(opens []string) (string, bool) {
	if len(opens) < 3 {
		return "", false
	}
	last := opens[len(opens)-1]
	secondLast := opens[len(opens)-2]
	thirdLast := opens[len(opens)-3]

	if last == thirdLast && last != secondLast {
		return secondLast, true
	}
	return "", false
}

// mostFrequent returns the subject with the highest open count. Ties go to
// the subject seen first.
func mostFrequent(s *State) (string, *AppStats, bool) {
	var bestID string
	var best *AppStats
	for _, id := range s.order {
		st := s.Stats[id]
		if best == nil || st.OpenCount > best.OpenCount {
			bestID, best = id, st
		}
	}
	return bestID, best, best != nil
}

func isRecent(lastOpened, now int64) bool {
	return now-lastOpened < recencyWindow
}

// frequencyConfidence scores the most frequent subject.
// Formula: min(0.9, openCount/10*0.5 + recencyBonus)
func frequencyConfidence(st *AppStats, now int64) float64 {
	bonus := 0.0
	if isRecent(st.LastOpened, now) {
		bonus = frequencyRecencyBonus
	}
	return math.Min(frequencyCap, float64(st.OpenCount)/10*0.5+bonus)
}

// generatePredictions recomputes the prediction list from scratch.
// Pattern and frequency signals are concatenated without deduplication.
func generatePredictions(s *State, now int64) []Prediction {
	predictions := []Prediction{}

	if subject, ok := detectPattern(recentOpens(s.RecentActions, patternLookback)); ok {
		predictions = append(predictions, Prediction{
			SubjectID:  subject,
			Confidence: patternConfidence,
			Reason:     patternReason,
		})
	}

	if id, st, ok := mostFrequent(s); ok {
		confidence := frequencyConfidence(st, now)
		if confidence > predictionThreshold {
			predictions = append(predictions, Prediction{
				SubjectID:  id,
				Confidence: confidence,
				Reason:     fmt.Sprintf("Most frequently used (%d times)", st.OpenCount),
			})
		}
	}

	return predictions
}

// sortScore ranks a subject for menu ordering.
func sortScore(st *AppStats, now int64) int {
	score := st.OpenCount
	if isRecent(st.LastOpened, now) {
		score += sortRecencyBonus
	}
	return score
}

// rankSubjects returns a stably sorted copy of ids: known subjects by
// descending score, then unknown subjects in input order.
func rankSubjects(ids []string, stats map[string]*AppStats, now int64) []string {
	out := make([]string, len(ids))
	copy(out, ids)

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := stats[out[i]]
		b, bok := stats[out[j]]
		switch {
		case !aok:
			return false
		case !bok:
			return true
		default:
			return sortScore(a, now) > sortScore(b, now)
		}
	})

	return out
}

// topSubjects returns up to n subjects by descending open count,
// first-seen order breaking ties.
func topSubjects(s *State, n int) []string {
	ids := s.subjects()
	sort.SliceStable(ids, func(i, j int) bool {
		return s.Stats[ids[i]].OpenCount > s.Stats[ids[j]].OpenCount
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
