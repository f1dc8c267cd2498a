package brain

import "go.uber.org/zap"

// frequentThreshold is the open count above which an app counts as a favorite.
const frequentThreshold = 10

// GenerateComment picks a line of commentary for an action. It advances
// the interaction counter and may update the mood, but does not record
// the action; callers do that separately with RecordAction.
func (e *Engine) GenerateComment(action UserAction, displayName string) string {
	s := e.state
	s.TotalInteractions++
	defer e.save()

	vars := phraseVars{name: displayName, app: action.SubjectID}

	if s.IsFirstSession && s.TotalInteractions == 1 {
		s.IsFirstSession = false
		e.logger.Debug("first contact", zap.String("kind", string(action.Kind)))
		return e.pick(e.catalog.FirstContact, vars)
	}

	s.Mood = deriveMood(s.RecentActions, s.TotalInteractions)

	c := e.catalog
	switch action.Kind {
	case KindAppOpen:
		return e.appOpenComment(action.SubjectID, vars)
	case KindDesktopClick:
		return e.pick(c.DesktopClick, vars)
	case KindStartMenuOpen:
		if predictions := e.GetPredictions(); len(predictions) > 0 {
			vars.prediction = predictions[0].SubjectID
			return vars.render(c.StartMenuPrediction)
		}
		return e.pick(c.StartMenu, vars)
	case KindWindowDrag:
		return e.pick(c.WindowDrag, vars)
	case KindWindowResize:
		return e.pick(c.WindowResize, vars)
	case KindContextMenu:
		return e.pick(c.ContextMenu, vars)
	case KindDoubleClick:
		return e.pick(c.DoubleClick, vars)
	case KindRightClick:
		return e.pick(c.RightClick, vars)
	case KindHesitation:
		return e.pick(c.Hesitation, vars)
	default:
		return e.pick(c.Generic, vars)
	}
}

// appOpenComment chooses between first-time, frequent and mood phrasing
// depending on how often the app has been opened.
func (e *Engine) appOpenComment(subjectID string, vars phraseVars) string {
	c := e.catalog
	openCount := 0
	if st, ok := e.state.Stats[subjectID]; ok {
		openCount = st.OpenCount
	}
	vars.count = openCount

	switch {
	case openCount == 0:
		if pool, ok := c.FirstTimeApp[subjectID]; ok && len(pool) > 0 {
			return e.pick(pool, vars)
		}
		return e.pick(c.FirstTimeFallback, vars)
	case openCount > frequentThreshold:
		if pool, ok := c.FrequentGame[subjectID]; ok && len(pool) > 0 {
			return e.pick(pool, vars)
		}
		return e.pick(c.FrequentApp, vars)
	default:
		return e.pick(c.Regular[e.state.Mood], vars)
	}
}

// pick chooses uniformly from a pool and fills placeholders.
func (e *Engine) pick(pool []string, vars phraseVars) string {
	if len(pool) == 0 {
		return ""
	}
	return vars.render(pool[e.rnd.Intn(len(pool))])
}
