package storage

// ActionRecord is one journaled action.
type ActionRecord struct {
	// SessionID identifies the process session that recorded the action.
	SessionID string `json:"sessionId"`

	// Kind is the action kind's wire name, e.g. "app_open".
	Kind string `json:"type"`

	// SubjectID is the app or pseudo-subject the action concerns.
	SubjectID string `json:"appId"`

	// Timestamp is when the action happened, in milliseconds since the epoch.
	Timestamp int64 `json:"timestamp"`

	// Duration is the time spent in milliseconds, set for app_close only.
	Duration *int64 `json:"duration,omitempty"`

	// WindowID is set for window_drag and window_resize.
	WindowID string `json:"windowId,omitempty"`
}

// HistoryFilter narrows a History query. Zero values match everything.
type HistoryFilter struct {
	// SubjectID restricts results to one subject.
	SubjectID string

	// SessionID restricts results to one session.
	SessionID string

	// Since excludes records with an earlier timestamp (milliseconds).
	Since int64

	// Limit caps the number of records returned, keeping the newest.
	Limit int
}

func (f HistoryFilter) matches(r ActionRecord) bool {
	if f.SubjectID != "" && r.SubjectID != f.SubjectID {
		return false
	}
	if f.SessionID != "" && r.SessionID != f.SessionID {
		return false
	}
	return r.Timestamp >= f.Since
}
