/*
Package brain implements the behavior engine behind the RetroOS shell.

The engine ingests user interaction events, keeps a bounded window of
recent actions and per-subject usage statistics, derives a skill level
and a mood, predicts the next likely application, and picks commentary
for the shell to display. State is written through to a key-value store
after every change.
*/
package brain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionKind identifies what the user did.
type ActionKind string

const (
	KindAppOpen          ActionKind = "app_open"
	KindAppClose         ActionKind = "app_close"
	KindAppFocus         ActionKind = "app_focus"
	KindHesitation       ActionKind = "hesitation"
	KindError            ActionKind = "error"
	KindFirstInteraction ActionKind = "first_interaction"
	KindDesktopClick     ActionKind = "desktop_click"
	KindStartMenuOpen    ActionKind = "start_menu_open"
	KindWindowDrag       ActionKind = "window_drag"
	KindWindowResize     ActionKind = "window_resize"
	KindContextMenu      ActionKind = "context_menu"
	KindDoubleClick      ActionKind = "double_click"
	KindRightClick       ActionKind = "right_click"
)

// allKinds lists every known kind in declaration order.
var allKinds = []ActionKind{
	KindAppOpen, KindAppClose, KindAppFocus, KindHesitation, KindError,
	KindFirstInteraction, KindDesktopClick, KindStartMenuOpen, KindWindowDrag,
	KindWindowResize, KindContextMenu, KindDoubleClick, KindRightClick,
}

// Kinds returns all known action kinds.
func Kinds() []ActionKind {
	out := make([]ActionKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a wire name into an ActionKind.
func ParseKind(s string) (ActionKind, error) {
	k := ActionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown action kind: %q", s)
	}
	return k, nil
}

// Well-known subjects used by the shell for actions that don't concern an app.
const (
	SubjectDesktop   = "desktop"
	SubjectStartMenu = "start_menu"
	SubjectSystem    = "system"
)

// HesitationThreshold is the idle interval after which the shell records
// a hesitation against SubjectSystem.
const HesitationThreshold = 3 * time.Second

// ActionMetadata carries the extra data attached to window actions.
// Only window_drag and window_resize populate it.
type ActionMetadata struct {
	WindowID string `json:"windowId"`
}

// UserAction is a single interaction event. It is never modified after
// it has been recorded.
type UserAction struct {
	Kind      ActionKind      `json:"type"`
	SubjectID string          `json:"appId"`
	Timestamp int64           `json:"timestamp"`
	Duration  *int64          `json:"duration,omitempty"`
	Metadata  *ActionMetadata `json:"metadata,omitempty"`
}

// NewAction creates an action stamped with the given time in milliseconds.
func NewAction(kind ActionKind, subjectID string, timestamp int64) UserAction {
	return UserAction{
		Kind:      kind,
		SubjectID: subjectID,
		Timestamp: timestamp,
	}
}

// WithDuration returns a copy of the action carrying a duration in milliseconds.
func (a UserAction) WithDuration(ms int64) UserAction {
	a.Duration = &ms
	return a
}

// WithWindow returns a copy of the action carrying a window identifier.
// The identifier is dropped for kinds that don't carry metadata.
func (a UserAction) WithWindow(windowID string) UserAction {
	if a.Kind != KindWindowDrag && a.Kind != KindWindowResize {
		return a
	}
	a.Metadata = &ActionMetadata{WindowID: windowID}
	return a
}

// UnmarshalJSON decodes an action and drops metadata on kinds that never carry it.
func (a *UserAction) UnmarshalJSON(data []byte) error {
	type plain UserAction
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Kind != KindWindowDrag && p.Kind != KindWindowResize {
		p.Metadata = nil
	}
	*a = UserAction(p)
	return nil
}
