package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/retroos-brain/internal/brain"
)

// actionFlags are the flags shared by commands that build a UserAction.
type actionFlags struct {
	duration int64
	windowID string
}

func (f *actionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.duration, "duration", "d", 0, "Time spent in the app in ms (app_close)")
	cmd.Flags().StringVarP(&f.windowID, "window", "w", "", "Window id (window_drag, window_resize)")
}

// defaultSubject returns the subject used when an action is given without one.
func defaultSubject(kind brain.ActionKind) (string, bool) {
	switch kind {
	case brain.KindHesitation, brain.KindError, brain.KindFirstInteraction:
		return brain.SubjectSystem, true
	case brain.KindDesktopClick, brain.KindContextMenu, brain.KindRightClick, brain.KindDoubleClick:
		return brain.SubjectDesktop, true
	case brain.KindStartMenuOpen:
		return brain.SubjectStartMenu, true
	default:
		return "", false
	}
}

// buildAction turns "<kind> [appId]" arguments into an action stamped now.
func (f *actionFlags) buildAction(args []string, now time.Time) (brain.UserAction, error) {
	kind, err := brain.ParseKind(args[0])
	if err != nil {
		return brain.UserAction{}, err
	}

	var subject string
	if len(args) > 1 {
		subject = args[1]
	} else if s, ok := defaultSubject(kind); ok {
		subject = s
	} else {
		return brain.UserAction{}, fmt.Errorf("action %s needs an app id", kind)
	}

	action := brain.NewAction(kind, subject, now.UnixMilli())
	if f.duration > 0 {
		action = action.WithDuration(f.duration)
	}
	if f.windowID != "" {
		if kind != brain.KindWindowDrag && kind != brain.KindWindowResize {
			return brain.UserAction{}, fmt.Errorf("--window only applies to window_drag and window_resize")
		}
		action = action.WithWindow(f.windowID)
	}
	return action, nil
}

func kindsHelp() string {
	names := make([]string, 0, len(brain.Kinds()))
	for _, k := range brain.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// NewRecordCmd creates the 'record' command.
func NewRecordCmd(opts *globalOptions) *cobra.Command {
	var flags actionFlags
	var withComment bool

	cmd := &cobra.Command{
		Use:   "record <type> [appId]",
		Short: "Record a user action",
		Long: `Record a user action and persist the updated state.

Action types: ` + kindsHelp() + `

Without an app id, hesitation and error are recorded against "system",
desktop clicks against "desktop" and start_menu_open against "start_menu".
The shell records a hesitation after ` + brain.HesitationThreshold.String() + ` without input.`,
		Example: `  retroos-brain record app_open notepad
  retroos-brain record app_close notepad --duration 42000
  retroos-brain record hesitation
  retroos-brain record window_drag paint --window w1 --comment`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := flags.buildAction(args, time.Now())
			if err != nil {
				return err
			}

			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			tracker, stopTracker := sess.startTracker()
			defer stopTracker()

			sess.engine.RecordAction(action)
			tracker.Track(action)

			out := cmd.OutOrStdout()
			if withComment {
				fmt.Fprintln(out, sess.engine.GenerateComment(action, sess.cfg.Engine.DisplayName))
				return nil
			}
			fmt.Fprintf(out, "Recorded %s for %s\n", action.Kind, action.SubjectID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&withComment, "comment", false, "Print the commentary for the action")

	return cmd
}

// NewCommentCmd creates the 'comment' command.
func NewCommentCmd(opts *globalOptions) *cobra.Command {
	var flags actionFlags
	var name string

	cmd := &cobra.Command{
		Use:   "comment <type> [appId]",
		Short: "Generate commentary for an action without recording it",
		Long: `Pick a line of commentary for an action.

This advances the interaction counter and may change the mood, but the
action itself is not added to the history. Use 'record --comment' to do both.`,
		Example: `  retroos-brain comment app_open paint
  retroos-brain comment first_interaction --name Ada`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := flags.buildAction(args, time.Now())
			if err != nil {
				return err
			}

			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if !cmd.Flags().Changed("name") {
				name = sess.cfg.Engine.DisplayName
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.engine.GenerateComment(action, name))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name for the greeting (default: engine.displayName)")

	return cmd
}

// NewRejectCmd creates the 'reject' command.
func NewRejectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <appId>",
		Short: "Record a dismissed suggestion for an app",
		Long: `Record that the user dismissed a suggestion for an app.

From the third rejection of the same app on, every rejection lowers the
assistant's visibility by 0.2, down to 0.1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.engine.RecordRejection(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Visibility: %.2f\n", sess.engine.DebugInfo().Visibility)
			return nil
		},
	}
}
