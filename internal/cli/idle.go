package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/retroos-brain/internal/brain"
)

// NewIdleCmd creates the 'idle' command.
//
// It plays the shell's idle timer: once the user has been idle for at
// least brain.HesitationThreshold, a hesitation is recorded against the
// system subject and the helper decision is printed.
func NewIdleCmd(opts *globalOptions) *cobra.Command {
	var idleFor time.Duration

	cmd := &cobra.Command{
		Use:   "idle",
		Short: "Report user inactivity and print whether the assistant should pop up",
		Long: `Report that the user has been idle for --for.

From ` + brain.HesitationThreshold.String() + ` on, a hesitation is recorded against "system", the same
way the shell's idle timer does it. Shorter pauses record nothing. Either
way the command prints whether the assistant should pop up.`,
		Example: `  retroos-brain idle
  retroos-brain idle --for 10s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if idleFor >= brain.HesitationThreshold {
				tracker, stopTracker := sess.startTracker()
				defer stopTracker()

				action := brain.NewAction(brain.KindHesitation, brain.SubjectSystem, time.Now().UnixMilli())
				sess.engine.RecordAction(action)
				tracker.Track(action)
			}

			fmt.Fprintln(cmd.OutOrStdout(), sess.engine.ShouldShowHelper())
			return nil
		},
	}

	cmd.Flags().DurationVar(&idleFor, "for", brain.HesitationThreshold, "How long the user has been idle")
	return cmd
}
