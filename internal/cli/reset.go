package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCmd creates the 'reset' command.
func NewResetCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget everything the engine has learned",
		Long: `Overwrite the stored engine state with an empty value. The next start
behaves like a first session. The action journal is not touched; use
'history clear' for that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "This will reset the engine state. Continue? (y/N): ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}

			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.ensureWritable(); err != nil {
				return fmt.Errorf("failed to reset state: %w", err)
			}
			if err := sess.store.Set(sess.cfg.Storage.StateKey, ""); err != nil {
				return fmt.Errorf("failed to reset state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Engine state reset")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Don't ask for confirmation")
	return cmd
}
