package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// NewPredictCmd creates the 'predict' command.
func NewPredictCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Show the predicted next apps",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			predictions := sess.engine.GetPredictions()
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, predictions)
			}

			if len(predictions) == 0 {
				fmt.Fprintln(out, "No predictions yet.")
				return nil
			}
			for _, p := range predictions {
				fmt.Fprintf(out, "%-20s %.2f  %s\n", p.SubjectID, p.Confidence, p.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// NewSortCmd creates the 'sort' command.
func NewSortCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <appId>...",
		Short: "Order app ids the way the start menu shows them",
		Long: `Order app ids by usage: open count plus a bonus of 5 for apps opened
in the last five minutes. Apps never opened keep their order at the end.`,
		Example: `  retroos-brain sort notepad paint calculator`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			for _, id := range sess.engine.GetSortedApps(args) {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

// NewHelperCmd creates the 'helper' command.
func NewHelperCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "helper",
		Short: "Report whether the assistant should pop up",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			fmt.Fprintln(cmd.OutOrStdout(), sess.engine.ShouldShowHelper())
			return nil
		},
	}
}

// NewDialogCmd creates the 'dialog' command.
func NewDialogCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialog",
		Short: "Show the system dialog due at the current interaction count, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			dialog, ok := sess.engine.ShouldShowSystemDialog()
			if !ok {
				fmt.Fprintln(out, "No dialog due.")
				return nil
			}
			fmt.Fprintf(out, "[%s] %s\n%s\n", dialog.Kind, dialog.Title, dialog.Message)
			return nil
		},
	}
}
