package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/retroos-brain/internal/config"
	"github.com/khanglvm/retroos-brain/internal/journal"
	"github.com/khanglvm/retroos-brain/internal/logging"
	"github.com/khanglvm/retroos-brain/internal/storage"
)

// NewHistoryCmd creates the history command group.
func NewHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the action journal",
		Long: `The engine only remembers the last 50 actions. When the journal is
enabled, every recorded action is also appended to a local history
database (journal.path) tagged with the id of the session that recorded it.

Commands:
  export  Write the history as JSON
  clear   Delete all history
  prune   Delete history older than journal.retentionDays`,
	}

	cmd.AddCommand(newHistoryExportCmd(opts))
	cmd.AddCommand(newHistoryClearCmd(opts))
	cmd.AddCommand(newHistoryPruneCmd(opts))

	return cmd
}

// withActionLog opens the journal database for the duration of fn.
func withActionLog(opts *globalOptions, fn func(cfg *config.Config, log *storage.SQLiteStorage) error) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return err
	}
	defer logger.Sync()

	log, err := openActionLog(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer log.Close()

	return fn(cfg, log)
}

// newHistoryExportCmd exports the journal as JSON.
func newHistoryExportCmd(opts *globalOptions) *cobra.Command {
	var outputFile string
	var since time.Duration
	var filter storage.HistoryFilter

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export action history as JSON",
		Example: `  retroos-brain history export
  retroos-brain history export --since 24h --app notepad -o notepad.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since > 0 {
				filter.Since = time.Now().Add(-since).UnixMilli()
			}

			return withActionLog(opts, func(_ *config.Config, log *storage.SQLiteStorage) error {
				var w io.Writer = cmd.OutOrStdout()
				if outputFile != "" {
					f, err := os.Create(outputFile)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", outputFile, err)
					}
					defer f.Close()
					w = f
				}

				n, err := journal.WriteExport(w, log, filter, time.Now())
				if err != nil {
					return err
				}
				if outputFile != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d actions to %s\n", n, outputFile)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only actions newer than this (e.g. 24h)")
	cmd.Flags().StringVar(&filter.SubjectID, "app", "", "Only actions for this app id")
	cmd.Flags().StringVar(&filter.SessionID, "session", "", "Only actions from this session")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Only the most recent N actions (0 = all)")

	return cmd
}

// newHistoryClearCmd deletes all history.
func newHistoryClearCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all action history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "This will delete all action history. Continue? (y/N): ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}

			return withActionLog(opts, func(_ *config.Config, log *storage.SQLiteStorage) error {
				if err := log.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Action history cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Don't ask for confirmation")
	return cmd
}

// newHistoryPruneCmd applies the retention window.
func newHistoryPruneCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete history older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActionLog(opts, func(cfg *config.Config, log *storage.SQLiteStorage) error {
				if cfg.Journal.RetentionDays == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Retention is unlimited, nothing to prune")
					return nil
				}
				n, err := log.Cleanup(cfg.Journal.Retention())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d actions older than %d days\n", n, cfg.Journal.RetentionDays)
				return nil
			})
		},
	}
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	return response == "y" || response == "Y"
}
