/*
Package cli implements the retroos-brain command line.

Every engine operation has a command, so the engine can be driven and
inspected from a terminal as well as over JSON-RPC. Commands load the
config, open the configured state store and build an engine from it.
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/retroos-brain/internal/brain"
	"github.com/khanglvm/retroos-brain/internal/config"
	"github.com/khanglvm/retroos-brain/internal/journal"
	"github.com/khanglvm/retroos-brain/internal/logging"
	"github.com/khanglvm/retroos-brain/internal/storage"
	"github.com/khanglvm/retroos-brain/internal/version"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	configPath string
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "Behavior engine for the RetroOS shell",
		Long: `retroos-brain watches how a user drives the RetroOS shell and reacts.

It keeps a short window of recent actions and per-app usage, predicts the
next app, orders the start menu, decides when the assistant and system
dialogs pop up, and picks a line of commentary for each action.

The shell talks to it over JSON-RPC (stdio or WebSocket) with 'serve'.
Every operation is also available as a command for inspection.`,
		Version:       version.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ~/.retroos-brain/config.yaml)")

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewRecordCmd(opts))
	cmd.AddCommand(NewCommentCmd(opts))
	cmd.AddCommand(NewRejectCmd(opts))
	cmd.AddCommand(NewPredictCmd(opts))
	cmd.AddCommand(NewSortCmd(opts))
	cmd.AddCommand(NewHelperCmd(opts))
	cmd.AddCommand(NewIdleCmd(opts))
	cmd.AddCommand(NewDialogCmd(opts))
	cmd.AddCommand(NewDebugCmd(opts))
	cmd.AddCommand(NewResetCmd(opts))
	cmd.AddCommand(NewHistoryCmd(opts))
	cmd.AddCommand(NewConfigCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// resolveConfigPath returns the --config value or the default path.
func (o *globalOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return config.ExpandPath(o.configPath)
	}
	return config.DefaultPath()
}

// loadConfig resolves the config path and loads it.
func (o *globalOptions) loadConfig() (*config.Config, string, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, path, nil
}

// loadOrCreateConfig is loadConfig, but writes the default file first on
// a first run.
func (o *globalOptions) loadOrCreateConfig() (*config.Config, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// session is an engine opened from the config, together with the
// resources it holds.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  storage.StateStore
	engine *brain.Engine
}

// openSession loads the config and builds an engine on the configured store.
func (o *globalOptions) openSession() (*session, error) {
	cfg, _, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return newSession(cfg)
}

// newSession builds an engine on the store cfg names.
func newSession(cfg *config.Config) (*session, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	path, err := config.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage.Backend, path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	engine := brain.New(store,
		brain.WithStateKey(cfg.Storage.StateKey),
		brain.WithSeed(cfg.Engine.Seed),
		brain.WithLogger(logger),
	)

	return &session{cfg: cfg, logger: logger, store: store, engine: engine}, nil
}

// ensureWritable fails when the state store silently drops writes.
func (s *session) ensureWritable() error {
	if db, ok := s.store.(*storage.SQLiteStorage); ok && !db.Enabled() {
		return fmt.Errorf("state store %s is unavailable; see the warning above", db.Path())
	}
	return nil
}

// Close releases the store and flushes the logger.
func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.store.Close()
}

// openJournal opens the action history database. A disabled journal or
// one that fails to initialize yields nil, which the tracker treats as off.
func (s *session) openJournal() *storage.SQLiteStorage {
	if !s.cfg.Journal.Enabled {
		return nil
	}
	log, err := openActionLog(s.cfg, s.logger)
	if err != nil {
		s.logger.Warn("action journal unavailable", zap.Error(err))
		return nil
	}
	return log
}

// openActionLog opens the journal database regardless of the enabled flag.
func openActionLog(cfg *config.Config, logger *zap.Logger) (*storage.SQLiteStorage, error) {
	path, err := config.ExpandPath(cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	log := storage.NewSQLite(path, logger)
	if err := log.Init(); err != nil {
		return nil, err
	}
	return log, nil
}

// startTracker starts a journal tracker. The returned stop function
// flushes pending actions and closes the database.
func (s *session) startTracker() (*journal.Tracker, func()) {
	log := s.openJournal()
	if log == nil {
		t := journal.NewTracker(nil, s.logger)
		return t, t.Stop
	}

	t := journal.NewTracker(log, s.logger)
	return t, func() {
		t.Stop()
		if err := log.Close(); err != nil {
			s.logger.Warn("failed to close action journal", zap.Error(err))
		}
	}
}
