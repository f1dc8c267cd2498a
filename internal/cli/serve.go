package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/retroos-brain/internal/rpc"
)

// NewServeCmd creates the 'serve' command for running the JSON-RPC server.
//
// Both transports share one engine:
// - stdio: one JSON request per line on stdin, one response per line on stdout
// - WebSocket: one request per text frame on /ws
func NewServeCmd(opts *globalOptions) *cobra.Command {
	var addr string
	var noStdio bool
	var noWS bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON-RPC server (stdio and WebSocket)",
		Long: `Start the retroos-brain server.

Requests are JSON-RPC 2.0. They are read line by line from stdin and as
text frames from the WebSocket endpoint at ws://<addr>/ws. Logs go to
stderr so stdout carries only responses.

Methods: recordAction, recordRejection, generateComment, shouldShowHelper,
shouldShowSystemDialog, getPredictions, getSortedApps, getDebugInfo,
initialize, ping.`,
		Example: `  # stdio and WebSocket on the configured address
  retroos-brain serve

  # WebSocket only, on another port
  retroos-brain serve --no-stdio --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr, noStdio, noWS)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "WebSocket listen address (default: server.addr from config)")
	cmd.Flags().BoolVar(&noStdio, "no-stdio", false, "Don't serve on stdin/stdout")
	cmd.Flags().BoolVar(&noWS, "no-ws", false, "Don't start the WebSocket listener")

	return cmd
}

// runServe runs the enabled transports until stdin closes, a transport
// fails, or SIGINT/SIGTERM arrives.
func runServe(cmd *cobra.Command, opts *globalOptions, addr string, noStdio, noWS bool) error {
	if noStdio && noWS {
		return fmt.Errorf("nothing to serve: both stdio and WebSocket are disabled")
	}

	// A first run writes the default config.
	cfg, err := opts.loadOrCreateConfig()
	if err != nil {
		return err
	}
	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	tracker, stopTracker := sess.startTracker()
	defer stopTracker()

	server := rpc.NewServer(sess.engine,
		rpc.WithJournal(tracker),
		rpc.WithDisplayName(sess.cfg.Engine.DisplayName),
		rpc.WithLogger(sess.logger),
	)

	if addr == "" {
		addr = sess.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if !noStdio {
		g.Go(func() error {
			// The client closing stdin ends the whole server.
			defer cancel()
			err := server.Serve(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if !noWS {
		g.Go(func() error {
			return server.ListenAndServe(gctx, addr)
		})
	}

	sess.logger.Info("server started",
		zap.Bool("stdio", !noStdio),
		zap.Bool("websocket", !noWS),
		zap.String("session", tracker.SessionID()),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	sess.logger.Info("shutdown complete", zap.Int("journal_dropped", tracker.Dropped()))
	return nil
}
