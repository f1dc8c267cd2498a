/*
Package main is the entry point for the retroos-brain CLI.

retroos-brain is the behavior engine behind the RetroOS shell. It learns
which apps the user opens, predicts the next one, orders the start menu
and picks the assistant's commentary.

Usage:
  retroos-brain [command]

Available Commands:
  serve       Run the JSON-RPC server (stdio and WebSocket)
  record      Record a user action
  comment     Generate commentary for an action without recording it
  reject      Record a dismissed suggestion for an app
  predict     Show the predicted next apps
  sort        Order app ids the way the start menu shows them
  helper      Report whether the assistant should pop up
  idle        Report user inactivity and print whether the assistant should pop up
  dialog      Show the system dialog due, if any
  debug       Show the engine's current view of the user
  reset       Forget everything the engine has learned
  history     Manage the action journal
  config      Show or initialize the configuration
  version     Show version information

Examples:
  # Serve the shell over stdio and ws://127.0.0.1:8095/ws
  retroos-brain serve

  # Feed an action by hand and see what the assistant says
  retroos-brain record app_open notepad --comment
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/retroos-brain/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
