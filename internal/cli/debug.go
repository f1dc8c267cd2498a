package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/khanglvm/retroos-brain/internal/brain"
)

var (
	subtext  = lipgloss.Color("#a6adc8")
	lavender = lipgloss.Color("#b4befe")
	green    = lipgloss.Color("#a6e3a1")
	peach    = lipgloss.Color("#fab387")

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lavender).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(peach)
	labelStyle   = lipgloss.NewStyle().Foreground(subtext).Width(14)
	valueStyle   = lipgloss.NewStyle().Foreground(green)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lavender).MarginTop(1)
)

// NewDebugCmd creates the 'debug' command.
func NewDebugCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Show the engine's current view of the user",
		Long: `Show skill level, visibility, mood, predictions and the most used apps.

--json prints the same snapshot the getDebugInfo RPC returns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			info := sess.engine.DebugInfo()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDebugPanel(info, sess.engine.Snapshot()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

// renderDebugPanel lays the snapshot out as a bordered panel.
func renderDebugPanel(info brain.DebugInfo, state brain.State) string {
	rows := []string{
		titleStyle.Render("RetroOS Brain"),
		field("Skill", string(info.SkillLevel)),
		field("Visibility", fmt.Sprintf("%.2f", info.Visibility)),
		field("Mood", string(state.Mood)),
		field("Actions", fmt.Sprintf("%d in window", info.TotalActions)),
		field("Interactions", fmt.Sprintf("%d", state.TotalInteractions)),
	}

	rows = append(rows, sectionStyle.Render("Predictions"))
	if len(info.Predictions) == 0 {
		rows = append(rows, labelStyle.Render("none"))
	}
	for _, p := range info.Predictions {
		rows = append(rows, field(p.SubjectID, fmt.Sprintf("%.2f  %s", p.Confidence, p.Reason)))
	}

	rows = append(rows, sectionStyle.Render("Top apps"))
	if len(info.TopApps) == 0 {
		rows = append(rows, labelStyle.Render("none"))
	}
	for _, app := range info.TopApps {
		parts := []string{fmt.Sprintf("%d opens", app.OpenCount)}
		if app.TotalTimeSpent > 0 {
			parts = append(parts, fmt.Sprintf("%ds used", app.TotalTimeSpent/1000))
		}
		if app.RejectionCount > 0 {
			parts = append(parts, fmt.Sprintf("%d rejected", app.RejectionCount))
		}
		rows = append(rows, field(app.ID, strings.Join(parts, ", ")))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
