package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gbsl/edsync/internal/application/services"
	coreports "github.com/gbsl/edsync/internal/core/ports"
)

// notice is a user notification raised while the view owns the terminal
type notice struct {
	message  string
	severity coreports.Severity
}

// runOutcomeView runs the forced configure inside a Bubble Tea program.
// Notices raised during the run are shown in the view, not on stdout.
func runOutcomeView(cmd *cobra.Command, container *CLIContainer) error {
	ctx := cmd.Context()
	model := newOutcomeModel(func() reportMsg {
		if container.Notices == nil {
			return reportMsg{report: container.Configure.Run(ctx)}
		}
		var notices []notice
		restore := container.Notices.Capture(func(message string, severity coreports.Severity) {
			notices = append(notices, notice{message: message, severity: severity})
		})
		report := container.Configure.Run(ctx)
		restore()
		return reportMsg{report: report, notices: notices}
	})

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("outcome view failed: %w", err)
	}
	return nil
}

// outcomeModel holds the state for the Bubble Tea outcome view
type outcomeModel struct {
	run      func() reportMsg
	report   *services.Report
	notices  []notice
	selected int
	width    int
	height   int
}

// reportMsg is sent when the configure run finished
type reportMsg struct {
	report  services.Report
	notices []notice
}

func newOutcomeModel(run func() reportMsg) outcomeModel {
	return outcomeModel{run: run}
}

// Init implements the Bubble Tea init method
func (m outcomeModel) Init() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		return run()
	}
}

// Update implements the Bubble Tea update method
func (m outcomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reportMsg:
		report := msg.report
		m.report = &report
		m.notices = msg.notices
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "j":
			if m.report != nil && m.selected < len(m.report.Outcomes)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m outcomeModel) View() string {
	header := titleStyle.Render("edsync configure")

	if m.report == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Applying remote configuration..."),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderBody(), m.renderFooter())
}

func (m outcomeModel) renderBody() string {
	r := m.report
	if r.Skipped {
		return mutedStyle.Render(fmt.Sprintf("Configuration skipped (%s)", r.SkipReason))
	}
	if len(r.Outcomes) == 0 {
		return mutedStyle.Render("Settings already up to date")
	}

	summary := fmt.Sprintf("Updated %d of %d setting(s)", r.Outcomes.UpdatedCount(), len(r.Outcomes))
	rows := []string{summary}
	for i, line := range outcomeLines(*r) {
		style := lipgloss.NewStyle()
		if i == m.selected {
			style = style.Background(lipgloss.Color("240"))
		}
		rows = append(rows, style.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m outcomeModel) renderFooter() string {
	var lines []string
	for _, n := range m.notices {
		style := mutedStyle
		if n.severity == coreports.SeverityError {
			style = failStyle
		}
		lines = append(lines, style.Render(n.message))
	}
	if m.report.ReloadRecommended {
		lines = append(lines, hintStyle.Render(reloadHint))
	}
	lines = append(lines, mutedStyle.Render("Controls: [↑↓] Navigate | [q] Quit"))
	return strings.Join(lines, "\n")
}

var _ tea.Model = outcomeModel{}
