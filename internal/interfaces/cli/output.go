package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gbsl/edsync/internal/application/services"
	"github.com/gbsl/edsync/internal/core/reconcile"
)

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("214"))
)

const reloadHint = "Reload the editor window to pick up the new settings."

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", outputText, "Output format (text, json, yaml)")
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use text, json or yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls text for the text format
func render(w io.Writer, format string, v interface{}, text func(io.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func formatValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func printReport(w io.Writer, report services.Report) {
	if report.Skipped {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Configuration skipped (%s)", report.SkipReason)))
		return
	}
	if len(report.Outcomes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Settings already up to date"))
	}
	for _, line := range outcomeLines(report) {
		fmt.Fprintln(w, line)
	}
	if report.ReloadRecommended {
		fmt.Fprintln(w, hintStyle.Render(reloadHint))
	}
}

func outcomeLines(report services.Report) []string {
	lines := make([]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		mark := okStyle.Render("✓")
		if !o.Updated {
			mark = failStyle.Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%s %s = %s", mark, o.Name, formatValue(o.Value)))
	}
	return lines
}

func printChanges(w io.Writer, changes []reconcile.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No changes"))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d setting(s) would change:", len(changes))))
	for _, c := range changes {
		if c.Present {
			fmt.Fprintf(w, "  ~ %s: %s -> %s\n", c.Key, formatValue(c.Local), formatValue(c.Remote))
		} else {
			fmt.Fprintf(w, "  + %s: %s\n", c.Key, formatValue(c.Remote))
		}
	}
}
