package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorForeground = lipgloss.Color("#fcfcfa")
	colorGreen      = lipgloss.Color("#a9dc76")
	colorRed        = lipgloss.Color("#ff6188")
	colorMagenta    = lipgloss.Color("#ab9df2")
	colorGray       = lipgloss.Color("#727072")
	colorDimGray    = lipgloss.Color("#5b595c")
)

var (
	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDimGray).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(24)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorForeground).
			Bold(true)

	gainStyle = lipgloss.NewStyle().Foreground(colorGreen)
	lossStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// Render writes the end-of-run table to w.
func Render(w io.Writer, s Summary) error {
	rows := []struct {
		label string
		value string
	}{
		{"Iterations", valueStyle.Render(fmt.Sprintf("%d", s.IterationCount))},
		{"Initial score", valueStyle.Render(fmt.Sprintf("%.1f/100", s.InitialScore))},
		{"Final score", valueStyle.Render(fmt.Sprintf("%.1f/100", s.FinalScore))},
		{"Best score", valueStyle.Render(fmt.Sprintf("%.1f/100", s.BestScore))},
		{"Total improvement", signed(s.TotalImprovement, "%+.1f")},
		{"Average per iteration", signed(s.AverageImprovement, "%+.2f")},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Optimization summary"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(r.value)
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(b.String()))
	return err
}

func signed(v float64, format string) string {
	text := fmt.Sprintf(format, v)
	switch {
	case v > 0:
		return gainStyle.Render(text)
	case v < 0:
		return lossStyle.Render(text)
	default:
		return valueStyle.Render(text)
	}
}
