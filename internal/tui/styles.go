package tui

import "github.com/charmbracelet/lipgloss"

// Palette (Monokai Pro).
var (
	colorForeground = lipgloss.Color("#fcfcfa")
	colorYellow     = lipgloss.Color("#ffd866")
	colorOrange     = lipgloss.Color("#fc9867")
	colorRed        = lipgloss.Color("#ff6188")
	colorMagenta    = lipgloss.Color("#ab9df2")
	colorGreen      = lipgloss.Color("#a9dc76")
	colorCyan       = lipgloss.Color("#78dce8")
	colorGray       = lipgloss.Color("#727072")
	colorDimGray    = lipgloss.Color("#5b595c")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true)
}

func boxed(border lipgloss.Border, c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(border).BorderForeground(c).Padding(0, 1)
}

var (
	headerStyle      = boxed(lipgloss.RoundedBorder(), colorDimGray)
	headerLabelStyle = fg(colorGray)
	headerValueStyle = bold(colorForeground)

	feedStyle            = boxed(lipgloss.RoundedBorder(), colorYellow)
	feedTitleStyle       = bold(colorMagenta)
	scrollIndicatorStyle = fg(colorGray).Italic(true)

	summaryWindowStyle = boxed(lipgloss.DoubleBorder(), colorGreen)
	summaryTitleStyle  = bold(colorGreen)

	spinnerStyle = fg(colorOrange)

	helpKeyStyle       = fg(colorYellow)
	helpDescStyle      = fg(colorGray)
	helpSeparatorStyle = fg(colorDimGray)

	iterationMarkerStyle = bold(colorMagenta)
	sectionDividerStyle  = fg(colorDimGray)
	systemMessageStyle   = fg(colorGray).Italic(true)
	scoreUpStyle         = bold(colorGreen)
	scoreDownStyle       = bold(colorRed)
	newBestStyle         = bold(colorYellow)
	errorStyle           = bold(colorRed)
)

// statusStyles maps a lower-cased header status to its style. Unknown
// statuses render with pendingStyle.
var (
	statusStyles = map[string]lipgloss.Style{
		"running":    bold(colorOrange),
		"evaluating": bold(colorMagenta),
		"rewriting":  bold(colorCyan),
		"completed":  bold(colorGreen),
		"failed":     bold(colorRed),
		"canceled":   bold(colorRed),
	}
	pendingStyle = fg(colorGray)
)
