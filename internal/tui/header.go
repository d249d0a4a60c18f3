package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Header shows the iteration counter, run status, best score and key hints.
type Header struct {
	Iteration int
	MaxIter   int
	Status    string
	BestScore float64
	HasBest   bool
	Spinner   string // current spinner frame, empty when idle

	hints []key.Binding
	width int
}

// NewHeader creates a header showing the given key hints.
func NewHeader(hints []key.Binding) Header {
	return Header{
		Status: "Pending",
		hints:  hints,
	}
}

// SetIteration sets the current iteration and max.
func (h *Header) SetIteration(current, max int) {
	h.Iteration = current
	h.MaxIter = max
}

// SetStatus sets the status text.
func (h *Header) SetStatus(status string) {
	h.Status = status
}

// SetBest records the best score so far.
func (h *Header) SetBest(score float64) {
	h.BestScore = score
	h.HasBest = true
}

// SetWidth sets the component width.
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h Header) View() string {
	contentWidth := h.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	iterStr := "---"
	if h.MaxIter > 0 {
		iterStr = fmt.Sprintf("%d/%d", h.Iteration, h.MaxIter)
	}

	bestStr := "---"
	if h.HasBest {
		bestStr = fmt.Sprintf("%.1f", h.BestScore)
	}

	separator := headerLabelStyle.Render("  |  ")
	left := headerLabelStyle.Render("Iteration ") + headerValueStyle.Render(iterStr) +
		separator + headerLabelStyle.Render("Status: ") + h.renderStatus() +
		separator + headerLabelStyle.Render("Best ") + headerValueStyle.Render(bestStr)
	if h.Spinner != "" {
		left = spinnerStyle.Render(h.Spinner) + " " + left
	}

	hints := h.renderKeyHints()
	spacing := contentWidth - lipgloss.Width(left) - lipgloss.Width(hints)
	if spacing < 1 {
		spacing = 1
	}

	return headerStyle.Width(contentWidth).Render(left + strings.Repeat(" ", spacing) + hints)
}

func (h Header) renderStatus() string {
	status := h.Status
	if status == "" {
		status = "Pending"
	}

	if style, ok := statusStyles[strings.ToLower(status)]; ok {
		return style.Render(status)
	}
	return pendingStyle.Render(status)
}

func (h Header) renderKeyHints() string {
	parts := make([]string, 0, len(h.hints))
	for _, b := range h.hints {
		help := b.Help()
		if help.Key == "" {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(help.Key)+helpDescStyle.Render(":"+help.Desc))
	}
	return strings.Join(parts, helpSeparatorStyle.Render("  "))
}
