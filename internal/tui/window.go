package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Window is a centered modal used for the end-of-run summary.
type Window struct {
	title    string
	viewport viewport.Model
	visible  bool
	width    int
	height   int
}

// NewWindow creates a hidden window with the given title.
func NewWindow(title string) Window {
	return Window{
		title:    title,
		viewport: viewport.New(60, 10),
	}
}

// windowSize returns the window dimensions for a screen, 60% of it within bounds.
func windowSize(screenW, screenH int) (int, int) {
	w := min(max(screenW*60/100, 40), 100)
	h := min(max(screenH*60/100, 10), 30)
	return w, h
}

// SetSize sets the screen size the window is centered in.
func (w *Window) SetSize(width, height int) {
	w.width = width
	w.height = height

	ww, wh := windowSize(width, height)
	frameH, frameV := summaryWindowStyle.GetFrameSize()
	w.viewport.Width = ww - frameH
	w.viewport.Height = wh - frameV - 1 // title line
}

// Show displays the window with the given content.
func (w *Window) Show(content string) {
	w.viewport.SetContent(content)
	w.viewport.GotoTop()
	w.visible = true
}

// Hide hides the window.
func (w *Window) Hide() {
	w.visible = false
}

// IsVisible returns whether the window is visible.
func (w *Window) IsVisible() bool {
	return w.visible
}

// ScrollUp scrolls the content up.
func (w *Window) ScrollUp(n int) {
	w.viewport.LineUp(n)
}

// ScrollDown scrolls the content down.
func (w *Window) ScrollDown(n int) {
	w.viewport.LineDown(n)
}

// View renders the window centered on a screen-sized canvas, or "" when hidden.
func (w Window) View() string {
	if !w.visible {
		return ""
	}

	ww, wh := windowSize(w.width, w.height)
	frameH, _ := summaryWindowStyle.GetFrameSize()
	contentWidth := ww - frameH

	title := summaryTitleStyle.Render(w.title)
	hints := helpKeyStyle.Render("Enter/Esc") + helpDescStyle.Render(":close") +
		helpSeparatorStyle.Render("  ") +
		helpKeyStyle.Render("q") + helpDescStyle.Render(":quit")
	spacing := max(contentWidth-lipgloss.Width(title)-lipgloss.Width(hints), 1)

	body := title + strings.Repeat(" ", spacing) + hints + "\n" + w.viewport.View()
	box := summaryWindowStyle.Width(contentWidth).MaxHeight(wh).Render(body)

	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, box)
}
