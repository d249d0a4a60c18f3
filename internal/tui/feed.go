package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Feed is the scrolling log of a run. It follows new output until the user
// scrolls up, and resumes following once they return to the bottom.
type Feed struct {
	title    string
	viewport viewport.Model
	content  strings.Builder
	follow   bool
	dirty    bool // content changed since the viewport was last synced
	width    int
}

// NewFeed creates an empty feed that follows new output.
func NewFeed(title string) *Feed {
	return &Feed{
		title:    title,
		viewport: viewport.New(80, 10),
		follow:   true,
	}
}

// SetSize sets the outer dimensions of the feed box.
func (f *Feed) SetSize(width, height int) {
	f.width = width
	f.viewport.Width = max(width-4, 10)
	f.viewport.Height = max(height-4, 3) // title line and borders
	f.dirty = true
}

// AppendLine adds a line. The viewport is synced lazily in View.
func (f *Feed) AppendLine(line string) {
	f.content.WriteString(line)
	f.content.WriteString("\n")
	f.dirty = true
}

// AppendBlock adds a block of model output, trimmed and indented.
func (f *Feed) AppendBlock(text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		f.AppendLine("  " + line)
	}
}

// Content returns everything appended so far.
func (f *Feed) Content() string {
	return f.content.String()
}

// Following reports whether the feed tracks new output.
func (f *Feed) Following() bool {
	return f.follow
}

// ScrollUp scrolls up by n lines and stops following.
func (f *Feed) ScrollUp(n int) {
	f.sync()
	f.viewport.LineUp(n)
	f.follow = false
}

// ScrollDown scrolls down by n lines.
func (f *Feed) ScrollDown(n int) {
	f.sync()
	f.viewport.LineDown(n)
	f.follow = f.viewport.AtBottom()
}

// PageUp scrolls up by one page.
func (f *Feed) PageUp() {
	f.sync()
	f.viewport.ViewUp()
	f.follow = false
}

// PageDown scrolls down by one page.
func (f *Feed) PageDown() {
	f.sync()
	f.viewport.ViewDown()
	f.follow = f.viewport.AtBottom()
}

// Follow jumps to the bottom and resumes following.
func (f *Feed) Follow() {
	f.sync()
	f.viewport.GotoBottom()
	f.follow = true
}

func (f *Feed) sync() {
	if !f.dirty {
		return
	}
	f.viewport.SetContent(f.content.String())
	if f.follow {
		f.viewport.GotoBottom()
	}
	f.dirty = false
}

// View renders the feed.
func (f *Feed) View() string {
	f.sync()

	contentWidth := max(f.width-2, 10)
	title := feedTitleStyle.Render(f.title)
	indicator := scrollIndicatorStyle.Render("[scroll]")
	if f.follow {
		indicator = scrollIndicatorStyle.Render("[follow]")
	}
	spacing := max(contentWidth-lipgloss.Width(title)-lipgloss.Width(indicator)-2, 1)

	body := title + strings.Repeat(" ", spacing) + indicator + "\n" + f.viewport.View()
	return feedStyle.Width(contentWidth).Render(body)
}
