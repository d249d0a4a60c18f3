// Package tui provides the Bubble Tea progress view for an optimization run.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/optimizer"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

// Model is the Bubble Tea model for the optimization progress view.
type Model struct {
	header  Header
	feed    *Feed
	window  Window
	spinner spinner.Model
	keys    KeyMap

	events <-chan optimizer.Event

	history   []summary.Entry
	running   bool
	completed bool
	canceled  bool
	err       error
	quitting  bool
	startTime time.Time

	initialized bool
	width       int
	height      int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	keys := DefaultKeyMap()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return Model{
		header:    NewHeader(keys.ShortHelp()),
		feed:      NewFeed("Optimization"),
		window:    NewWindow("✓ Optimization complete"),
		spinner:   sp,
		keys:      keys,
		startTime: time.Now(),
	}
}

// NewModelWithEvents creates a new TUI model reading from an optimizer's
// event channel.
func NewModelWithEvents(events <-chan optimizer.Event) Model {
	m := NewModel()
	m.events = events
	return m
}

// EventMsg wraps an optimizer event for Bubble Tea.
type EventMsg struct {
	Event optimizer.Event
}

// EventsClosedMsg signals that the event channel has closed.
type EventsClosedMsg struct{}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return tea.Batch(m.listenForEvents(), m.spinner.Tick)
}

// listenForEvents returns a command that waits for the next optimizer event.
func (m Model) listenForEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg{Event: event}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.window.IsVisible() {
			switch {
			case key.Matches(msg, m.keys.Dismiss):
				m.window.Hide()
			case key.Matches(msg, m.keys.Up):
				m.window.ScrollUp(1)
			case key.Matches(msg, m.keys.Down):
				m.window.ScrollDown(1)
			}
			return m, nil
		}
		m.handleScroll(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.header.Spinner = m.spinner.View()
		return m, cmd

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, m.listenForEvents()

	case EventsClosedMsg:
		m.running = false
		m.header.Spinner = ""
		if !m.completed && !m.canceled && m.err == nil {
			m.header.SetStatus("Stopped")
			m.feed.AppendLine(sectionDividerStyle.Render("─── Run finished ───"))
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleScroll(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.feed.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.feed.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.feed.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.feed.PageDown()
	case key.Matches(msg, m.keys.Bottom):
		m.feed.Follow()
	}
}

// handleEvent applies one optimizer event to the view state.
func (m *Model) handleEvent(event optimizer.Event) {
	if event.MaxIter > 0 {
		m.header.SetIteration(event.Iteration, event.MaxIter)
	}

	switch event.Type {
	case optimizer.EventStarted:
		m.running = true
		m.header.SetStatus("Running")
		m.feed.AppendLine(systemMessageStyle.Render("Starting optimization..."))

	case optimizer.EventIterationStart:
		marker := iterationMarkerStyle.Render(fmt.Sprintf("━━━ Iteration %d/%d ━━━", event.Iteration, event.MaxIter))
		m.feed.AppendLine("\n" + marker)

	case optimizer.EventPipelineStart:
		m.header.SetStatus("Running")
		m.feed.AppendLine(systemMessageStyle.Render("Running research pipeline..."))

	case optimizer.EventPipelineEnd:
		m.header.SetStatus("Evaluating")
		m.feed.AppendLine(sectionDividerStyle.Render("─── Output ───"))
		m.feed.AppendBlock(event.Output)

	case optimizer.EventEvaluated:
		m.history = append(m.history, summary.Entry{Iteration: event.Iteration, Score: event.Score})
		m.feed.AppendLine(formatScore(event, len(m.history) > 1))
		if event.Output != "" {
			m.feed.AppendLine(sectionDividerStyle.Render("─── Feedback ───"))
			m.feed.AppendBlock(event.Output)
		}

	case optimizer.EventRecorded:
		m.feed.AppendLine(systemMessageStyle.Render("Results saved"))

	case optimizer.EventNewBest:
		m.header.SetBest(event.Score)
		m.feed.AppendLine(newBestStyle.Render(fmt.Sprintf("★ %s", event.Message)))

	case optimizer.EventRewriteStart:
		m.header.SetStatus("Rewriting")
		m.feed.AppendLine(systemMessageStyle.Render(event.Message + "..."))

	case optimizer.EventRewriteEnd:
		line := event.Message
		if !event.Changed {
			line += " (unchanged)"
		}
		m.feed.AppendLine(systemMessageStyle.Render(line))

	case optimizer.EventIterationEnd:
		m.header.SetBest(event.BestScore)
		m.feed.AppendLine(systemMessageStyle.Render(event.Message))

	case optimizer.EventCompleted:
		m.running = false
		m.completed = true
		m.header.Spinner = ""
		m.header.SetStatus("Completed")
		m.header.SetBest(event.BestScore)
		m.feed.AppendLine("\n" + statusStyles["completed"].Render("✓ "+event.Message))
		m.window.Show(m.completionSummary())

	case optimizer.EventCanceled:
		m.running = false
		m.canceled = true
		m.header.Spinner = ""
		m.header.SetStatus("Canceled")
		m.feed.AppendLine("\n" + statusStyles["failed"].Render("⚠ "+event.Message))

	case optimizer.EventError:
		m.running = false
		m.err = event.Error
		m.header.Spinner = ""
		m.header.SetStatus("Failed")
		m.feed.AppendLine(errorStyle.Render("✗ ERROR: " + event.Message))
	}
}

// formatScore renders the score line, with the change from the previous
// iteration when there is one.
func formatScore(event optimizer.Event, withDelta bool) string {
	line := headerValueStyle.Render(fmt.Sprintf("Score: %.1f/100", event.Score))
	if !withDelta {
		return line
	}
	delta := fmt.Sprintf(" (%+.1f)", event.Delta)
	switch {
	case event.Delta > 0:
		return line + scoreUpStyle.Render(delta)
	case event.Delta < 0:
		return line + scoreDownStyle.Render(delta)
	default:
		return line + headerLabelStyle.Render(delta)
	}
}

// completionSummary builds the text shown in the completion window.
func (m *Model) completionSummary() string {
	s := summary.Summarize(m.history)

	var b strings.Builder
	fmt.Fprintf(&b, "Completed %d iteration(s) in %s\n\n", s.IterationCount, formatDuration(time.Since(m.startTime)))
	fmt.Fprintf(&b, "Initial score:  %.1f/100\n", s.InitialScore)
	fmt.Fprintf(&b, "Final score:    %.1f/100\n", s.FinalScore)
	fmt.Fprintf(&b, "Best score:     %.1f/100\n", s.BestScore)
	fmt.Fprintf(&b, "Improvement:    %+.1f\n", s.TotalImprovement)
	fmt.Fprintf(&b, "Per iteration:  %+.2f\n", s.AverageImprovement)
	return b.String()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func (m *Model) updateLayout() {
	m.header.SetWidth(m.width)
	m.feed.SetSize(m.width, max(m.height-3, 10)) // header takes 3 lines
	m.window.SetSize(m.width, m.height)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.initialized {
		return "Initializing..."
	}
	if m.window.IsVisible() {
		return m.window.View()
	}

	view := m.header.View() + "\n" + m.feed.View()
	return lipgloss.NewStyle().MaxWidth(m.width).Render(view)
}

// IsCompleted returns whether the run completed every iteration.
func (m Model) IsCompleted() bool {
	return m.completed
}

// Error returns the error reported by the run, if any.
func (m Model) Error() error {
	return m.err
}

// Run shows the progress view until the user quits. The event channel is
// drained for as long as the view is open.
func Run(events <-chan optimizer.Event) error {
	p := tea.NewProgram(NewModelWithEvents(events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
