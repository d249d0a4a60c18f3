package optimizer

import "github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"

// EventType represents the type of an optimizer event.
type EventType string

const (
	// EventStarted is emitted when the run starts.
	EventStarted EventType = "started"
	// EventIterationStart is emitted at the start of each iteration.
	EventIterationStart EventType = "iteration_start"
	// EventPipelineStart is emitted before the pipeline runs.
	EventPipelineStart EventType = "pipeline_start"
	// EventPipelineEnd is emitted with the artifact the pipeline produced.
	EventPipelineEnd EventType = "pipeline_end"
	// EventEvaluated is emitted with the judge's score and feedback.
	EventEvaluated EventType = "evaluated"
	// EventRecorded is emitted once the iteration has been persisted.
	EventRecorded EventType = "recorded"
	// EventNewBest is emitted when an iteration beats the best score so far.
	EventNewBest EventType = "new_best"
	// EventRewriteStart is emitted before a role is rewritten.
	EventRewriteStart EventType = "rewrite_start"
	// EventRewriteEnd is emitted after a role is rewritten.
	EventRewriteEnd EventType = "rewrite_end"
	// EventIterationEnd is emitted at the end of each iteration.
	EventIterationEnd EventType = "iteration_end"
	// EventCompleted is emitted when every iteration has run.
	EventCompleted EventType = "completed"
	// EventCanceled is emitted when the context is canceled.
	EventCanceled EventType = "canceled"
	// EventError is emitted when an iteration fails.
	EventError EventType = "error"
)

// Event represents an event emitted by the optimizer.
type Event struct {
	Type      EventType
	Iteration int
	MaxIter   int
	Message   string
	Score     float64  // EventEvaluated, EventNewBest, EventIterationEnd
	Delta     float64  // EventEvaluated; 0 on the first iteration
	BestScore float64  // EventIterationEnd, EventCompleted
	Role      roles.ID // EventRewriteStart, EventRewriteEnd
	Changed   bool     // EventRewriteEnd: whether the role spec was replaced
	Output    string   // EventPipelineEnd: artifact, EventEvaluated: feedback
	Error     error
}

// NewEvent creates a new optimizer event with the given type and message.
func NewEvent(t EventType, iter, maxIter int, msg string) Event {
	return Event{
		Type:      t,
		Iteration: iter,
		MaxIter:   maxIter,
		Message:   msg,
	}
}

// NewErrorEvent creates a new error event.
func NewErrorEvent(iter, maxIter int, err error) Event {
	return Event{
		Type:      EventError,
		Iteration: iter,
		MaxIter:   maxIter,
		Error:     err,
		Message:   err.Error(),
	}
}

// NewOutputEvent creates an event carrying a block of model output.
func NewOutputEvent(t EventType, iter, maxIter int, msg, output string) Event {
	return Event{
		Type:      t,
		Iteration: iter,
		MaxIter:   maxIter,
		Message:   msg,
		Output:    output,
	}
}
