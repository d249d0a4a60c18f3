package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// ErrEmptyTopic is returned when an agent task has no topic.
var ErrEmptyTopic = errors.New("topic cannot be empty")

// Request is a rendered system/user prompt pair.
type Request struct {
	System string
	User   string
}

type evaluationData struct {
	Dimensions [DimensionCount]string
	Overall    string
	Artifact   string
}

// BuildEvaluation renders the rubric-scoring request for an artifact. An
// empty artifact is still sent; the judge scores it like any other report.
func BuildEvaluation(l *Locale, artifact string) (Request, error) {
	user, err := execute(l.evaluation, evaluationData{
		Dimensions: l.DimensionLabels,
		Overall:    l.OverallLabel,
		Artifact:   artifact,
	})
	if err != nil {
		return Request{}, err
	}
	return Request{System: l.evaluationSystem, User: user}, nil
}

// RewriteContext holds the inputs of a role rewrite request.
type RewriteContext struct {
	RoleLabel string
	Goal      string
	Backstory string
	Feedback  string
}

// BuildRewrite renders the request asking for an improved goal/backstory pair.
func BuildRewrite(l *Locale, ctx RewriteContext) (Request, error) {
	if strings.TrimSpace(ctx.Feedback) == "" {
		ctx.Feedback = "(no feedback provided)"
	}
	user, err := execute(l.rewrite, ctx)
	if err != nil {
		return Request{}, err
	}
	return Request{System: l.rewriteSystem, User: user}, nil
}

// AgentContext holds the inputs of one pipeline step.
type AgentContext struct {
	Role    roles.ID
	Spec    roles.Spec
	Topic   string
	Context string // output of the previous steps, empty for the first role
}

// BuildAgentTask renders the system prompt describing the agent and the
// task it has to carry out.
func BuildAgentTask(l *Locale, ctx AgentContext) (Request, error) {
	if strings.TrimSpace(ctx.Topic) == "" {
		return Request{}, ErrEmptyTopic
	}
	task, ok := l.tasks[ctx.Role]
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", roles.ErrUnknownRole, ctx.Role)
	}

	system, err := execute(l.agentSystem, struct {
		RoleLabel string
		Goal      string
		Backstory string
	}{l.RoleLabel(ctx.Role), ctx.Spec.Goal, ctx.Spec.Backstory})
	if err != nil {
		return Request{}, err
	}

	user, err := execute(task, struct {
		Topic   string
		Context string
	}{ctx.Topic, ctx.Context})
	if err != nil {
		return Request{}, err
	}
	return Request{System: system, User: user}, nil
}

func execute(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
