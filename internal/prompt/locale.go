// Package prompt holds the locale tables and text templates used to talk to
// the judge, rewrite, and pipeline models.
package prompt

import (
	"errors"
	"fmt"
	"text/template"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// ErrUnknownLocale is returned by ByName for an unsupported locale.
var ErrUnknownLocale = errors.New("unknown locale")

// DimensionCount is the number of equally weighted rubric dimensions.
const DimensionCount = 5

// Locale is the label table and template set for one language.
type Locale struct {
	// Name is the short locale code ("en", "ko").
	Name string
	// OverallLabel is the label of the mandatory overall score line.
	OverallLabel string
	// OverallAliases are additional labels accepted when parsing scores.
	OverallAliases []string
	// DimensionLabels name the rubric dimensions in display order.
	DimensionLabels [DimensionCount]string
	// RoleLabels are the human-readable role names handed to the models.
	RoleLabels map[roles.ID]string

	evaluationSystem string
	rewriteSystem    string
	evaluation       *template.Template
	rewrite          *template.Template
	agentSystem      *template.Template
	tasks            map[roles.ID]*template.Template
}

// RoleLabel returns the display label for a role, falling back to its ID.
func (l *Locale) RoleLabel(id roles.ID) string {
	if label, ok := l.RoleLabels[id]; ok {
		return label
	}
	return string(id)
}

// ScoreLabels returns every label accepted on the overall score line.
func (l *Locale) ScoreLabels() []string {
	labels := make([]string, 0, 1+len(l.OverallAliases))
	labels = append(labels, l.OverallLabel)
	return append(labels, l.OverallAliases...)
}

var (
	english = &Locale{
		Name:            "en",
		OverallLabel:    "Overall",
		DimensionLabels: [DimensionCount]string{"Relevance", "Depth", "Clarity", "Rigor", "Comprehensiveness"},
		RoleLabels: map[roles.ID]string{
			roles.Researcher: "Research Scientist",
			roles.Analyst:    "Data Analyst",
			roles.Writer:     "Scientific Writer",
		},
		evaluationSystem: evaluationSystemEN,
		rewriteSystem:    rewriteSystemEN,
		evaluation:       template.Must(template.New("evaluation-en").Parse(evaluationTemplateEN)),
		rewrite:          template.Must(template.New("rewrite-en").Parse(rewriteTemplateEN)),
		agentSystem:      template.Must(template.New("agent-en").Parse(agentSystemTemplateEN)),
		tasks: map[roles.ID]*template.Template{
			roles.Researcher: template.Must(template.New("task-researcher-en").Parse(researcherTaskEN)),
			roles.Analyst:    template.Must(template.New("task-analyst-en").Parse(analystTaskEN)),
			roles.Writer:     template.Must(template.New("task-writer-en").Parse(writerTaskEN)),
		},
	}

	korean = &Locale{
		Name:            "ko",
		OverallLabel:    "전체",
		OverallAliases:  []string{"Overall"},
		DimensionLabels: [DimensionCount]string{"관련성", "분석 깊이", "명료성", "과학적 엄밀성", "포괄성"},
		RoleLabels: map[roles.ID]string{
			roles.Researcher: "연구 과학자",
			roles.Analyst:    "데이터 분석가",
			roles.Writer:     "과학 작가",
		},
		evaluationSystem: evaluationSystemKO,
		rewriteSystem:    rewriteSystemKO,
		evaluation:       template.Must(template.New("evaluation-ko").Parse(evaluationTemplateKO)),
		rewrite:          template.Must(template.New("rewrite-ko").Parse(rewriteTemplateKO)),
		agentSystem:      template.Must(template.New("agent-ko").Parse(agentSystemTemplateKO)),
		tasks: map[roles.ID]*template.Template{
			roles.Researcher: template.Must(template.New("task-researcher-ko").Parse(researcherTaskKO)),
			roles.Analyst:    template.Must(template.New("task-analyst-ko").Parse(analystTaskKO)),
			roles.Writer:     template.Must(template.New("task-writer-ko").Parse(writerTaskKO)),
		},
	}
)

// English returns the English locale.
func English() *Locale { return english }

// Korean returns the Korean locale.
func Korean() *Locale { return korean }

// ByName looks up a locale by its code.
func ByName(name string) (*Locale, error) {
	switch name {
	case "", "en":
		return english, nil
	case "ko":
		return korean, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, name)
	}
}
