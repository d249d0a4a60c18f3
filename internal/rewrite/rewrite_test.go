package rewrite

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"goal":"g"}`, `{"goal":"g"}`},
		{"surrounding whitespace", "\n  {\"goal\":\"g\"}  \n", `{"goal":"g"}`},
		{"json tag", "```json\n{\"goal\":\"g\"}\n```", `{"goal":"g"}`},
		{"bare fence", "```\n{\"goal\":\"g\"}\n```", `{"goal":"g"}`},
		{"no closing fence", "```json\n{\"goal\":\"g\"}", `{"goal":"g"}`},
		{"single line", "```json {\"goal\":\"g\"}```", `{"goal":"g"}`},
		{"content on fence line", "```{\"goal\":\"g\"}\n```", `{"goal":"g"}`},
		{"text after closing fence", "```json\n{\"goal\":\"g\"}\n```\nHope this helps", `{"goal":"g"}`},
		{"second block ignored", "```json\n{\"goal\":\"g\"}\n```\n```\nmore\n```", `{"goal":"g"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFence(tt.in); got != tt.want {
				t.Errorf("StripFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	spec, err := Decode("```json\n{\"goal\": \"Find novel links\", \"backstory\": \"A veteran 연구자\"}\n```")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := roles.Spec{Goal: "Find novel links", Backstory: "A veteran 연구자"}
	if spec != want {
		t.Errorf("Decode() = %+v, want %+v", spec, want)
	}
}

func TestDecode_TrailingProse(t *testing.T) {
	got, err := Decode("```json\n{\"goal\": \"g\", \"backstory\": \"b\"}\n```\nHope this helps!")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != (roles.Spec{Goal: "g", Backstory: "b"}) {
		t.Errorf("Decode() = %+v", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"prose", "Here is a better prompt: be thorough."},
		{"missing backstory", `{"goal": "g"}`},
		{"missing goal", `{"backstory": "b"}`},
		{"blank goal", `{"goal": "  ", "backstory": "b"}`},
		{"wrong type", `{"goal": 3, "backstory": "b"}`},
		{"array", `[{"goal": "g", "backstory": "b"}]`},
		{"trailing object", `{"goal": "g", "backstory": "b"} {"goal": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			if !errors.Is(err, ErrMalformedRewrite) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedRewrite", tt.in, err)
			}
		})
	}
}

func TestRewriter_Rewrite(t *testing.T) {
	var gotUser string
	var gotTemp float32
	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		gotUser = user
		gotTemp = temperature
		return "```json\n{\"goal\": \"new goal\", \"backstory\": \"new backstory\"}\n```", nil
	})

	r := New(m, prompt.English(), DefaultTemperature)
	current := roles.Spec{Goal: "old goal", Backstory: "old backstory"}

	got, err := r.Rewrite(context.Background(), current, "Depth: 40/100\nNeeds more depth.", "Research Scientist")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got.Goal != "new goal" || got.Backstory != "new backstory" {
		t.Errorf("Rewrite() = %+v", got)
	}
	for _, want := range []string{"old goal", "old backstory", "Needs more depth.", "Research Scientist"} {
		if !strings.Contains(gotUser, want) {
			t.Errorf("rewrite prompt missing %q", want)
		}
	}
	if gotTemp != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", gotTemp, DefaultTemperature)
	}
}

func TestRewriter_MalformedKeepsCurrent(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		return "I would suggest making the goal more specific.", nil
	})
	r := New(m, nil, DefaultTemperature)
	current := roles.Spec{Goal: "keep me", Backstory: "and me"}

	got, err := r.Rewrite(context.Background(), current, "feedback", "Data Analyst")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != current {
		t.Errorf("Rewrite() = %+v, want unchanged %+v", got, current)
	}
	if !strings.Contains(buf.String(), "failed to parse improved prompt") {
		t.Errorf("expected warning in log output, got %q", buf.String())
	}
}

func TestRewriter_EmptyReplyKeepsCurrent(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		return "", nil
	})
	current := roles.Spec{Goal: "keep me", Backstory: "and me"}

	got, err := New(m, nil, DefaultTemperature).Rewrite(context.Background(), current, "feedback", "Research Scientist")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != current {
		t.Errorf("Rewrite() = %+v, want unchanged %+v", got, current)
	}
}

func TestRewriter_ModelErrorIsReturned(t *testing.T) {
	boom := errors.New("connection reset")
	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		return "", boom
	})
	r := New(m, prompt.Korean(), DefaultTemperature)

	_, err := r.Rewrite(context.Background(), roles.Spec{Goal: "g", Backstory: "b"}, "", "과학 작가")
	if !errors.Is(err, boom) {
		t.Errorf("Rewrite() error = %v, want wrapped %v", err, boom)
	}
}
