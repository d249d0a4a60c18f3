package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/score"
)

func replying(reply string, seen *string, temp *float32) model.Model {
	return model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		if seen != nil {
			*seen = user
		}
		if temp != nil {
			*temp = temperature
		}
		return reply, nil
	})
}

func TestEvaluate(t *testing.T) {
	reply := "Relevance: 80/100\nDepth: 70/100\nClarity: 75/100\nRigor: 60/100\nComprehensiveness: 65/100\nOverall: 70.0/100\n\nFeedback:\nNeeds citations."

	var user string
	var temp float32
	e := New(replying(reply, &user, &temp), prompt.English())

	res, err := e.Evaluate(context.Background(), "A short report on AI in science.")
	require.NoError(t, err)

	assert.Equal(t, 70.0, res.Score)
	assert.True(t, res.Parsed)
	assert.False(t, res.Clamped)
	assert.Equal(t, reply, res.Feedback)
	assert.Contains(t, user, "A short report on AI in science.")
	assert.InDelta(t, DefaultTemperature, temp, 1e-6)
}

func TestEvaluate_FallbackScore(t *testing.T) {
	e := New(replying("I liked it a lot.", nil, nil), nil)

	res, err := e.Evaluate(context.Background(), "artifact")
	require.NoError(t, err)
	assert.Equal(t, score.FallbackScore, res.Score)
	assert.False(t, res.Parsed)
	assert.Equal(t, "I liked it a lot.", res.Feedback)
}

func TestEvaluate_KoreanLabels(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  float64
	}{
		{"korean label", "관련성: 70/100\n전체: 72.5/100", 72.5},
		{"english alias", "Overall: 64/100", 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(replying(tt.reply, nil, nil), prompt.Korean())
			res, err := e.Evaluate(context.Background(), "보고서")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Score)
			assert.True(t, res.Parsed)
		})
	}
}

func TestEvaluate_Clamp(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		clamp       bool
		wantScore   float64
		wantClamped bool
	}{
		{"above range clamped", "Overall: 120/100", true, 100, true},
		{"below range clamped", "Overall: -5/100", true, 0, true},
		{"in range untouched", "Overall: 99.9/100", true, 99.9, false},
		{"clamping disabled", "Overall: 120/100", false, 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(replying(tt.reply, nil, nil), prompt.English(), WithClamp(tt.clamp))
			res, err := e.Evaluate(context.Background(), "artifact")
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantClamped, res.Clamped)
		})
	}
}

func TestEvaluate_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		return "", boom
	})

	_, err := New(m, prompt.English()).Evaluate(context.Background(), "artifact")
	assert.ErrorIs(t, err, boom)
}

func TestEvaluate_EmptyArtifactIsScored(t *testing.T) {
	called := false
	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		called = true
		return "Overall: 12/100\nThe report is empty.", nil
	})

	res, err := New(m, prompt.English()).Evaluate(context.Background(), "  ")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 12.0, res.Score)
	assert.True(t, res.Parsed)
}

func TestEvaluate_EmptyReply(t *testing.T) {
	res, err := New(replying("", nil, nil), nil).Evaluate(context.Background(), "artifact")
	require.NoError(t, err)
	assert.Equal(t, score.FallbackScore, res.Score)
	assert.False(t, res.Parsed)
	assert.Empty(t, res.Feedback)
}

func TestWithTemperature(t *testing.T) {
	var temp float32
	e := New(replying("Overall: 1/100", nil, &temp), nil, WithTemperature(0.1))
	_, err := e.Evaluate(context.Background(), "artifact")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, temp, 1e-6)
}
