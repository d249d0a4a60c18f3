package score

import (
	"errors"
	"testing"
)

var english = Labels{Overall: "Overall"}
var korean = Labels{Overall: "전체", Aliases: []string{"Overall"}}

func TestParse_WellFormed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"integer", "Overall: 80/100", 80},
		{"decimal", "Overall: 67.5/100", 67.5},
		{"spaces", "  Overall :  72.3 / 100  ", 72.3},
		{"no slash", "Overall: 91.25", 91.25},
		{"markdown bold", "**Overall**: 84.8/100", 84.8},
		{"lowercase label", "overall: 12/100", 12},
		{"full rubric", "Relevance: 70/100\nDepth: 60/100\nClarity: 75/100\nRigor: 55/100\nComprehensiveness: 65/100\nOverall: 65.0/100\n\nFeedback:\nNeeds citations.", 65.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input, english)
			if !got.Parsed {
				t.Fatalf("Parsed = false, err = %v", got.Err)
			}
			if got.Score != tt.want {
				t.Errorf("Score = %v, want %v", got.Score, tt.want)
			}
			if got.Raw != tt.input {
				t.Error("Raw should preserve the input")
			}
		})
	}
}

func TestParse_FirstMatchWins(t *testing.T) {
	input := "Overall: 40/100\nSome text\nOverall: 90/100"
	if got := Parse(input, english); got.Score != 40 {
		t.Errorf("Score = %v, want 40 (first match)", got.Score)
	}
}

func TestParse_FirstMatchMalformedStopsScanning(t *testing.T) {
	input := "Overall: N/A\nOverall: 90/100"
	got := Parse(input, english)
	if got.Parsed || got.Score != FallbackScore {
		t.Errorf("got %+v, want fallback after malformed first match", got)
	}
	if !errors.Is(got.Err, ErrMalformedScore) {
		t.Errorf("Err = %v, want ErrMalformedScore", got.Err)
	}
}

func TestParse_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrNoOverallLine},
		{"no overall line", "Relevance: 70/100\nDepth: 60/100", ErrNoOverallLine},
		{"label inside sentence", "The Overall score is 80/100", ErrNoOverallLine},
		{"non numeric", "Overall: excellent/100", ErrMalformedScore},
		{"empty value", "Overall: /100", ErrMalformedScore},
		{"placeholder", "Overall: [score]/100", ErrMalformedScore},
		{"nan", "Overall: NaN/100", ErrMalformedScore},
		{"infinity", "Overall: +Inf/100", ErrMalformedScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input, english)
			if got.Score != 50.0 {
				t.Errorf("Score = %v, want 50.0", got.Score)
			}
			if got.Parsed {
				t.Error("Parsed should be false")
			}
			if !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", got.Err, tt.wantErr)
			}
			if got.Raw != tt.input {
				t.Error("Raw should be preserved on fallback")
			}
		})
	}
}

func TestParse_OutOfRangeNotClamped(t *testing.T) {
	if got := Parse("Overall: 120/100", english); got.Score != 120 {
		t.Errorf("Score = %v, want 120 (no clamping)", got.Score)
	}
	if got := Parse("Overall: -5/100", english); got.Score != -5 {
		t.Errorf("Score = %v, want -5 (no clamping)", got.Score)
	}
}

func TestParse_LocalizedLabels(t *testing.T) {
	if got := Parse("관련성: 70/100\n전체: 72.5/100", korean); got.Score != 72.5 {
		t.Errorf("Korean label: Score = %v, want 72.5", got.Score)
	}
	if got := Parse("Overall: 61/100", korean); got.Score != 61 {
		t.Errorf("alias label: Score = %v, want 61", got.Score)
	}
	if got := Parse("전체: 72.5/100", english); got.Parsed {
		t.Error("English labels should not accept the Korean label")
	}
}
