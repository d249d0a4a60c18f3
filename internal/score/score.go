// Package score extracts the overall quality score from a judge response.
package score

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
)

// FallbackScore is returned when no usable overall line is found.
const FallbackScore = 50.0

var (
	// ErrNoOverallLine means no line carried the overall label.
	ErrNoOverallLine = errors.New("no overall score line found")
	// ErrMalformedScore means the overall line was found but its value did not parse.
	ErrMalformedScore = errors.New("malformed overall score")
)

// Labels configures which line prefixes count as the overall score line.
type Labels struct {
	Overall string
	Aliases []string
}

func (l Labels) matches(prefix string) bool {
	if strings.EqualFold(prefix, l.Overall) {
		return true
	}
	for _, alias := range l.Aliases {
		if strings.EqualFold(prefix, alias) {
			return true
		}
	}
	return false
}

// Result holds the outcome of parsing a judge response.
type Result struct {
	Score  float64 // parsed value, or FallbackScore
	Parsed bool    // false when FallbackScore was used
	Err    error   // why parsing fell back; nil when Parsed
	Raw    string  // original response, always preserved
}

// Parse scans raw line by line and returns the value of the first line whose
// label matches. Scanning stops at that first match even when its value is
// malformed. Parse never fails: missing or malformed lines yield
// FallbackScore and a logged warning. Values are returned as written, without
// clamping to [0,100].
func Parse(raw string, labels Labels) Result {
	result := Result{Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		label, rest, ok := strings.Cut(line, ":")
		if !ok || !labels.matches(cleanLabel(label)) {
			continue
		}

		value, err := parseValue(rest)
		if err != nil {
			result.Score = FallbackScore
			result.Err = fmt.Errorf("%w: %q: %v", ErrMalformedScore, strings.TrimSpace(line), err)
			log.Warn("could not parse overall score, using fallback",
				"line", strings.TrimSpace(line), "fallback", FallbackScore, "error", err)
			return result
		}

		result.Score = value
		result.Parsed = true
		return result
	}

	result.Score = FallbackScore
	result.Err = ErrNoOverallLine
	log.Warn("no overall score line in judge response, using fallback",
		"label", labels.Overall, "fallback", FallbackScore, "response_length", len(raw))
	return result
}

// cleanLabel trims whitespace and markdown emphasis around a line prefix,
// so "**Overall**" and "## Overall" both compare as "Overall".
func cleanLabel(s string) string {
	return strings.Trim(strings.TrimSpace(s), "*#_ \t")
}

// parseValue reads the number between ':' and '/'. A missing "/100"
// suffix is tolerated.
func parseValue(s string) (float64, error) {
	if slash := strings.Index(s, "/"); slash >= 0 {
		s = s[:slash]
	}
	s = strings.Trim(strings.TrimSpace(s), "*_")
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
