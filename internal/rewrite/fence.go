package rewrite

import "strings"

const fence = "```"

// StripFence removes a fenced code block wrapper from model output.
//
// The opening fence may carry a language tag ("```json"). The body ends at
// the first closing fence; anything after it is dropped. Text without a
// leading fence is returned trimmed and otherwise unchanged.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}

	body := s[len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(body[:nl]); isLanguageTag(tag) {
			body = body[nl+1:]
		}
	} else {
		// Single line: "```json {...}```"
		body = strings.TrimPrefix(strings.TrimLeft(body, " \t"), "json")
	}

	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// isLanguageTag reports whether the remainder of an opening fence line is an
// info string rather than content.
func isLanguageTag(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}
