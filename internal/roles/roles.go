// Package roles defines the role descriptions that drive the research pipeline.
//
// A Spec is the goal/backstory pair of a single agent. A Set holds one Spec for
// each of the three pipeline roles. Both are plain values: updating a role
// yields a new Set, so a Set captured for an iteration record can never change
// underneath it.
package roles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ID identifies a pipeline role.
type ID string

const (
	Researcher ID = "researcher"
	Analyst    ID = "analyst"
	Writer     ID = "writer"
)

// ErrMissingRole is returned when a role set document lacks one of the three roles.
var ErrMissingRole = errors.New("role set is missing a role")

// ErrUnknownRole is returned for an ID outside the three pipeline roles.
var ErrUnknownRole = errors.New("unknown role")

// IDs returns the role identifiers in pipeline order.
func IDs() []ID {
	return []ID{Researcher, Analyst, Writer}
}

// ParseID converts a string into a role ID.
func ParseID(s string) (ID, error) {
	switch id := ID(strings.ToLower(strings.TrimSpace(s))); id {
	case Researcher, Analyst, Writer:
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Spec is one agent's goal and backstory.
type Spec struct {
	Goal      string `json:"goal" yaml:"goal"`
	Backstory string `json:"backstory" yaml:"backstory"`
}

// IsZero reports whether both fields are empty.
func (s Spec) IsZero() bool {
	return s.Goal == "" && s.Backstory == ""
}

// Set holds the current Spec of every pipeline role.
type Set struct {
	researcher Spec
	analyst    Spec
	writer     Spec
}

// NewSet builds a Set from the three role specs.
func NewSet(researcher, analyst, writer Spec) Set {
	return Set{researcher: researcher, analyst: analyst, writer: writer}
}

// Get returns the Spec for id. Unknown IDs yield the zero Spec.
func (s Set) Get(id ID) Spec {
	switch id {
	case Researcher:
		return s.researcher
	case Analyst:
		return s.analyst
	case Writer:
		return s.writer
	default:
		return Spec{}
	}
}

// With returns a copy of s where the Spec for id is replaced.
// The receiver is left untouched.
func (s Set) With(id ID, spec Spec) Set {
	switch id {
	case Researcher:
		s.researcher = spec
	case Analyst:
		s.analyst = spec
	case Writer:
		s.writer = spec
	}
	return s
}

// Equal reports whether two sets hold identical specs.
func (s Set) Equal(other Set) bool {
	return s == other
}

// IsZero reports whether no role has been populated.
func (s Set) IsZero() bool {
	return s.researcher.IsZero() && s.analyst.IsZero() && s.writer.IsZero()
}

// document is the serialized form shared by JSON and YAML.
type document struct {
	Researcher *Spec `json:"researcher" yaml:"researcher"`
	Analyst    *Spec `json:"analyst" yaml:"analyst"`
	Writer     *Spec `json:"writer" yaml:"writer"`
}

func (s Set) document() document {
	r, a, w := s.researcher, s.analyst, s.writer
	return document{Researcher: &r, Analyst: &a, Writer: &w}
}

func fromDocument(doc document) (Set, error) {
	var missing []string
	if doc.Researcher == nil {
		missing = append(missing, string(Researcher))
	}
	if doc.Analyst == nil {
		missing = append(missing, string(Analyst))
	}
	if doc.Writer == nil {
		missing = append(missing, string(Writer))
	}
	if len(missing) > 0 {
		return Set{}, fmt.Errorf("%w: %s", ErrMissingRole, strings.Join(missing, ", "))
	}
	return NewSet(*doc.Researcher, *doc.Analyst, *doc.Writer), nil
}

// MarshalJSON implements json.Marshaler.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.document()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Set) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	set, err := fromDocument(doc)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Set) MarshalYAML() (interface{}, error) {
	return s.document(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Set) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var doc document
	if err := unmarshal(&doc); err != nil {
		return err
	}
	set, err := fromDocument(doc)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
