package roles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a role set from a .yaml, .yml or .json file.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read role set: %w", err)
	}

	var set Set
	if isJSON(path) {
		err = json.Unmarshal(data, &set)
	} else {
		err = yaml.Unmarshal(data, &set)
	}
	if err != nil {
		return Set{}, fmt.Errorf("failed to parse role set %s: %w", path, err)
	}
	return set, nil
}

// Save writes a role set to path, choosing JSON or YAML by extension.
// Parent directories are created as needed.
func Save(path string, set Set) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = MarshalIndent(set)
	} else {
		data, err = yaml.Marshal(set)
	}
	if err != nil {
		return fmt.Errorf("failed to encode role set: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write role set: %w", err)
	}
	return nil
}

// MarshalIndent encodes a set as two-space indented JSON without escaping
// HTML or non-ASCII characters.
func MarshalIndent(set Set) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
