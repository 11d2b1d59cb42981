// ABOUTME: Reads calculator input files for CLI commands
// ABOUTME: Accepts YAML or JSON and decodes strictly into API input types

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// readInput loads path ("-" for stdin) into v
func readInput(path string, stdin io.Reader, v any) error {
	var data []byte
	var err error

	switch path {
	case "":
		return errors.New("an input file is required (-f FILE, or -f - for stdin)")
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	return decodeInput(data, v)
}

// decodeInput parses YAML (a superset of JSON) and decodes it through the
// JSON field names, rejecting unknown fields.
func decodeInput(data []byte, v any) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if doc == nil {
		return errors.New("input is empty")
	}
	if _, ok := doc.(map[string]interface{}); !ok {
		return errors.New("input must be a mapping of field names to values")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}
