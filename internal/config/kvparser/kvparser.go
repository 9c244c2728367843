// Package kvparser implements koanf's Parser interface for the pam_hbac-style
// configuration grammar from spec.md §6: UTF-8 text, up to 1024 bytes per
// line, each line either a `#`-prefixed comment, blank, or `KEY = VALUE` with
// whitespace trimmed from both sides. Keys are matched case-insensitively;
// unknown keys are ignored by the caller (the parser itself just lower-cases
// every key it finds). Lines missing a `=` separator fail the load.
package kvparser

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

const maxLineBytes = 1024

// Parser implements github.com/knadh/koanf/v2's Parser interface.
type Parser struct{}

// New returns a Parser for the KEY = VALUE config grammar.
func New() *Parser { return &Parser{} }

// Unmarshal parses the raw config file bytes into a flat string-keyed map.
func (p *Parser) Unmarshal(b []byte) (map[string]any, error) {
	out := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(b))
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) > maxLineBytes {
			return nil, fmt.Errorf("kvparser: line %d exceeds %d bytes", lineNo, maxLineBytes)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		idx := strings.Index(trimmed, "=")
		if idx < 0 {
			return nil, fmt.Errorf("kvparser: line %d missing '=' separator", lineNo)
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
		value := strings.TrimSpace(trimmed[idx+1:])
		if key == "" {
			return nil, fmt.Errorf("kvparser: line %d has empty key", lineNo)
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("kvparser: scan: %w", err)
	}
	return out, nil
}

// Marshal renders a flat map back into the KEY = VALUE grammar, completing
// koanf's Parser interface. Nothing in this module calls it.
func (p *Parser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	for k, v := range m {
		fmt.Fprintf(&buf, "%s = %v\n", k, v)
	}
	return buf.Bytes(), nil
}
