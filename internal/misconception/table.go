// Package misconception holds the curated table of well-known false claims.
//
// A match short-circuits evidence retrieval and adjudication: the claim is
// contradicted with the stored correction as its explanation.
package misconception

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed misconceptions.yaml
var defaultTable []byte

// Entry is one known-false claim pattern with its canonical correction
type Entry struct {
	ID         string `yaml:"id"`
	Pattern    string `yaml:"pattern"`
	Correction string `yaml:"correction"`
	Unless     string `yaml:"unless,omitempty"`

	re     *regexp.Regexp
	unless []*regexp.Regexp
}

// Matches reports whether the text repeats the misconception.
// Text that also matches an unless pattern is treated as a correction.
func (e Entry) Matches(text string) bool {
	if e.re == nil || !e.re.MatchString(text) {
		return false
	}
	for _, u := range e.unless {
		if u.MatchString(text) {
			return false
		}
	}
	return true
}

type document struct {
	Version int     `yaml:"version"`
	Unless  string  `yaml:"unless"`
	Entries []Entry `yaml:"entries"`
}

// Table is an ordered, immutable list of misconception entries
type Table struct {
	version int
	entries []Entry
}

// Default loads the embedded table
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads a table from a YAML file
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read misconception table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and compiles a YAML table
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode misconception table: %w", err)
	}

	var global *regexp.Regexp
	if strings.TrimSpace(doc.Unless) != "" {
		re, err := regexp.Compile("(?i)" + doc.Unless)
		if err != nil {
			return nil, fmt.Errorf("compile table unless pattern: %w", err)
		}
		global = re
	}

	seen := make(map[string]bool, len(doc.Entries))
	entries := make([]Entry, 0, len(doc.Entries))

	for i, e := range doc.Entries {
		e.ID = strings.TrimSpace(e.ID)
		e.Correction = strings.TrimSpace(e.Correction)

		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: missing id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("entry %s: duplicate id", e.ID)
		}
		if e.Correction == "" {
			return nil, fmt.Errorf("entry %s: missing correction", e.ID)
		}

		if strings.TrimSpace(e.Pattern) == "" {
			return nil, fmt.Errorf("entry %s: missing pattern", e.ID)
		}
		re, err := regexp.Compile("(?i)" + e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("entry %s: compile pattern: %w", e.ID, err)
		}
		e.re = re

		if global != nil {
			e.unless = append(e.unless, global)
		}
		if strings.TrimSpace(e.Unless) != "" {
			u, err := regexp.Compile("(?i)" + e.Unless)
			if err != nil {
				return nil, fmt.Errorf("entry %s: compile unless pattern: %w", e.ID, err)
			}
			e.unless = append(e.unless, u)
		}

		seen[e.ID] = true
		entries = append(entries, e)
	}

	return &Table{version: doc.Version, entries: entries}, nil
}

// Version returns the table version
func (t *Table) Version() int {
	return t.version
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in match order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Match tests each entry in order and returns the first that matches
func (t *Table) Match(claim string) (Entry, bool) {
	for _, e := range t.entries {
		if e.Matches(claim) {
			return e, true
		}
	}
	return Entry{}, false
}
