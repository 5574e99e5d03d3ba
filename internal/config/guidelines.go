package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Guidelines steers the review prompt. Preamble sets the reviewer persona and
// Focus lists the aspects the review should concentrate on.
type Guidelines struct {
	Preamble string   `yaml:"preamble"`
	Focus    []string `yaml:"focus"`
}

// DefaultGuidelines returns the embedded review guidelines used when no
// guidelines file is configured.
func DefaultGuidelines() Guidelines {
	return Guidelines{
		Preamble: "You are a senior software engineer conducting a code review. " +
			"Review the code changes below and provide constructive feedback. " +
			"Prioritize the most important issues rather than listing every minor detail.",
		Focus: []string{
			"Self-documenting code with meaningful names",
			"Small, focused functions that follow DRY and SOLID principles",
			"Proper error handling; no silently ignored failures",
			"Named constants instead of magic numbers and strings",
			"Validation of all external input and sanitization of output",
			"Secrets kept out of code; parameterized queries for databases",
			"Authentication and authorization on protected operations",
			"Low cyclomatic complexity",
		},
	}
}

// LoadGuidelines reads a YAML guidelines file. Fields left empty in the file
// fall back to the embedded defaults, so a file may override just the preamble
// or just the focus list.
func LoadGuidelines(path string) (Guidelines, error) {
	defaults := DefaultGuidelines()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Guidelines{}, fmt.Errorf("reading guidelines file: %w", err)
	}

	var g Guidelines
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return Guidelines{}, fmt.Errorf("parsing guidelines file %s: %w", path, err)
	}

	if g.Preamble == "" {
		g.Preamble = defaults.Preamble
	}
	if len(g.Focus) == 0 {
		g.Focus = defaults.Focus
	}
	return g, nil
}
