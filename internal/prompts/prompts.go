// Package prompts provides the persona and synthesis instructions sent to the model.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TranscriptPlaceholder marks where the rendered conversation goes in the synthesis prompt.
const TranscriptPlaceholder = "{{transcript}}"

//go:embed prompts.yaml
var defaultYAML []byte

// Set holds the prompts used by the chat service.
type Set struct {
	// System is the persona instruction sent with every conversational turn.
	System string `yaml:"system"`

	// Synthesis is the single-shot SRS instruction. It must contain
	// TranscriptPlaceholder exactly once.
	Synthesis string `yaml:"synthesis"`
}

// Default returns the built-in prompts.
func Default() Set {
	var s Set
	if err := yaml.Unmarshal(defaultYAML, &s); err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml is invalid: %v", err))
	}
	return s
}

// Load returns the built-in prompts overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (Set, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return Set{}, fmt.Errorf("read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Set{}, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	if override.System != "" {
		s.System = override.System
	}
	if override.Synthesis != "" {
		s.Synthesis = override.Synthesis
	}

	if err := s.Validate(); err != nil {
		return Set{}, fmt.Errorf("prompts file %s: %w", path, err)
	}
	return s, nil
}

// Validate ensures both prompts are usable.
func (s Set) Validate() error {
	if strings.TrimSpace(s.System) == "" {
		return fmt.Errorf("system prompt is empty")
	}
	if n := strings.Count(s.Synthesis, TranscriptPlaceholder); n != 1 {
		return fmt.Errorf("synthesis prompt must contain %s exactly once, found %d", TranscriptPlaceholder, n)
	}
	return nil
}

// SynthesisFor embeds a rendered transcript into the synthesis instruction.
func (s Set) SynthesisFor(transcript string) string {
	return strings.Replace(s.Synthesis, TranscriptPlaceholder, transcript, 1)
}
