package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts are the static instruction texts sent with each call.
type Prompts struct {
	Command      string `yaml:"command"`
	Conversation string `yaml:"conversation"`
	Help         string `yaml:"help"`
}

// DefaultPrompts returns the embedded templates.
func DefaultPrompts() Prompts {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		panic(fmt.Sprintf("llm: embedded prompts: %v", err))
	}
	return p
}

// LoadPrompts overlays the YAML file at path onto the defaults. Keys missing
// from the file keep their default text. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts: %w", err)
	}
	var over Prompts
	if err := yaml.Unmarshal(raw, &over); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if strings.TrimSpace(over.Command) != "" {
		p.Command = over.Command
	}
	if strings.TrimSpace(over.Conversation) != "" {
		p.Conversation = over.Conversation
	}
	if strings.TrimSpace(over.Help) != "" {
		p.Help = over.Help
	}
	return p, nil
}
