package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var embeddedPrompts []byte

// Catalog maps every Stage to its system prompt. It is read-only once built
// and safe for concurrent use.
type Catalog struct {
	prompts [stageCount]string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	c, err := Parse(embeddedPrompts)
	if err != nil {
		return nil, fmt.Errorf("embedded prompts: %w", err)
	}
	return c, nil
}

// MustLoad is Load for package initialization and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads a YAML mapping of stage name to prompt. Every stage must be
// present with a non-empty prompt and no other keys are allowed.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal prompt catalog: %w", err)
	}

	c := &Catalog{}
	var errs []error
	for name, prompt := range raw {
		stage, err := ParseStage(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.prompts[stage] = strings.TrimSpace(prompt)
	}
	for _, stage := range Stages() {
		if c.prompts[stage] == "" {
			errs = append(errs, fmt.Errorf("missing prompt for stage %q", stage))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Prompt returns the system prompt of s, empty for an invalid Stage.
func (c *Catalog) Prompt(s Stage) string {
	if !s.Valid() {
		return ""
	}
	return c.prompts[s]
}
