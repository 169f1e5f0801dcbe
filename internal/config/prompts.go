package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt kinds every catalog must define.
var requiredPromptKinds = []string{"soil", "disease", "crops", "yield"}

// PromptCatalog is the parsed prompt YAML.
type PromptCatalog struct {
	Version int                   `yaml:"version"`
	Prompts map[string]PromptSpec `yaml:"prompts"`

	templates map[string]*template.Template
}

// PromptSpec is one prompt entry.
type PromptSpec struct {
	Template string `yaml:"template"`
}

// LoadPromptCatalog parses the catalog at path, or the embedded default when
// path is empty. Every template is compiled up front so a broken override
// fails at startup instead of on the first request.
func LoadPromptCatalog(path string) (*PromptCatalog, error) {
	data := defaultPromptsYAML
	if path != "" {
		// #nosec G304 -- path comes from operator configuration
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt catalog: %w", err)
		}
		data = b
	}
	return ParsePromptCatalog(data)
}

// ParsePromptCatalog parses and compiles a catalog from YAML bytes.
func ParsePromptCatalog(data []byte) (*PromptCatalog, error) {
	var catalog PromptCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	catalog.templates = make(map[string]*template.Template, len(catalog.Prompts))
	for _, kind := range requiredPromptKinds {
		spec, ok := catalog.Prompts[kind]
		if !ok || strings.TrimSpace(spec.Template) == "" {
			return nil, fmt.Errorf("prompt %q is required", kind)
		}
	}
	for kind, spec := range catalog.Prompts {
		tmpl, err := template.New(kind).Option("missingkey=error").Parse(spec.Template)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", kind, err)
		}
		catalog.templates[kind] = tmpl
	}
	return &catalog, nil
}

// Render executes the prompt for kind with data.
func (c *PromptCatalog) Render(kind string, data any) (string, error) {
	tmpl, ok := c.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", kind)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", kind, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
