package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/effortless-run/effortless/internal/deploy"
)

// Manifest is the declared handler set, produced by the source discovery
// step and consumed here as-is.
type Manifest struct {
	Project  string           `yaml:"project"`
	Stage    string           `yaml:"stage,omitempty"`
	Handlers []deploy.Handler `yaml:"handlers"`
}

// LoadManifest reads and validates a manifest file. Flag values override
// the project and stage recorded in the file.
func LoadManifest(path, project, stage string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if project != "" {
		m.Project = project
	}
	if stage != "" {
		m.Stage = stage
	}

	if m.Project == "" {
		return nil, fmt.Errorf("manifest %s: project is required (file field or --project)", path)
	}
	if m.Stage == "" {
		return nil, fmt.Errorf("manifest %s: stage is required (file field or --stage)", path)
	}
	if len(m.Handlers) == 0 {
		return nil, fmt.Errorf("manifest %s: no handlers declared", path)
	}

	seen := make(map[string]bool, len(m.Handlers))
	for i := range m.Handlers {
		h := &m.Handlers[i]
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		if seen[h.Name] {
			return nil, fmt.Errorf("manifest %s: duplicate handler name %q", path, h.Name)
		}
		seen[h.Name] = true
	}

	if problems := deploy.ValidateNames(m.Project, m.Stage, m.Handlers); len(problems) > 0 {
		return nil, fmt.Errorf("manifest %s: invalid derived names: %v", path, problems)
	}
	return &m, nil
}
