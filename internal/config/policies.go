package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyRule grants a role access to a path pattern for the methods matched by Method
type PolicyRule struct {
	Role   string `yaml:"role"`
	Path   string `yaml:"path"`
	Method string `yaml:"method"`
}

// Subject returns the casbin subject for the rule's role
func (r PolicyRule) Subject() string {
	return "role_" + r.Role
}

// LoadPolicies reads the seed policies file at path
func LoadPolicies(path string) ([]PolicyRule, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read policies file: %w", err)
	}

	var doc struct {
		Policies []PolicyRule `yaml:"policies"`
	}
	if err := yaml.Unmarshal(bytes, &doc); err != nil {
		return nil, fmt.Errorf("could not parse policies yaml: %w", err)
	}

	for i, p := range doc.Policies {
		if p.Role == "" || p.Path == "" || p.Method == "" {
			return nil, fmt.Errorf("policy %d: role, path and method are required", i)
		}
	}
	return doc.Policies, nil
}
