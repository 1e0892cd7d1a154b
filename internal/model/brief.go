package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PersonaBrief is the persona definition the audit was run against.
type PersonaBrief struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Role        string   `yaml:"role" json:"role,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Goals       []string `yaml:"goals" json:"goals,omitempty"`
	PainPoints  []string `yaml:"pain_points" json:"pain_points,omitempty"`
}

// LoadPersonaBrief reads a persona brief YAML file.
func LoadPersonaBrief(path string) (*PersonaBrief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read persona brief %s", path)
	}
	var brief PersonaBrief
	if err := yaml.Unmarshal(data, &brief); err != nil {
		return nil, eris.Wrap(err, "model: parse persona brief")
	}
	return &brief, nil
}
