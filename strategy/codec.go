package strategy

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ruleConfigWire mirrors RuleConfig with optional weight/enabled so that
// absent fields take their documented defaults instead of Go zero values.
type ruleConfigWire struct {
	RuleType   string         `json:"rule_type" yaml:"rule_type"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Weight     *float64       `json:"weight,omitempty" yaml:"weight,omitempty"`
	Enabled    *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Conditions *Conditions    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

func (rc *RuleConfig) fromWire(w ruleConfigWire) {
	rc.RuleType = w.RuleType
	rc.Parameters = w.Parameters
	rc.Conditions = w.Conditions
	rc.Weight = 1.0
	if w.Weight != nil {
		rc.Weight = *w.Weight
	}
	rc.Enabled = true
	if w.Enabled != nil {
		rc.Enabled = *w.Enabled
	}
}

// UnmarshalJSON applies the weight=1.0 and enabled=true defaults for
// absent fields.
func (rc *RuleConfig) UnmarshalJSON(data []byte) error {
	var w ruleConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rc.fromWire(w)
	return nil
}

// UnmarshalYAML applies the weight=1.0 and enabled=true defaults for
// absent fields.
func (rc *RuleConfig) UnmarshalYAML(value *yaml.Node) error {
	var w ruleConfigWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	rc.fromWire(w)
	return nil
}

// MarshalJSON encodes the definition.
func (d *Definition) MarshalJSON() ([]byte, error) {
	type Alias Definition
	return json.Marshal((*Alias)(d))
}

// UnmarshalJSON decodes the definition.
func (d *Definition) UnmarshalJSON(data []byte) error {
	type Alias Definition
	return json.Unmarshal(data, (*Alias)(d))
}

// ParseJSON decodes a definition from JSON.
func ParseJSON(data []byte) (*Definition, error) {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing strategy definition: %w", err)
	}
	return &d, nil
}

// ParseYAML decodes a definition from YAML.
func ParseYAML(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing strategy definition: %w", err)
	}
	return &d, nil
}

// EncodeJSON encodes a definition as indented JSON.
func EncodeJSON(d *Definition) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding strategy definition: %w", err)
	}
	return data, nil
}

// EncodeYAML encodes a definition as YAML.
func EncodeYAML(d *Definition) ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding strategy definition: %w", err)
	}
	return data, nil
}
