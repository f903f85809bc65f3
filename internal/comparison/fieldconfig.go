package comparison

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldConfig is the YAML form of the field table.
//
//	fields:      # optional; replaces the built-in table
//	  - name: total_amount
//	    type: amount
//	    ...
//	thresholds:  # optional; per-field overrides
//	  total_amount: 0.995
type FieldConfig struct {
	Fields     FieldTable         `yaml:"fields"`
	Thresholds map[string]float64 `yaml:"thresholds"`
}

// explicitWeights sees only the weights actually written in the YAML, so an
// omitted weight (defaults to 1) can be told apart from "weight: 0".
type explicitWeights struct {
	Fields []struct {
		Name   string   `yaml:"name"`
		Weight *float64 `yaml:"weight"`
	} `yaml:"fields"`
}

// ParseFieldConfig decodes a YAML field configuration. An empty fields list
// selects DefaultFieldTable. A weight written as zero or below is rejected.
func ParseFieldConfig(data []byte) (*FieldConfig, error) {
	var fc FieldConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: decoding yaml: %v", ErrInvalidFieldTable, err)
	}
	var ew explicitWeights
	if err := yaml.Unmarshal(data, &ew); err != nil {
		return nil, fmt.Errorf("%w: decoding yaml: %v", ErrInvalidFieldTable, err)
	}
	for _, f := range ew.Fields {
		if f.Weight != nil && *f.Weight <= 0 {
			return nil, fmt.Errorf("%w: field %q weight must be positive, got %v", ErrInvalidFieldTable, f.Name, *f.Weight)
		}
	}
	if len(fc.Fields) == 0 {
		fc.Fields = DefaultFieldTable()
	}
	return &fc, nil
}

// LoadFieldConfig reads path, or returns the defaults when path is empty.
func LoadFieldConfig(path string) (*FieldConfig, error) {
	if path == "" {
		return &FieldConfig{Fields: DefaultFieldTable()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field config %s: %w", path, err)
	}
	return ParseFieldConfig(data)
}

// Table returns the configured fields with threshold overrides applied.
func (c *FieldConfig) Table() (FieldTable, error) {
	return c.Fields.WithThresholds(c.Thresholds)
}
