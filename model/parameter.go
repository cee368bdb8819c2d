package model

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownParameterSet = errors.New("unknown parameter set")
	ErrMissingParameter    = errors.New("missing parameter")
)

//go:embed parameters/*.yaml
var builtin embed.FS

// ParameterValues maps parameter names (with units) to values.
type ParameterValues map[string]float64

// Get returns the value of a parameter.
func (p ParameterValues) Get(name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingParameter, name)
	}
	return v, nil
}

// GetOr returns the value of a parameter or def if it is not set.
func (p ParameterValues) GetOr(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Copy returns an independent copy so that entries can be overridden.
func (p ParameterValues) Copy() ParameterValues {
	c := make(ParameterValues, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Update overrides entries of p with those in other.
func (p ParameterValues) Update(other ParameterValues) {
	for k, v := range other {
		p[k] = v
	}
}

// ParameterSets lists the built-in parameter sets.
func ParameterSets() []string {
	entries, _ := builtin.ReadDir("parameters")
	var sets []string
	for _, e := range entries {
		sets = append(sets, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return sets
}

// GetParameterValues returns a built-in parameter set, e.g. "Nallusamy2007".
func GetParameterValues(name string) (ParameterValues, error) {
	for _, set := range ParameterSets() {
		if strings.EqualFold(set, name) {
			data, err := builtin.ReadFile("parameters/" + set + ".yaml")
			if err != nil {
				return nil, err
			}
			return decodeYAML(data)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownParameterSet, name)
}

// LoadParameterValues reads a parameter set from a yaml or json file.
func LoadParameterValues(path string) (ParameterValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var p ParameterValues
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return p, nil
	case ".yaml", ".yml":
		p, err := decodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: unsupported file %s", ErrUnknownParameterSet, path)
}

func decodeYAML(data []byte) (ParameterValues, error) {
	var p ParameterValues
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
