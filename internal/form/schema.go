package form

import (
	"errors"
	"fmt"
	"regexp"
)

// Schema is the immutable set of field rules for one form type.
type Schema struct {
	rules map[string]*FieldRule
	order []string
}

// NewSchema builds a Schema from rules in declaration order. It panics on a
// duplicate key, an unknown field type or a pattern that does not compile.
func NewSchema(rules ...FieldRule) *Schema {
	s, err := BuildSchema(rules...)
	if err != nil {
		panic(err)
	}
	return s
}

// BuildSchema is NewSchema returning an error instead of panicking.
func BuildSchema(rules ...FieldRule) (*Schema, error) {
	s := &Schema{
		rules: make(map[string]*FieldRule, len(rules)),
		order: make([]string, 0, len(rules)),
	}
	for i := range rules {
		rule := rules[i]
		if rule.Key == "" {
			return nil, fmt.Errorf("form: rule %d has no key", i)
		}
		if _, dup := s.rules[rule.Key]; dup {
			return nil, fmt.Errorf("form: duplicate field %q", rule.Key)
		}
		if !ValidFieldTypes[rule.Type] {
			return nil, fmt.Errorf("form: field %q has unknown type %q", rule.Key, rule.Type)
		}
		if rule.Label == "" {
			rule.Label = rule.Key
		}
		if rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("form: field %q pattern: %w", rule.Key, err)
			}
			rule.re = re
		}
		if rule.Type == FieldEnum && len(rule.Options) == 0 {
			return nil, fmt.Errorf("form: enum field %q has no options", rule.Key)
		}
		s.rules[rule.Key] = &rule
		s.order = append(s.order, rule.Key)
	}
	for _, key := range s.order {
		dep := s.rules[key].DependsOn
		if dep == nil {
			continue
		}
		if _, ok := s.rules[dep.Field]; !ok {
			return nil, fmt.Errorf("form: field %q depends on unknown field %q", key, dep.Field)
		}
		if !dep.hasSelector() {
			return nil, fmt.Errorf("form: field %q condition on %q sets none of equals, in, not_empty or rule", key, dep.Field)
		}
	}
	return s, nil
}

// Rule returns the rule for key.
func (s *Schema) Rule(key string) (*FieldRule, bool) {
	r, ok := s.rules[key]
	return r, ok
}

// Keys returns all field keys in declaration order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.order) }

// Rules returns the rules in declaration order.
func (s *Schema) Rules() []FieldRule {
	out := make([]FieldRule, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.rules[key])
	}
	return out
}

// Dependents returns the keys whose requiredness is controlled by field.
func (s *Schema) Dependents(field string) []string {
	var out []string
	for _, key := range s.order {
		if dep := s.rules[key].DependsOn; dep != nil && dep.Field == field {
			out = append(out, key)
		}
	}
	return out
}

// FileKeys returns the keys of file-typed fields.
func (s *Schema) FileKeys() []string {
	var out []string
	for _, key := range s.order {
		if s.rules[key].Type == FieldFile {
			out = append(out, key)
		}
	}
	return out
}

// Step is one page of a wizard and the fields it owns.
type Step struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	FieldKeys []string `yaml:"-" json:"field_keys"`
}

// Definition ties a schema to its ordered steps.
type Definition struct {
	Type           string  `json:"type"`
	Category       string  `json:"category"`
	Title          string  `json:"title"`
	Schema         *Schema `json:"-"`
	Steps          []Step  `json:"steps"`
	MaxUploadBytes int64   `json:"max_upload_bytes"`
}

var (
	errNoSteps  = errors.New("form: definition has no steps")
	errNoSchema = errors.New("form: definition has no schema")
)

// Validate checks that the steps partition the schema exactly.
func (d *Definition) Validate() error {
	if d.Type == "" {
		return errors.New("form: definition has no type")
	}
	if d.Schema == nil {
		return errNoSchema
	}
	if len(d.Steps) == 0 {
		return errNoSteps
	}
	owner := make(map[string]string, d.Schema.Len())
	for _, step := range d.Steps {
		if len(step.FieldKeys) == 0 {
			return fmt.Errorf("form: %s step %q owns no fields", d.Type, step.ID)
		}
		for _, key := range step.FieldKeys {
			if _, ok := d.Schema.Rule(key); !ok {
				return fmt.Errorf("form: %s step %q references unknown field %q", d.Type, step.ID, key)
			}
			if prev, dup := owner[key]; dup {
				return fmt.Errorf("form: %s field %q owned by steps %q and %q", d.Type, key, prev, step.ID)
			}
			owner[key] = step.ID
		}
	}
	for _, key := range d.Schema.Keys() {
		if _, ok := owner[key]; !ok {
			return fmt.Errorf("form: %s field %q is not assigned to a step", d.Type, key)
		}
	}
	return nil
}

// StepKeys returns the field keys of step i, or nil when out of range.
func (d *Definition) StepKeys(i int) []string {
	if i < 0 || i >= len(d.Steps) {
		return nil
	}
	return d.Steps[i].FieldKeys
}

// AllKeys returns the union of every step's fields in step order.
func (d *Definition) AllKeys() []string {
	var out []string
	for _, step := range d.Steps {
		out = append(out, step.FieldKeys...)
	}
	return out
}

// StepOf returns the index of the step owning key, or -1.
func (d *Definition) StepOf(key string) int {
	for i, step := range d.Steps {
		for _, k := range step.FieldKeys {
			if k == key {
				return i
			}
		}
	}
	return -1
}
