package form

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FieldType identifies how a field value is checked once present.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldEmail   FieldType = "email"
	FieldNumber  FieldType = "number"
	FieldPhone   FieldType = "phone"
	FieldDate    FieldType = "date"
	FieldEnum    FieldType = "enum"
	FieldFile    FieldType = "file"
	FieldBoolean FieldType = "boolean"
)

// ValidFieldTypes lists the field types a schema may declare.
var ValidFieldTypes = map[FieldType]bool{
	FieldText:    true,
	FieldEmail:   true,
	FieldNumber:  true,
	FieldPhone:   true,
	FieldDate:    true,
	FieldEnum:    true,
	FieldFile:    true,
	FieldBoolean: true,
}

// FieldRule is the declarative validation rule for a single field.
type FieldRule struct {
	Key       string    `yaml:"key" json:"key"`
	Label     string    `yaml:"label" json:"label"`
	Type      FieldType `yaml:"type" json:"type"`
	Required  bool      `yaml:"required" json:"required"`
	MinLength int       `yaml:"min_length" json:"min_length,omitempty"`
	MaxLength int       `yaml:"max_length" json:"max_length,omitempty"`
	MaxDigits int       `yaml:"max_digits" json:"max_digits,omitempty"`
	Min       *float64  `yaml:"min" json:"min,omitempty"`
	Max       *float64  `yaml:"max" json:"max,omitempty"`
	Pattern   string    `yaml:"pattern" json:"pattern,omitempty"`
	Options   []string  `yaml:"options" json:"options,omitempty"`
	Multiple  bool      `yaml:"multiple" json:"multiple,omitempty"`
	NotFuture bool      `yaml:"not_future" json:"not_future,omitempty"`

	DependsOn *Condition `yaml:"depends_on" json:"depends_on,omitempty"`

	// RequiredFunc overrides Required when set and no DependsOn exists.
	RequiredFunc func(Values) bool `yaml:"-" json:"-"`

	re *regexp.Regexp
}

// Condition makes a field required (or not) based on another field's value.
// Exactly one of Predicate, In, NotEmpty or Equals is consulted, in that order.
// Rule names a predicate that a catalog resolves into Predicate at load time.
type Condition struct {
	Field        string   `yaml:"field" json:"field"`
	Equals       any      `yaml:"equals" json:"equals,omitempty"`
	In           []string `yaml:"in" json:"in,omitempty"`
	NotEmpty     bool     `yaml:"not_empty" json:"not_empty,omitempty"`
	Rule         string   `yaml:"rule" json:"rule,omitempty"`
	ThenRequired bool     `yaml:"then_required" json:"then_required"`

	Predicate func(any) bool `yaml:"-" json:"-"`
}

// Matches reports whether the controlling field's current value satisfies the condition.
func (c *Condition) Matches(values Values) bool {
	v := values[c.Field]
	switch {
	case c.Predicate != nil:
		return c.Predicate(v)
	case c.Rule != "":
		return false
	case len(c.In) > 0:
		for _, s := range choices(v) {
			for _, candidate := range c.In {
				if strings.EqualFold(candidate, s) {
					return true
				}
			}
		}
		return false
	case c.NotEmpty:
		return !IsEmpty(v)
	case c.Equals == nil:
		return false
	default:
		want := Stringify(c.Equals)
		for _, s := range choices(v) {
			if strings.EqualFold(want, s) {
				return true
			}
		}
		return false
	}
}

func (c *Condition) hasSelector() bool {
	return c.Predicate != nil || c.Rule != "" || len(c.In) > 0 || c.NotEmpty || c.Equals != nil
}

// choices flattens a multi-select value so a condition matches any selected option.
func choices(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, Stringify(item))
		}
		return out
	}
	return []string{Stringify(v)}
}

// FileRef marks a file that has been selected but not yet resolved to a URL.
type FileRef struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// Values is the mutable form state: field key to current value.
type Values map[string]any

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns the stringified value for key.
func (v Values) String(key string) string {
	return Stringify(v[key])
}

// IsEmpty reports whether the value under key counts as empty.
func (v Values) IsEmpty(key string) bool {
	return IsEmpty(v[key])
}

// IsEmpty reports whether a value counts as absent for requiredness checks.
// An unresolved FileRef is empty: only an uploaded URL satisfies a file field.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case FileRef, *FileRef:
		return true
	}
	return false
}

// Stringify renders scalar values the way they are compared and exported.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	case FileRef:
		return t.Name
	case *FileRef:
		if t == nil {
			return ""
		}
		return t.Name
	}
	return ""
}

// Errors maps field key to error message. An empty message means the field is valid.
type Errors map[string]string

// HasErrors reports whether any entry carries a message.
func (e Errors) HasErrors() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

// Failed returns only the entries that carry a message.
func (e Errors) Failed() map[string]string {
	out := make(map[string]string)
	for k, msg := range e {
		if msg != "" {
			out[k] = msg
		}
	}
	return out
}

// Keys returns the failed keys sorted.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k, msg := range e {
		if msg != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON renders valid entries as null.
func (e Errors) MarshalJSON() ([]byte, error) {
	out := make(map[string]*string, len(e))
	for k, msg := range e {
		if msg == "" {
			out[k] = nil
			continue
		}
		m := msg
		out[k] = &m
	}
	return json.Marshal(out)
}
