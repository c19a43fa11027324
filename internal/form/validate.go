package form

import (
	"fmt"
	"time"
)

// Validator evaluates a Schema against form values.
type Validator struct {
	checks *checkerRegistry
	now    func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used by not-future date checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator creates a Validator with the built-in type checks.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{checks: newCheckerRegistry(), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = NewValidator()

// Validate runs the default Validator.
func Validate(schema *Schema, values Values, active []string) Errors {
	return defaultValidator.Validate(schema, values, active)
}

// Validate checks every key in active and returns an entry for each of them,
// "" for fields that pass. Keys unknown to the schema are reported as errors.
func (v *Validator) Validate(schema *Schema, values Values, active []string) Errors {
	out := make(Errors, len(active))
	now := v.now().UTC()
	for _, key := range active {
		rule, ok := schema.Rule(key)
		if !ok {
			out[key] = fmt.Sprintf("%s is not a field of this form", key)
			continue
		}
		out[key] = v.validateField(rule, values, now)
	}
	return out
}

func (v *Validator) validateField(rule *FieldRule, values Values, now time.Time) string {
	value := values[rule.Key]
	if IsEmpty(value) {
		if IsRequired(rule, values) {
			return fmt.Sprintf("%s is required", rule.Label)
		}
		return ""
	}
	check := v.checks.Get(rule.Type)
	if check == nil {
		return ""
	}
	return check(rule, value, now)
}

// IsRequired resolves the effective requiredness of rule against values.
// A DependsOn condition wins over the static flag in both directions.
func IsRequired(rule *FieldRule, values Values) bool {
	if rule.DependsOn != nil {
		if rule.DependsOn.Matches(values) {
			return rule.DependsOn.ThenRequired
		}
		return false
	}
	if rule.RequiredFunc != nil {
		return rule.RequiredFunc(values)
	}
	return rule.Required
}
