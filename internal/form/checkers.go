package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// checkFunc returns an error message for a present value, or "" when it passes.
type checkFunc func(rule *FieldRule, value any, now time.Time) string

// checkerRegistry maps a field type to its type-specific check.
type checkerRegistry struct {
	checks map[FieldType]checkFunc
}

func newCheckerRegistry() *checkerRegistry {
	r := &checkerRegistry{checks: make(map[FieldType]checkFunc)}
	r.Register(FieldText, checkText)
	r.Register(FieldEmail, checkEmail)
	r.Register(FieldNumber, checkNumber)
	r.Register(FieldPhone, checkPhone)
	r.Register(FieldDate, checkDate)
	r.Register(FieldEnum, checkEnum)
	r.Register(FieldFile, checkFile)
	r.Register(FieldBoolean, checkBoolean)
	return r
}

// Register adds or replaces the check for a field type.
func (r *checkerRegistry) Register(t FieldType, fn checkFunc) {
	r.checks[t] = fn
}

// Get returns the check for t, or nil.
func (r *checkerRegistry) Get(t FieldType) checkFunc {
	return r.checks[t]
}

func checkLength(rule *FieldRule, s string) string {
	n := utf8.RuneCountInString(s)
	if rule.MinLength > 0 && n < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", rule.Label, rule.MinLength)
	}
	if rule.MaxLength > 0 && n > rule.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", rule.Label, rule.MaxLength)
	}
	return ""
}

func checkText(rule *FieldRule, value any, _ time.Time) string {
	s, ok := value.(string)
	if !ok {
		s = Stringify(value)
	}
	s = strings.TrimSpace(s)
	if msg := checkLength(rule, s); msg != "" {
		return msg
	}
	if rule.re != nil && !rule.re.MatchString(s) {
		return fmt.Sprintf("%s contains invalid characters", rule.Label)
	}
	return ""
}

func checkEmail(rule *FieldRule, value any, _ time.Time) string {
	s, ok := value.(string)
	if !ok || !emailPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Sprintf("%s must be a valid email address", rule.Label)
	}
	return checkLength(rule, strings.TrimSpace(s))
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func checkNumber(rule *FieldRule, value any, _ time.Time) string {
	var (
		f   float64
		raw string
	)
	switch t := value.(type) {
	case float64:
		f, raw = t, Stringify(t)
	case int:
		f, raw = float64(t), strconv.Itoa(t)
	case int64:
		f, raw = float64(t), strconv.FormatInt(t, 10)
	case string:
		raw = strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Sprintf("%s must be a number", rule.Label)
		}
		f = parsed
	default:
		return fmt.Sprintf("%s must be a number", rule.Label)
	}
	if rule.MaxDigits > 0 && countDigits(raw) > rule.MaxDigits {
		return fmt.Sprintf("%s must not exceed %d digits", rule.Label, rule.MaxDigits)
	}
	if rule.Min != nil && f < *rule.Min {
		return fmt.Sprintf("%s must be at least %s", rule.Label, Stringify(*rule.Min))
	}
	if rule.Max != nil && f > *rule.Max {
		return fmt.Sprintf("%s must be at most %s", rule.Label, Stringify(*rule.Max))
	}
	return ""
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

func checkPhone(rule *FieldRule, value any, _ time.Time) string {
	s := phoneSeparators.Replace(Stringify(value))
	s = strings.TrimPrefix(s, "+")
	if s == "" || countDigits(s) != len(s) {
		return fmt.Sprintf("%s must contain digits only", rule.Label)
	}
	if rule.MaxDigits > 0 && len(s) > rule.MaxDigits {
		return fmt.Sprintf("%s must not exceed %d digits", rule.Label, rule.MaxDigits)
	}
	if rule.MinLength > 0 && len(s) < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d digits", rule.Label, rule.MinLength)
	}
	return ""
}

func checkDate(rule *FieldRule, value any, now time.Time) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", rule.Label)
	}
	s = strings.TrimSpace(s)
	// Accept full timestamps from date pickers and keep only the day.
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", rule.Label)
	}
	if rule.NotFuture {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d.After(today) {
			return fmt.Sprintf("%s cannot be in the future", rule.Label)
		}
	}
	return ""
}

func inOptions(options []string, s string) bool {
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return true
		}
	}
	return false
}

func checkEnum(rule *FieldRule, value any, _ time.Time) string {
	var items []string
	switch t := value.(type) {
	case []string:
		items = t
	case []any:
		for _, item := range t {
			items = append(items, Stringify(item))
		}
	default:
		items = []string{Stringify(value)}
	}
	if len(items) > 1 && !rule.Multiple {
		return fmt.Sprintf("%s accepts a single choice", rule.Label)
	}
	for _, item := range items {
		if !inOptions(rule.Options, item) {
			return fmt.Sprintf("%s must be one of: %s", rule.Label, strings.Join(rule.Options, ", "))
		}
	}
	return ""
}

func checkFile(rule *FieldRule, value any, _ time.Time) string {
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		return ""
	}
	return fmt.Sprintf("%s must be uploaded", rule.Label)
}

func checkBoolean(rule *FieldRule, value any, _ time.Time) string {
	switch t := value.(type) {
	case bool:
		return ""
	case string:
		if _, err := strconv.ParseBool(t); err == nil {
			return ""
		}
	}
	return fmt.Sprintf("%s must be true or false", rule.Label)
}
