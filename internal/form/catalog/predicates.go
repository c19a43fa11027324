package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"formdesk/internal/form"
)

// largeLossThreshold is the claimed amount above which a police report is mandatory.
const largeLossThreshold = 500000

var predicates = map[string]func(any) bool{
	"large_loss":  isLargeLoss,
	"not_nigeria": isForeignCountry,
}

func resolveRule(rule *form.FieldRule) error {
	if rule.DependsOn == nil || rule.DependsOn.Rule == "" {
		return nil
	}
	fn, ok := predicates[rule.DependsOn.Rule]
	if !ok {
		return fmt.Errorf("unknown rule %q", rule.DependsOn.Rule)
	}
	rule.DependsOn.Predicate = fn
	return nil
}

func isLargeLoss(v any) bool {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		if err != nil {
			return false
		}
		f = parsed
	default:
		return false
	}
	return f > largeLossThreshold
}

func isForeignCountry(v any) bool {
	s := form.Stringify(v)
	return s != "" && !strings.EqualFold(s, "Nigeria")
}
