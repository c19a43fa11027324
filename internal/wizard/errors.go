package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrNotOnLastStep      = errors.New("submit is only available on the last step")
	ErrUnknownField       = errors.New("unknown field")
	ErrNotFileField       = errors.New("field does not accept files")
	ErrFileFieldValue     = errors.New("file fields are set by uploading a file")
)

// StepBlockedError is returned by Next when fields of the active step fail validation.
type StepBlockedError struct {
	StepID string
	Fields map[string]string
}

func (e *StepBlockedError) Error() string {
	return fmt.Sprintf("step %q has invalid fields: %s", e.StepID, joinKeys(e.Fields))
}

// ValidationError is returned by Submit when the full form fails validation.
// FirstStep is the index of the earliest step holding a failing field.
type ValidationError struct {
	Fields    map[string]string
	FirstStep int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form has invalid fields: %s", joinKeys(e.Fields))
}

func joinKeys(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
