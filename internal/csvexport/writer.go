package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"formdesk/internal/domain"
	"formdesk/internal/form"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// metaColumns lead every export row.
var metaColumns = []string{
	"ID",
	"Form Type",
	"Status",
	"Submitter Email",
	"Timestamp",
	"Created At",
	"Reviewer Comment",
	"Reviewed At",
}

// Columns returns the header row for def: metadata columns followed by every
// schema field label in schema order.
func Columns(def *form.Definition) []string {
	rules := def.Schema.Rules()
	cols := make([]string, 0, len(metaColumns)+len(rules))
	cols = append(cols, metaColumns...)
	for _, r := range rules {
		cols = append(cols, r.Label)
	}
	return cols
}

// Row converts a submission into cells aligned with Columns(def). Fields the
// submission does not carry are left empty.
func Row(def *form.Definition, sub *domain.Submission) []string {
	keys := def.Schema.Keys()
	row := make([]string, 0, len(metaColumns)+len(keys))
	row = append(row,
		sub.ID.String(),
		sub.FormType,
		string(sub.Status),
		sub.SubmitterEmail,
		formatTime(sub.ClientTimestamp),
		sub.CreatedAt.Format(time.RFC3339),
		sub.ReviewerComment,
		formatTime(sub.ReviewedAt),
	)
	fields := sub.Fields()
	for _, key := range keys {
		row = append(row, formatValue(fields[key]))
	}
	for i := range row {
		row[i] = escapeFormula(row[i])
	}
	return row
}

// Writer wraps csv.Writer for exporting submissions of one form type.
type Writer struct {
	csv *csv.Writer
	def *form.Definition
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer, def *form.Definition) *Writer {
	return &Writer{csv: csv.NewWriter(w), def: def}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns(w.def))
}

// WriteSubmissions converts a batch of submissions to CSV rows and writes them.
func (w *Writer) WriteSubmissions(subs []domain.Submission) error {
	for i := range subs {
		if err := w.csv.Write(Row(w.def, &subs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func formatValue(v any) string {
	if b, ok := v.(bool); ok {
		return formatBool(b)
	}
	return form.Stringify(v)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// escapeFormula stops spreadsheet apps from evaluating user input as a formula.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a form type for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns "{sanitized_name}_{YYYY-MM-DD}.{ext}".
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
