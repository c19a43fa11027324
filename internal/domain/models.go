package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Reviewer is a back-office user who reviews submissions.
type Reviewer struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	FullName     string       `db:"full_name" json:"full_name"`
	Role         ReviewerRole `db:"role" json:"role"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Submission is one persisted form envelope. FormType doubles as the
// collection name callers use to address it.
type Submission struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	FormType        string           `db:"form_type" json:"form_type"`
	Category        string           `db:"category" json:"category"`
	Status          SubmissionStatus `db:"status" json:"status"`
	Data            json.RawMessage  `db:"data" json:"data" swaggertype:"object"`
	SubmitterEmail  string           `db:"submitter_email" json:"submitter_email,omitempty"`
	ClientTimestamp *time.Time       `db:"client_timestamp" json:"timestamp,omitempty"`
	ReviewerComment string           `db:"reviewer_comment" json:"reviewer_comment,omitempty"`
	ReviewedBy      *uuid.UUID       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	NotifiedAt      *time.Time       `db:"notified_at" json:"notified_at,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// Fields decodes Data into a map. A nil or invalid payload yields an empty map.
func (s *Submission) Fields() map[string]any {
	out := map[string]any{}
	if len(s.Data) == 0 {
		return out
	}
	_ = json.Unmarshal(s.Data, &out)
	return out
}

// SortTime is the client timestamp when present, else the server creation time.
func (s *Submission) SortTime() time.Time {
	if s.ClientTimestamp != nil {
		return *s.ClientTimestamp
	}
	return s.CreatedAt
}

// SubmissionFilter narrows a submission listing.
type SubmissionFilter struct {
	FormType string
	Status   SubmissionStatus
	Offset   int
	Limit    int
}

// SubmissionAuditEntry records a single mutation on a submission.
type SubmissionAuditEntry struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	SubmissionID uuid.UUID       `db:"submission_id" json:"submission_id"`
	FormType     string          `db:"form_type" json:"form_type"`
	ReviewerID   *uuid.UUID      `db:"reviewer_id" json:"reviewer_id,omitempty"`
	Action       string          `db:"action" json:"action"`
	Changes      json.RawMessage `db:"changes" json:"changes" swaggertype:"object"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Draft is the autosaved, not yet submitted state of a wizard.
type Draft struct {
	Key       string          `db:"key" json:"key"`
	FormType  string          `db:"form_type" json:"form_type"`
	ClientID  string          `db:"client_id" json:"client_id"`
	Step      int             `db:"step" json:"step"`
	Values    json.RawMessage `db:"form_values" json:"values" swaggertype:"object"`
	Uploads   json.RawMessage `db:"uploads" json:"uploads" swaggertype:"object"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// DraftKey builds the storage key for a form type and client.
func DraftKey(formType, clientID string) string {
	return formType + ":" + clientID
}

// UploadedFile stores metadata about a file attached to a form field.
type UploadedFile struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FormType     string     `db:"form_type" json:"form_type"`
	FieldKey     string     `db:"field_key" json:"field_key"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	Bucket       string     `db:"bucket" json:"bucket"`
	StorageKey   string     `db:"storage_key" json:"storage_key"`
	URL          string     `db:"url" json:"url"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StatusCount is one cell of the form type by status matrix.
type StatusCount struct {
	FormType string           `db:"form_type" json:"form_type"`
	Status   SubmissionStatus `db:"status" json:"status"`
	Count    int              `db:"count" json:"count"`
}

// Stats summarises submissions for the admin dashboard.
type Stats struct {
	Total      int                       `json:"total"`
	ByStatus   map[SubmissionStatus]int  `json:"by_status"`
	ByFormType map[string]map[string]int `json:"by_form_type"`
}

// NewStats folds status counts into a Stats value.
func NewStats(counts []StatusCount) *Stats {
	st := &Stats{
		ByStatus:   map[SubmissionStatus]int{},
		ByFormType: map[string]map[string]int{},
	}
	for _, c := range counts {
		st.Total += c.Count
		st.ByStatus[c.Status] += c.Count
		if st.ByFormType[c.FormType] == nil {
			st.ByFormType[c.FormType] = map[string]int{}
		}
		st.ByFormType[c.FormType][string(c.Status)] += c.Count
	}
	return st
}
