package firestore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"formdesk/internal/domain"
)

// submissionRecord is the stored shape of a submission. Data is kept as a
// native map so the console shows real fields.
type submissionRecord struct {
	FormType        string         `firestore:"formType"`
	Category        string         `firestore:"category"`
	Status          string         `firestore:"status"`
	Data            map[string]any `firestore:"data"`
	SubmitterEmail  string         `firestore:"submitterEmail"`
	Timestamp       *time.Time     `firestore:"timestamp"`
	ReviewerComment string         `firestore:"reviewerComment"`
	ReviewedBy      string         `firestore:"reviewedBy"`
	ReviewedAt      *time.Time     `firestore:"reviewedAt"`
	Notified        bool           `firestore:"notified"`
	NotifiedAt      *time.Time     `firestore:"notifiedAt"`
	CreatedAt       time.Time      `firestore:"createdAt"`
	UpdatedAt       time.Time      `firestore:"updatedAt"`
}

func toSubmissionRecord(sub *domain.Submission) (submissionRecord, error) {
	data := map[string]any{}
	if len(sub.Data) > 0 {
		if err := json.Unmarshal(sub.Data, &data); err != nil {
			return submissionRecord{}, fmt.Errorf("decode submission data: %w", err)
		}
	}
	rec := submissionRecord{
		FormType:        sub.FormType,
		Category:        sub.Category,
		Status:          string(sub.Status),
		Data:            data,
		SubmitterEmail:  sub.SubmitterEmail,
		Timestamp:       sub.ClientTimestamp,
		ReviewerComment: sub.ReviewerComment,
		ReviewedAt:      sub.ReviewedAt,
		Notified:        sub.NotifiedAt != nil,
		NotifiedAt:      sub.NotifiedAt,
		CreatedAt:       sub.CreatedAt,
		UpdatedAt:       sub.UpdatedAt,
	}
	if sub.ReviewedBy != nil {
		rec.ReviewedBy = sub.ReviewedBy.String()
	}
	return rec, nil
}

func fromSubmissionRecord(id string, rec submissionRecord) (domain.Submission, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("submission id %q: %w", id, err)
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("encode submission data: %w", err)
	}
	sub := domain.Submission{
		ID:              subID,
		FormType:        rec.FormType,
		Category:        rec.Category,
		Status:          domain.SubmissionStatus(rec.Status),
		Data:            data,
		SubmitterEmail:  rec.SubmitterEmail,
		ClientTimestamp: rec.Timestamp,
		ReviewerComment: rec.ReviewerComment,
		ReviewedAt:      rec.ReviewedAt,
		NotifiedAt:      rec.NotifiedAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if rec.ReviewedBy != "" {
		if rid, err := uuid.Parse(rec.ReviewedBy); err == nil {
			sub.ReviewedBy = &rid
		}
	}
	return sub, nil
}

type draftRecord struct {
	FormType  string         `firestore:"formType"`
	ClientID  string         `firestore:"clientId"`
	Step      int            `firestore:"step"`
	Values    map[string]any `firestore:"values"`
	Uploads   map[string]any `firestore:"uploads"`
	UpdatedAt time.Time      `firestore:"updatedAt"`
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeObject(m map[string]any) (json.RawMessage, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func toDraftRecord(d *domain.Draft) (draftRecord, error) {
	values, err := decodeObject(d.Values)
	if err != nil {
		return draftRecord{}, fmt.Errorf("decode draft values: %w", err)
	}
	uploads, err := decodeObject(d.Uploads)
	if err != nil {
		return draftRecord{}, fmt.Errorf("decode draft uploads: %w", err)
	}
	return draftRecord{
		FormType:  d.FormType,
		ClientID:  d.ClientID,
		Step:      d.Step,
		Values:    values,
		Uploads:   uploads,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func fromDraftRecord(key string, rec draftRecord) (domain.Draft, error) {
	values, err := encodeObject(rec.Values)
	if err != nil {
		return domain.Draft{}, err
	}
	uploads, err := encodeObject(rec.Uploads)
	if err != nil {
		return domain.Draft{}, err
	}
	return domain.Draft{
		Key:       key,
		FormType:  rec.FormType,
		ClientID:  rec.ClientID,
		Step:      rec.Step,
		Values:    values,
		Uploads:   uploads,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// docID makes a draft key safe as a document ID.
func docID(key string) string {
	return strings.ReplaceAll(key, "/", "_")
}

type reviewerRecord struct {
	Email        string    `firestore:"email"`
	EmailLower   string    `firestore:"emailLower"`
	PasswordHash string    `firestore:"passwordHash"`
	FullName     string    `firestore:"fullName"`
	Role         string    `firestore:"role"`
	IsActive     bool      `firestore:"isActive"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func toReviewerRecord(r *domain.Reviewer) reviewerRecord {
	return reviewerRecord{
		Email:        r.Email,
		EmailLower:   strings.ToLower(r.Email),
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Role:         string(r.Role),
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromReviewerRecord(id string, rec reviewerRecord) (domain.Reviewer, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return domain.Reviewer{}, fmt.Errorf("reviewer id %q: %w", id, err)
	}
	return domain.Reviewer{
		ID:           rid,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		FullName:     rec.FullName,
		Role:         domain.ReviewerRole(rec.Role),
		IsActive:     rec.IsActive,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

type auditRecord struct {
	SubmissionID string         `firestore:"submissionId"`
	FormType     string         `firestore:"formType"`
	ReviewerID   string         `firestore:"reviewerId"`
	Action       string         `firestore:"action"`
	Changes      map[string]any `firestore:"changes"`
	CreatedAt    time.Time      `firestore:"createdAt"`
}

func toAuditRecord(e *domain.SubmissionAuditEntry) (auditRecord, error) {
	changes, err := decodeObject(e.Changes)
	if err != nil {
		return auditRecord{}, fmt.Errorf("decode audit changes: %w", err)
	}
	rec := auditRecord{
		SubmissionID: e.SubmissionID.String(),
		FormType:     e.FormType,
		Action:       e.Action,
		Changes:      changes,
		CreatedAt:    e.CreatedAt,
	}
	if e.ReviewerID != nil {
		rec.ReviewerID = e.ReviewerID.String()
	}
	return rec, nil
}

func fromAuditRecord(id string, rec auditRecord) (domain.SubmissionAuditEntry, error) {
	eid, err := uuid.Parse(id)
	if err != nil {
		return domain.SubmissionAuditEntry{}, fmt.Errorf("audit id %q: %w", id, err)
	}
	sid, err := uuid.Parse(rec.SubmissionID)
	if err != nil {
		return domain.SubmissionAuditEntry{}, fmt.Errorf("audit submission id %q: %w", rec.SubmissionID, err)
	}
	changes, err := encodeObject(rec.Changes)
	if err != nil {
		return domain.SubmissionAuditEntry{}, err
	}
	entry := domain.SubmissionAuditEntry{
		ID:           eid,
		SubmissionID: sid,
		FormType:     rec.FormType,
		Action:       rec.Action,
		Changes:      changes,
		CreatedAt:    rec.CreatedAt,
	}
	if rec.ReviewerID != "" {
		if rid, err := uuid.Parse(rec.ReviewerID); err == nil {
			entry.ReviewerID = &rid
		}
	}
	return entry, nil
}
