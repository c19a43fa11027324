package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// ReviewerRole defines what a back-office user may do.
type ReviewerRole string

const (
	RoleAdmin    ReviewerRole = "admin"
	RoleReviewer ReviewerRole = "reviewer"
	RoleViewer   ReviewerRole = "viewer"
)

// ValidReviewerRoles is the set of assignable roles.
var ValidReviewerRoles = map[ReviewerRole]bool{
	RoleAdmin:    true,
	RoleReviewer: true,
	RoleViewer:   true,
}

// RoleLevel maps each role to a numeric privilege level for comparison.
var RoleLevel = map[ReviewerRole]int{
	RoleAdmin:    3,
	RoleReviewer: 2,
	RoleViewer:   1,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
)

// SubmissionStatus is the review state of a submitted form.
type SubmissionStatus string

const (
	StatusPending     SubmissionStatus = "pending"
	StatusProcessing  SubmissionStatus = "processing"
	StatusUnderReview SubmissionStatus = "under_review"
	StatusApproved    SubmissionStatus = "approved"
	StatusRejected    SubmissionStatus = "rejected"
	StatusClosed      SubmissionStatus = "closed"
)

// ValidSubmissionStatuses lists every known status.
var ValidSubmissionStatuses = map[SubmissionStatus]bool{
	StatusPending:     true,
	StatusProcessing:  true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
	StatusClosed:      true,
}

// IsTerminal reports whether no further transition is possible.
func (s SubmissionStatus) IsTerminal() bool { return s == StatusClosed }

// IsDecided reports whether a reviewer has approved or rejected the submission.
func (s SubmissionStatus) IsDecided() bool { return s == StatusApproved || s == StatusRejected }

// CanTransitionTo reports whether moving from s to next is allowed.
// Open statuses move freely; decided ones may only close or reopen for review.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	if !ValidSubmissionStatuses[next] || s == next {
		return false
	}
	switch {
	case s.IsTerminal():
		return false
	case s.IsDecided():
		return next == StatusClosed || next == StatusUnderReview
	default:
		return true
	}
}

// AuditAction identifies a recorded submission mutation.
type AuditAction string

const (
	AuditSubmissionCreated       AuditAction = "submission.created"
	AuditSubmissionStatusChanged AuditAction = "submission.status_changed"
	AuditSubmissionUpdated       AuditAction = "submission.updated"
	AuditSubmissionNotified      AuditAction = "submission.reviewers_notified"
)
