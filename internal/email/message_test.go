package email_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"formdesk/internal/domain"
	"formdesk/internal/email"
)

func TestSubmissionNotice(t *testing.T) {
	id := uuid.MustParse("3b8f7a36-0a43-4a4f-8d53-0f7c2f0a1b11")
	sub := &domain.Submission{ID: id, FormType: "motor-claim", SubmitterEmail: "ada@example.com"}

	msg := email.SubmissionNotice("https://admin.example.com/", sub)

	assert.Equal(t, "New motor-claim submission", msg.Subject)
	assert.Contains(t, msg.Text, "https://admin.example.com/admin/submissions/motor-claim/"+id.String())
	assert.Contains(t, msg.HTML, "ada@example.com")
}

func TestStatusUpdate_EscapesComment(t *testing.T) {
	sub := &domain.Submission{ID: uuid.New(), FormType: "fire-claim", Status: domain.StatusUnderReview}

	msg := email.StatusUpdate(sub, "<b>need</b> receipts")

	assert.Equal(t, "Your fire-claim submission is under review", msg.Subject)
	assert.Contains(t, msg.Text, "<b>need</b> receipts")
	assert.Contains(t, msg.HTML, "&lt;b&gt;need&lt;/b&gt; receipts")
	assert.NotContains(t, msg.HTML, "<b>need")
}

func TestStatusUpdate_NoComment(t *testing.T) {
	sub := &domain.Submission{ID: uuid.New(), FormType: "fire-claim", Status: domain.StatusApproved}

	msg := email.StatusUpdate(sub, "")

	assert.NotContains(t, msg.Text, "Reviewer comment")
	assert.NotContains(t, msg.HTML, "Reviewer comment")
}
