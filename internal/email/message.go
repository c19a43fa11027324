// Package email renders the notification messages sent to reviewers and submitters.
package email

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"formdesk/internal/domain"
)

// Message is a rendered email.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// ReviewURL returns the admin link for a submission.
func ReviewURL(frontendURL string, sub *domain.Submission) string {
	return fmt.Sprintf("%s/admin/submissions/%s/%s",
		strings.TrimRight(frontendURL, "/"),
		url.PathEscape(sub.FormType),
		url.PathEscape(sub.ID.String()),
	)
}

// SubmissionNotice renders the reviewer notice for a new submission.
func SubmissionNotice(frontendURL string, sub *domain.Submission) Message {
	link := ReviewURL(frontendURL, sub)
	who := sub.SubmitterEmail
	if who == "" {
		who = "an anonymous submitter"
	}
	subject := fmt.Sprintf("New %s submission", sub.FormType)
	text := fmt.Sprintf("A new %s submission was received from %s.\n\nReference: %s\nReview it at:\n%s\n\nFormdesk",
		sub.FormType, who, sub.ID, link)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">New %s submission</h2>
  <p>A new submission was received from %s.</p>
  <p>Reference: <strong>%s</strong></p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Submission</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Formdesk - Insurance Intake</p>
</body>
</html>`, html.EscapeString(sub.FormType), html.EscapeString(who), sub.ID, html.EscapeString(link))
	return Message{Subject: subject, HTML: body, Text: text}
}

// StatusUpdate renders the submitter email for a status change.
func StatusUpdate(sub *domain.Submission, comment string) Message {
	status := strings.ReplaceAll(string(sub.Status), "_", " ")
	subject := fmt.Sprintf("Your %s submission is %s", sub.FormType, status)

	var text strings.Builder
	fmt.Fprintf(&text, "Hello,\n\nThe status of your %s submission (reference %s) is now: %s.\n", sub.FormType, sub.ID, status)
	if comment != "" {
		fmt.Fprintf(&text, "\nReviewer comment:\n%s\n", comment)
	}
	text.WriteString("\nFormdesk")

	commentHTML := ""
	if comment != "" {
		commentHTML = fmt.Sprintf(`<p><strong>Reviewer comment:</strong></p>
  <p style="white-space: pre-wrap; color: #444;">%s</p>`, html.EscapeString(comment))
	}
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Submission update</h2>
  <p>The status of your %s submission (reference <strong>%s</strong>) is now <strong>%s</strong>.</p>
  %s
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Formdesk - Insurance Intake</p>
</body>
</html>`, html.EscapeString(sub.FormType), sub.ID, html.EscapeString(status), commentHTML)
	return Message{Subject: subject, HTML: body, Text: text.String()}
}
