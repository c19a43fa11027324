package storage_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"formdesk/internal/storage"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"passport scan.pdf", "passport_scan.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\ada\id card.png`, "id_card.png"},
		{"..", "file"},
		{"", "file"},
		{"résumé (1).jpg", "r_sum_1_.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	got := storage.SanitizeFilename(strings.Repeat("a", 300) + ".pdf")
	assert.Len(t, got, 120)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1717243200123)
	assert.Equal(t, "kyc/identificationDocument/1717243200123_my_id.pdf",
		storage.ObjectKey("kyc", "identificationDocument", "my id.pdf", at))
	assert.Equal(t, "uploads/file/1717243200123_file",
		storage.ObjectKey("", "", "", at))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/kyc/a.pdf", storage.PublicURL("https://cdn.example.com/", "/kyc/a.pdf"))
	assert.Empty(t, storage.PublicURL("", "kyc/a.pdf"))
}
