package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"formdesk/internal/config"
	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "formdesk-test",
	}
}

func hashPassword(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

// testCatalog holds a single KYC-like form with a conditional field.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	schema := form.NewSchema(
		form.FieldRule{Key: "fullName", Label: "Full Name", Type: form.FieldText, Required: true},
		form.FieldRule{Key: "email", Label: "Email", Type: form.FieldEmail, Required: true},
		form.FieldRule{Key: "country", Label: "Country", Type: form.FieldEnum, Required: true, Options: []string{"Nigeria", "Ghana"}},
		form.FieldRule{
			Key: "stateOfOrigin", Label: "State of Origin", Type: form.FieldText,
			DependsOn: &form.Condition{Field: "country", Equals: "Nigeria", ThenRequired: true},
		},
		form.FieldRule{Key: "idCard", Label: "ID Card", Type: form.FieldFile, Required: true},
	)
	def := &form.Definition{
		Type:           "individual-kyc",
		Category:       "kyc",
		Title:          "Individual KYC",
		Schema:         schema,
		MaxUploadBytes: 1024,
		Steps: []form.Step{
			{ID: "personal", FieldKeys: []string{"fullName", "email", "country", "stateOfOrigin"}},
			{ID: "documents", FieldKeys: []string{"idCard"}},
		},
	}
	cat, err := catalog.New(def)
	require.NoError(t, err)
	return cat
}
