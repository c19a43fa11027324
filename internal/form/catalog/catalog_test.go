package catalog_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formdesk/internal/domain"
	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
)

func TestDefault_LoadsEveryForm(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"burglary-claim",
		"corporate-cdd",
		"corporate-kyc",
		"fire-claim",
		"goods-in-transit-claim",
		"individual-kyc",
		"money-claim",
		"motor-claim",
	}, c.Types())

	for _, def := range c.All() {
		assert.NoError(t, def.Validate(), def.Type)
		assert.NotEmpty(t, def.Schema.FileKeys(), "%s should collect documents", def.Type)
		assert.Positive(t, def.MaxUploadBytes, def.Type)
	}
}

func TestGet_UnknownFormType(t *testing.T) {
	_, err := catalog.MustDefault().Get("pet-claim")
	assert.True(t, errors.Is(err, domain.ErrUnknownFormType))
	assert.False(t, catalog.MustDefault().Has("pet-claim"))
}

func TestIndividualKYC_StateOfOriginFollowsCountry(t *testing.T) {
	def, err := catalog.MustDefault().Get("individual-kyc")
	require.NoError(t, err)

	assert.Equal(t, []string{"stateOfOrigin", "residencePermitNumber"}, def.Schema.Dependents("country"))

	keys := []string{"stateOfOrigin", "residencePermitNumber"}
	errs := form.Validate(def.Schema, form.Values{"country": "Nigeria"}, keys)
	assert.Equal(t, "State of Origin is required", errs["stateOfOrigin"])
	assert.Empty(t, errs["residencePermitNumber"])

	errs = form.Validate(def.Schema, form.Values{"country": "Kenya"}, keys)
	assert.Empty(t, errs["stateOfOrigin"])
	assert.Equal(t, "Residence Permit Number is required", errs["residencePermitNumber"])
}

func TestIndividualKYC_MultiSelectCondition(t *testing.T) {
	def, err := catalog.MustDefault().Get("individual-kyc")
	require.NoError(t, err)

	errs := form.Validate(def.Schema, form.Values{"sourceOfIncome": []any{"Salary", "Others"}}, []string{"sourceOfIncome", "sourceOfIncomeOther"})
	assert.Empty(t, errs["sourceOfIncome"])
	assert.NotEmpty(t, errs["sourceOfIncomeOther"])
}

func TestMoneyClaim_LargeLossNeedsPoliceReport(t *testing.T) {
	def, err := catalog.MustDefault().Get("money-claim")
	require.NoError(t, err)

	errs := form.Validate(def.Schema, form.Values{"amountLost": "750,000"}, []string{"policeReport"})
	assert.Equal(t, "Police Report is required", errs["policeReport"])

	errs = form.Validate(def.Schema, form.Values{"amountLost": 20000.0}, []string{"policeReport"})
	assert.Empty(t, errs["policeReport"])
}

func TestParse_Errors(t *testing.T) {
	_, err := catalog.Parse([]byte("title: nothing"))
	assert.ErrorContains(t, err, "no type")

	_, err = catalog.Parse([]byte(`
type: x
steps:
  - id: one
    fields:
      - key: a
        type: text
        depends_on: {field: a, rule: lunar_phase}
`))
	assert.ErrorContains(t, err, "unknown rule")

	_, err = catalog.Parse([]byte(`
type: x
steps:
  - id: one
    fields: []
`))
	assert.ErrorContains(t, err, "owns no fields")
}

func TestLoad_DuplicateType(t *testing.T) {
	doc := []byte("type: x\nsteps:\n  - id: one\n    fields:\n      - {key: a, type: text}\n")
	fsys := fstest.MapFS{
		"defs/a.yaml":    {Data: doc},
		"defs/b.yaml":    {Data: doc},
		"defs/notes.txt": {Data: []byte("ignored")},
	}
	_, err := catalog.Load(fsys, "defs")
	assert.ErrorContains(t, err, "duplicate form type")
}

func TestNew(t *testing.T) {
	def := &form.Definition{
		Type:   "simple",
		Schema: form.NewSchema(form.FieldRule{Key: "a", Type: form.FieldText}),
		Steps:  []form.Step{{ID: "one", FieldKeys: []string{"a"}}},
	}
	c, err := catalog.New(def)
	require.NoError(t, err)
	got, err := c.Get("simple")
	require.NoError(t, err)
	assert.Same(t, def, got)
}
