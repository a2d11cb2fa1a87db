package analyzer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labvista/internal/analyzer"
	"labvista/internal/repair"
)

const validAnalysisJSON = `{
	"patientInfo": {"id": "p-123", "name": "Jane Doe", "age": 42, "gender": "female", "lastTestDate": "2025-01-10"},
	"latestResults": [
		{"testName": "Hemoglobin", "result": 13.5, "unit": "g/dL", "flag": "normal"},
		{"testName": "LDL Cholesterol", "result": "162", "unit": "mg/dL", "flag": "high"}
	],
	"testCategories": [
		{"categoryName": "Blood Count", "tests": [{"testName": "Hemoglobin", "result": 13.5}]}
	]
}`

func TestAnalysisSchema_ValidDocument(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(validAnalysisJSON), &doc))

	variant, failures := analyzer.AnalysisSchema().Validate(doc)

	assert.Empty(t, failures)
	assert.Equal(t, "analysis", variant)
}

func TestAnalysisSchema_PageErrorVariant(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"error":"unreadable page","page_number":2,"processing_success":false}`), &doc))

	variant, failures := analyzer.AnalysisSchema().Validate(doc)

	assert.Empty(t, failures)
	assert.Equal(t, "page_error", variant)
}

func TestAnalysisSchema_RejectsBadFlag(t *testing.T) {
	raw := `{
		"patientInfo": {"id": "p1", "name": "Jane", "lastTestDate": "2025-01-10"},
		"latestResults": [{"testName": "Hb", "result": 1, "flag": "elevated"}],
		"testCategories": []
	}`
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	_, failures := analyzer.AnalysisSchema().Validate(doc)

	require.NotEmpty(t, failures)
	assert.Contains(t, repair.JoinFailures(failures), "flag")
}

func TestAnalysisSchema_RejectsMissingPatientInfo(t *testing.T) {
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"latestResults":[],"testCategories":[]}`), &doc))

	_, failures := analyzer.AnalysisSchema().Validate(doc)

	require.NotEmpty(t, failures)
	assert.Contains(t, repair.JoinFailures(failures), "patientInfo")
}

func TestProcess_FencedAnalysisSucceeds(t *testing.T) {
	raw := "```json\n" + validAnalysisJSON + "\n```"

	out := repair.Process(raw, analyzer.AnalysisSchema(), repair.DefaultMaxRetries)

	assert.True(t, out.Success)
	assert.Equal(t, "analysis", out.Variant)
	patient := out.Document["patientInfo"].(map[string]interface{})
	assert.Equal(t, "Jane Doe", patient["name"])
}

func TestProcess_GarbageExhaustsRetries(t *testing.T) {
	out := repair.Process("not json at all", analyzer.AnalysisSchema(), repair.DefaultMaxRetries)

	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
	assert.Len(t, out.Attempts, repair.DefaultMaxRetries+1)
}

func TestProcess_FallbackValidatesAsPageError(t *testing.T) {
	fallback := repair.MinimalValidResponse("analysis failed", 3)

	variant, failures := analyzer.AnalysisSchema().Validate(fallback)

	assert.Empty(t, failures)
	assert.Equal(t, "page_error", variant)
	meta := fallback["processing_metadata"].(map[string]interface{})
	assert.Equal(t, 3, meta["page_number"])
	assert.Equal(t, false, meta["validation_success"])
}
