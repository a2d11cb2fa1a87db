package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"labvista/internal/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		ID:           uuid.New(),
		OriginalName: "cbc-jan.pdf",
		PatientName:  "Jane Doe",
		PatientID:    "p-123",
		TestDate:     "2025-01-10",
		Status:       domain.ReportStatusProcessed,
		ModelUsed:    "claude-sonnet-4-20250514",
		CreatedAt:    time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC),
	}
}

func sampleResults() []domain.LabResult {
	return []domain.LabResult{
		{
			TestName:   "Hemoglobin",
			TestKey:    "hemoglobin",
			Value:      13.5,
			Unit:       "g/dL",
			RefMin:     12,
			RefMax:     16,
			Status:     domain.ResultStatusNormal,
			Category:   domain.CategoryBlood,
			ResultDate: "2025-01-10",
		},
		{
			TestName:   "LDL Cholesterol",
			TestKey:    "ldlcholesterol",
			Value:      162,
			Unit:       "mg/dL",
			RefMin:     0,
			RefMax:     130,
			Status:     domain.ResultStatusHigh,
			Category:   domain.CategoryLipid,
			ResultDate: "2025-01-10",
		},
	}
}

func TestWorkbook_Sheets(t *testing.T) {
	f, err := Workbook(sampleReport(), sampleResults())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Report", "Results"}, f.GetSheetList())
}

func TestWorkbook_ReportSheet(t *testing.T) {
	report := sampleReport()
	f, err := Workbook(report, nil)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	label, err := f.GetCellValue("Report", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Patient", label)

	value, err := f.GetCellValue("Report", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", value)

	status, err := f.GetCellValue("Report", "B6")
	require.NoError(t, err)
	assert.Equal(t, "processed", status)
}

func TestWorkbook_ResultsSheet(t *testing.T) {
	f, err := Workbook(sampleReport(), sampleResults())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])

	assert.Equal(t, "Hemoglobin", rows[1][0])
	assert.Equal(t, "13.5", rows[1][1])
	assert.Equal(t, "g/dL", rows[1][2])
	assert.Equal(t, "normal", rows[1][5])

	assert.Equal(t, "LDL Cholesterol", rows[2][0])
	assert.Equal(t, "high", rows[2][5])
	assert.Equal(t, "lipid", rows[2][6])
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
