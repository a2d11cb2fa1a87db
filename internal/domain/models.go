package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Report stores metadata about an uploaded lab report and its analysis.
type Report struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	FileName     string          `db:"file_name" json:"file_name"`
	OriginalName string          `db:"original_name" json:"original_name"`
	FileType     FileType        `db:"file_type" json:"file_type"`
	FileSize     int64           `db:"file_size" json:"file_size"`
	S3Bucket     string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string          `db:"s3_key" json:"s3_key"`
	ContentType  string          `db:"content_type" json:"content_type"`
	Status       ReportStatus    `db:"status" json:"status"`
	ModelUsed    string          `db:"model_used" json:"model_used"`
	PatientID    string          `db:"patient_id" json:"patient_id"`
	PatientName  string          `db:"patient_name" json:"patient_name"`
	TestDate     string          `db:"test_date" json:"test_date"`
	Analysis     json.RawMessage `db:"analysis" json:"analysis,omitempty"`
	ProcessError string          `db:"process_error" json:"process_error,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// LabResult is one extracted test result row, persisted per report so trend
// queries can read real history across uploads.
type LabResult struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	ReportID   uuid.UUID    `db:"report_id" json:"report_id"`
	TestName   string       `db:"test_name" json:"testName"`
	TestKey    string       `db:"test_key" json:"testKey"`
	Value      float64      `db:"value" json:"value"`
	Unit       string       `db:"unit" json:"unit"`
	RefMin     float64      `db:"ref_min" json:"-"`
	RefMax     float64      `db:"ref_max" json:"-"`
	Status     ResultStatus `db:"status" json:"status"`
	Category   CategoryID   `db:"category" json:"category"`
	ResultDate string       `db:"result_date" json:"date"`
	CreatedAt  time.Time    `db:"created_at" json:"-"`
}

// ReferenceRange is the expected interval for a test value.
type ReferenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MarshalJSON inlines the reference range on serialized results.
func (r LabResult) MarshalJSON() ([]byte, error) {
	type alias LabResult
	return json.Marshal(struct {
		alias
		ReferenceRange ReferenceRange `json:"referenceRange"`
	}{
		alias:          alias(r),
		ReferenceRange: ReferenceRange{Min: r.RefMin, Max: r.RefMax},
	})
}

// PatientInfo holds the patient details extracted from a report.
type PatientInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	DateOfBirth  *string `json:"dateOfBirth"`
	LastTestDate string  `json:"lastTestDate"`
}

// TestCategory groups related tests for the dashboard.
type TestCategory struct {
	ID          CategoryID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Tests       []string   `json:"tests"`
}

// TrendPoint is one dated value in a test's trend series.
type TrendPoint struct {
	Date     string       `json:"date"`
	Value    float64      `json:"value"`
	TestName string       `json:"testName"`
	Status   ResultStatus `json:"status"`
}

// ProcessingMetadata carries repair-pipeline diagnostics alongside the data.
type ProcessingMetadata struct {
	ValidationSuccess bool   `json:"validation_success"`
	PageNumber        int    `json:"page_number,omitempty"`
	Error             string `json:"error,omitempty"`
	ModelUsed         string `json:"model_used,omitempty"`
	Attempts          int    `json:"attempts,omitempty"`
}

// DashboardData is the payload the frontend renders: patient header, latest
// results, category groupings, and per-test trend series keyed by test key.
type DashboardData struct {
	PatientInfo        PatientInfo             `json:"patientInfo"`
	LatestResults      []LabResult             `json:"latestResults"`
	TestCategories     []TestCategory          `json:"testCategories"`
	TrendData          map[string][]TrendPoint `json:"trendData"`
	ProcessingMetadata *ProcessingMetadata     `json:"processing_metadata,omitempty"`
}
