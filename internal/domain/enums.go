package domain

// FileType represents the allowed file types for report upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// ReportStatus represents the processing lifecycle of an uploaded report.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusProcessed ReportStatus = "processed"
	ReportStatusFailed    ReportStatus = "failed"
	ReportStatusDeleted   ReportStatus = "deleted"
)

// ResultStatus flags a lab result relative to its reference range.
type ResultStatus string

const (
	ResultStatusNormal   ResultStatus = "normal"
	ResultStatusHigh     ResultStatus = "high"
	ResultStatusLow      ResultStatus = "low"
	ResultStatusCritical ResultStatus = "critical"
)

// ValidResultStatuses enumerates the accepted status values.
var ValidResultStatuses = map[ResultStatus]bool{
	ResultStatusNormal:   true,
	ResultStatusHigh:     true,
	ResultStatusLow:      true,
	ResultStatusCritical: true,
}

// CategoryID identifies one of the built-in test categories.
type CategoryID string

const (
	CategoryBlood     CategoryID = "blood"
	CategoryLipid     CategoryID = "lipid"
	CategoryLiver     CategoryID = "liver"
	CategoryKidney    CategoryID = "kidney"
	CategoryMetabolic CategoryID = "metabolic"
)

// ValidCategories enumerates the accepted category identifiers.
var ValidCategories = map[CategoryID]bool{
	CategoryBlood:     true,
	CategoryLipid:     true,
	CategoryLiver:     true,
	CategoryKidney:    true,
	CategoryMetabolic: true,
}
