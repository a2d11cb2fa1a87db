package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrReportNotProcessed  = errors.New("report has not been processed yet")
	ErrAnalyzerUnavailable = errors.New("no analyzer provider is available")
	ErrUnknownTest         = errors.New("unknown test key")
)
