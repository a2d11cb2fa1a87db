package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"labvista/internal/analyzer"
	"labvista/internal/config"
	"labvista/internal/domain"
	"labvista/internal/export"
	"labvista/internal/formatter"
	"labvista/internal/port"
	"labvista/internal/repair"
)

// minTrendHistory is the number of stored results needed before trends are
// served from real history instead of being synthesized.
const minTrendHistory = 2

// ReportUploadInput is the DTO for report upload requests.
type ReportUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ReportService defines the lab report contract: upload and analysis,
// dashboard retrieval, trends, export, and lifecycle management.
type ReportService interface {
	Upload(ctx context.Context, input ReportUploadInput) (*domain.Report, *domain.DashboardData, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	GetDashboard(ctx context.Context, id uuid.UUID) (*domain.DashboardData, error)
	List(ctx context.Context, offset, limit int) ([]domain.Report, int, error)
	GetTrends(ctx context.Context, testKey string) ([]domain.TrendPoint, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Export(ctx context.Context, id uuid.UUID, w io.Writer) (*domain.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportService struct {
	reportRepo port.ReportRepository
	resultRepo port.ResultRepository
	storage    port.ObjectStorage
	llm        port.ReportAnalyzer
	extractor  port.TextExtractor
	fmtr       *formatter.Formatter
	s3cfg      *config.S3Config
	maxRetries int
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	reportRepo port.ReportRepository,
	resultRepo port.ResultRepository,
	storage port.ObjectStorage,
	llm port.ReportAnalyzer,
	extractor port.TextExtractor,
	fmtr *formatter.Formatter,
	s3cfg *config.S3Config,
	repairCfg *config.RepairConfig,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		resultRepo: resultRepo,
		storage:    storage,
		llm:        llm,
		extractor:  extractor,
		fmtr:       fmtr,
		s3cfg:      s3cfg,
		maxRetries: repairCfg.MaxRetries,
	}
}

func (s *reportService) Upload(ctx context.Context, input ReportUploadInput) (*domain.Report, *domain.DashboardData, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.s3cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, nil, domain.ErrFileTooLarge
	}

	// Magic-byte check: the extension alone is not trusted.
	head := make([]byte, 512)
	n, err := input.File.Read(head)
	if err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(head[:n])
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, nil, domain.ErrUnsupportedFileType
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seeking file: %w", err)
	}

	fileBytes, err := io.ReadAll(input.File)
	if err != nil {
		return nil, nil, fmt.Errorf("reading file: %w", err)
	}

	reportID := uuid.New()
	contentType := domain.AllowedFileTypes[fileType]
	s3Key := fmt.Sprintf("reports/%s/%s", reportID, input.Header.Filename)

	report := &domain.Report{
		ID:           reportID,
		FileName:     reportID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.s3cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  contentType,
		Status:       domain.ReportStatusPending,
	}

	log.Printf("reportService.Upload: uploading report %s (%s, %d bytes)",
		input.Header.Filename, contentType, input.Header.Size)

	if err := s.reportRepo.Create(ctx, report); err != nil {
		log.Printf("reportService.Upload: failed to create report record: %v", err)
		return nil, nil, fmt.Errorf("creating report record: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(fileBytes),
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("reportService.Upload: S3 upload failed for report %s: %v", report.ID, err)
		_ = s.reportRepo.UpdateStatus(ctx, report.ID, domain.ReportStatusFailed)
		return nil, nil, domain.ErrUploadFailed
	}

	// Text-only analyzers (ollama) consume the extracted layer; Claude reads
	// the document natively. Extraction failure is not fatal: scanned PDFs
	// have no text layer and still analyze through a document-capable provider.
	var extractedText string
	if fileType == domain.FileTypePDF {
		extractedText, err = s.extractor.ExtractText(fileBytes)
		if err != nil {
			log.Printf("reportService.Upload: text extraction failed for report %s: %v", report.ID, err)
			extractedText = ""
		}
	}

	dashboard := s.analyze(ctx, report, fileBytes, contentType, extractedText)

	if err := s.reportRepo.UpdateAnalysis(ctx, report); err != nil {
		return nil, nil, fmt.Errorf("storing analysis: %w", err)
	}

	if report.Status == domain.ReportStatusProcessed && len(dashboard.LatestResults) > 0 {
		for i := range dashboard.LatestResults {
			dashboard.LatestResults[i].ReportID = report.ID
		}
		if err := s.resultRepo.CreateBatch(ctx, dashboard.LatestResults); err != nil {
			// Dashboard data is already durable on the report row; losing the
			// per-result rows only degrades trend history.
			log.Printf("reportService.Upload: failed to persist results for report %s: %v", report.ID, err)
		}
	}

	return report, dashboard, nil
}

// analyze runs the LLM, repairs its output, and mutates the report with the
// outcome. It always produces a dashboard, falling back to the minimal
// page-error document when analysis cannot be salvaged.
func (s *reportService) analyze(ctx context.Context, report *domain.Report, fileBytes []byte, contentType, text string) *domain.DashboardData {
	now := time.Now().UTC()
	report.ProcessedAt = &now

	llmOut, err := s.llm.Analyze(ctx, port.AnalyzeInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
		Text:        text,
		PageNumber:  1,
	})
	if err != nil {
		log.Printf("reportService.analyze: analysis failed for report %s: %v", report.ID, err)
		return s.failWith(report, repair.MinimalValidResponse(err.Error(), 1), &domain.ProcessingMetadata{
			ValidationSuccess: false,
			PageNumber:        1,
			Error:             err.Error(),
		})
	}
	report.ModelUsed = llmOut.ModelUsed

	outcome := repair.Process(llmOut.RawText, analyzer.AnalysisSchema(), s.maxRetries)
	meta := &domain.ProcessingMetadata{
		ValidationSuccess: outcome.Success && outcome.Variant == "analysis",
		ModelUsed:         llmOut.ModelUsed,
		Attempts:          len(outcome.Attempts),
	}

	if !outcome.Success {
		log.Printf("reportService.analyze: repair exhausted for report %s after %d attempts: %s",
			report.ID, len(outcome.Attempts), outcome.Error)
		meta.PageNumber = 1
		meta.Error = outcome.Error
		return s.failWith(report, repair.MinimalValidResponse(outcome.Error, 1), meta)
	}

	if outcome.Variant != "analysis" {
		// The model reported a page-level failure in valid form.
		errMsg, _ := outcome.Document["error"].(string)
		log.Printf("reportService.analyze: report %s returned page error: %s", report.ID, errMsg)
		meta.Error = errMsg
		if page, ok := outcome.Document["page_number"].(float64); ok {
			meta.PageNumber = int(page)
		}
		return s.failWith(report, outcome.Document, meta)
	}

	dashboard := s.fmtr.Dashboard(outcome.Document)
	dashboard.ProcessingMetadata = meta

	rawAnalysis, err := json.Marshal(outcome.Document)
	if err != nil {
		log.Printf("reportService.analyze: failed to marshal analysis for report %s: %v", report.ID, err)
	}
	report.Analysis = rawAnalysis
	report.Status = domain.ReportStatusProcessed
	report.PatientID = dashboard.PatientInfo.ID
	report.PatientName = dashboard.PatientInfo.Name
	report.TestDate = dashboard.PatientInfo.LastTestDate

	return dashboard
}

func (s *reportService) failWith(report *domain.Report, doc map[string]interface{}, meta *domain.ProcessingMetadata) *domain.DashboardData {
	report.Status = domain.ReportStatusFailed
	report.ProcessError = meta.Error
	if raw, err := json.Marshal(doc); err == nil {
		report.Analysis = raw
	}

	dashboard := s.fmtr.EmptyDashboard()
	dashboard.ProcessingMetadata = meta
	return dashboard
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *reportService) GetDashboard(ctx context.Context, id uuid.UUID) (*domain.DashboardData, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.Status != domain.ReportStatusProcessed {
		dashboard := s.fmtr.EmptyDashboard()
		dashboard.ProcessingMetadata = &domain.ProcessingMetadata{
			ValidationSuccess: false,
			Error:             report.ProcessError,
			ModelUsed:         report.ModelUsed,
		}
		return dashboard, nil
	}

	var analysis map[string]interface{}
	if err := json.Unmarshal(report.Analysis, &analysis); err != nil {
		return nil, fmt.Errorf("decoding stored analysis: %w", err)
	}

	dashboard := s.fmtr.Dashboard(analysis)
	dashboard.ProcessingMetadata = &domain.ProcessingMetadata{
		ValidationSuccess: true,
		ModelUsed:         report.ModelUsed,
	}
	return dashboard, nil
}

func (s *reportService) List(ctx context.Context, offset, limit int) ([]domain.Report, int, error) {
	return s.reportRepo.List(ctx, offset, limit)
}

// GetTrends serves a test's history. With enough stored results the trend is
// real data; with a single data point the remaining months are synthesized
// around it.
func (s *reportService) GetTrends(ctx context.Context, testKey string) ([]domain.TrendPoint, error) {
	history, err := s.resultRepo.ListByTestKey(ctx, testKey, 24)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrUnknownTest
	}

	if len(history) < minTrendHistory {
		return s.fmtr.GenerateTrend(history[0].TestName, history[0].Value), nil
	}

	// history is newest-first; trends render oldest-first.
	points := make([]domain.TrendPoint, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		points = append(points, domain.TrendPoint{
			Date:     r.ResultDate,
			Value:    r.Value,
			TestName: r.TestName,
			Status:   r.Status,
		})
	}
	return points, nil
}

func (s *reportService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, report.S3Bucket, report.S3Key, s.s3cfg.PresignExpiry)
}

func (s *reportService) Export(ctx context.Context, id uuid.UUID, w io.Writer) (*domain.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportStatusProcessed {
		return nil, domain.ErrReportNotProcessed
	}

	results, err := s.resultRepo.ListByReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := export.Write(w, report, results); err != nil {
		return nil, fmt.Errorf("exporting report %s: %w", id, err)
	}
	return report, nil
}

func (s *reportService) Delete(ctx context.Context, id uuid.UUID) error {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, report.S3Bucket, report.S3Key); err != nil {
		log.Printf("reportService.Delete: S3 delete failed for report %s: %v", id, err)
	}
	if err := s.resultRepo.DeleteByReport(ctx, id); err != nil {
		return err
	}
	return s.reportRepo.Delete(ctx, id)
}
