package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"labvista/internal/service"
)

// ReportHandler handles lab report upload, dashboard, and export endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Upload handles POST /api/v1/reports. The uploaded PDF is stored, analyzed,
// and the resulting dashboard payload is returned in one round trip.
func (h *ReportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	report, dashboard, err := h.reportService.Upload(c.Request.Context(), service.ReportUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{
		"report":    report,
		"dashboard": dashboard,
	})
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	reports, total, err := h.reportService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, reports, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// Dashboard handles GET /api/v1/reports/:id/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dashboard, err := h.reportService.GetDashboard(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, dashboard)
}

// Download handles GET /api/v1/reports/:id/download
func (h *ReportHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := h.reportService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Export handles GET /api/v1/reports/:id/export and streams an XLSX workbook.
func (h *ReportHandler) Export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.xlsx"`, id))

	if _, err := h.reportService.Export(c.Request.Context(), id, c.Writer); err != nil {
		c.Header("Content-Disposition", "")
		HandleError(c, err)
		return
	}
}

// Delete handles DELETE /api/v1/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": id})
}

// Trends handles GET /api/v1/trends/:testKey
func (h *ReportHandler) Trends(c *gin.Context) {
	testKey := c.Param("testKey")
	if testKey == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_TEST_KEY", "testKey path parameter is required")
		return
	}

	points, err := h.reportService.GetTrends(c.Request.Context(), testKey)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, points)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report id")
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
