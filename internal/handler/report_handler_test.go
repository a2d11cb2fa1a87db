package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labvista/internal/domain"
	"labvista/internal/handler"
	"labvista/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestReportHandler_Upload_Success(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	reportID := uuid.New()
	mockSvc.On("Upload", mock.Anything, mock.AnythingOfType("service.ReportUploadInput")).
		Return(&domain.Report{
			ID:           reportID,
			OriginalName: "cbc.pdf",
			Status:       domain.ReportStatusProcessed,
		}, &domain.DashboardData{
			PatientInfo: domain.PatientInfo{ID: "p1", Name: "Jane Doe"},
		}, nil)

	body, contentType := multipartBody(t, "cbc.pdf", []byte("%PDF-1.4 test content"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.NotNil(t, data["report"])
	assert.NotNil(t, data["dashboard"])
	mockSvc.AssertExpectations(t)
}

func TestReportHandler_Upload_NoFile(t *testing.T) {
	h := handler.NewReportHandler(new(mocks.MockReportService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewBuffer(nil))
	c.Request.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
}

func TestReportHandler_Upload_UnsupportedType(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	mockSvc.On("Upload", mock.Anything, mock.AnythingOfType("service.ReportUploadInput")).
		Return(nil, nil, domain.ErrUnsupportedFileType)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestReportHandler_Dashboard_Success(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	id := uuid.New()
	mockSvc.On("GetDashboard", mock.Anything, id).Return(&domain.DashboardData{
		PatientInfo: domain.PatientInfo{ID: "p1", Name: "Jane Doe"},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Dashboard(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	patient := data["patientInfo"].(map[string]interface{})
	assert.Equal(t, "Jane Doe", patient["name"])
}

func TestReportHandler_Dashboard_InvalidID(t *testing.T) {
	h := handler.NewReportHandler(new(mocks.MockReportService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/not-a-uuid/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Dashboard(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Dashboard_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	id := uuid.New()
	mockSvc.On("GetDashboard", mock.Anything, id).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/dashboard", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Dashboard(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_List_Pagination(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	mockSvc.On("List", mock.Anything, 0, 20).Return([]domain.Report{
		{ID: uuid.New(), OriginalName: "a.pdf"},
		{ID: uuid.New(), OriginalName: "b.pdf"},
	}, 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
}

func TestReportHandler_Trends_Success(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	mockSvc.On("GetTrends", mock.Anything, "hemoglobin").Return([]domain.TrendPoint{
		{Date: "2025-01", Value: 13.2, TestName: "Hemoglobin", Status: domain.ResultStatusNormal},
		{Date: "2025-02", Value: 13.5, TestName: "Hemoglobin", Status: domain.ResultStatusNormal},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/trends/hemoglobin", nil)
	c.Params = gin.Params{{Key: "testKey", Value: "hemoglobin"}}

	h.Trends(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	points := resp.Data.([]interface{})
	assert.Len(t, points, 2)
}

func TestReportHandler_Trends_Unknown(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	mockSvc.On("GetTrends", mock.Anything, "nosuchtest").Return(nil, domain.ErrUnknownTest)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/trends/nosuchtest", nil)
	c.Params = gin.Params{{Key: "testKey", Value: "nosuchtest"}}

	h.Trends(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN_TEST", resp.Error.Code)
}

func TestReportHandler_Download_Success(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	id := uuid.New()
	mockSvc.On("GetDownloadURL", mock.Anything, id).Return("https://signed.example/cbc.pdf", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/download", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "https://signed.example/cbc.pdf", data["url"])
}

func TestReportHandler_Delete_Success(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	id := uuid.New()
	mockSvc.On("Delete", mock.Anything, id).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/reports/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestReportHandler_Export_NotProcessed(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewReportHandler(mockSvc)

	id := uuid.New()
	mockSvc.On("Export", mock.Anything, id, mock.Anything).Return(nil, domain.ErrReportNotProcessed)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/export", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
