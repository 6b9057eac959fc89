package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onefin/server/internal/export"
	"github.com/onefin/server/internal/middleware"
	"github.com/onefin/server/internal/models"
	"github.com/onefin/server/internal/services"
)

// MockExportService - мок для services.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(
	ctx context.Context, userID int64, req models.ExportRequest,
) (*services.ExportResult, error) {
	args := m.Called(ctx, userID, req)
	if result, ok := args.Get(0).(*services.ExportResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

// exportRequest собирает аутентифицированный запрос экспорта.
func exportRequest(t *testing.T, userID int64, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestExportHandler_Export_Success(t *testing.T) {
	svc := new(MockExportService)
	h := NewExportHandler(svc)

	svc.On("Export", mock.Anything, int64(7), models.ExportRequest{
		DataSets: []models.DatasetSubject{{Dataset: "one_cashflow", Subject: "income"}},
		Format:   "csv",
	}).Return(&services.ExportResult{
		Data:        []byte("csv-data"),
		ContentType: "text/csv; charset=utf-8",
		FileName:    "export.csv",
	}, nil)

	rr := httptest.NewRecorder()
	body := `{"dataSets":[{"dataset":"one_cashflow","subject":"income"}],"format":"csv"}`
	h.Export(rr, exportRequest(t, 7, body))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="export.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "csv-data", rr.Body.String())
	svc.AssertExpectations(t)
}

func TestExportHandler_Export_NoDataIs404(t *testing.T) {
	svc := new(MockExportService)
	h := NewExportHandler(svc)

	svc.On("Export", mock.Anything, int64(7), mock.Anything).Return(nil, services.ErrNoData)

	rr := httptest.NewRecorder()
	body := `{"dataSets":[{"dataset":"one_cashflow","subject":"income"}],"format":"csv"}`
	h.Export(rr, exportRequest(t, 7, body))

	require.Equal(t, http.StatusNotFound, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestExportHandler_Export_UnsupportedFormatIs400(t *testing.T) {
	svc := new(MockExportService)
	h := NewExportHandler(svc)

	svc.On("Export", mock.Anything, int64(7), mock.Anything).
		Return(nil, export.ErrUnsupportedFormat)

	rr := httptest.NewRecorder()
	body := `{"dataSets":[{"dataset":"one_cashflow","subject":"income"}],"format":"xml"}`
	h.Export(rr, exportRequest(t, 7, body))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportHandler_Export_Unauthenticated(t *testing.T) {
	h := NewExportHandler(new(MockExportService))

	rr := httptest.NewRecorder()
	h.Export(rr, exportRequest(t, 0, `{"format":"csv"}`))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestExportHandler_Export_BadBody(t *testing.T) {
	h := NewExportHandler(new(MockExportService))

	rr := httptest.NewRecorder()
	h.Export(rr, exportRequest(t, 7, `не json`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
