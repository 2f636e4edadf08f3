package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/config"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
	"github.com/steamtestpanel/steam-test-panel/internal/metrics"
	"github.com/steamtestpanel/steam-test-panel/internal/store"
	"github.com/steamtestpanel/steam-test-panel/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	dc := &connector.DatabaseConnector{DB: mockDB, Database: "panel", Logger: logger}
	srv := NewServer(
		store.New(dc, logger),
		transfer.NewExporter(dc, logger),
		transfer.NewImporter(dc, logger),
		metrics.New(),
		config.Default(),
		logger,
	)
	return srv.SetupRoutes(), mock
}

func multipartUpload(t *testing.T, filename, content, mode string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("import_mode", mode))
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestExportEndpointServesAttachment(t *testing.T) {
	handler, mock := newTestServer(t)

	mock.ExpectQuery("SELECT * FROM `test_results` WHERE `test_key` IN ('3', '5a')").
		WillReturnRows(sqlmock.NewRows([]string{"report_id", "test_key", "result"}).
			AddRow(int64(1), "3", "pass"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/export",
		strings.NewReader(`{"tests": ["3", "5a"]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/sql", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".sql")
	assert.Contains(t, rec.Body.String(), "REPLACE INTO `test_results`")
	assert.Contains(t, rec.Body.String(), "SET FOREIGN_KEY_CHECKS=0;")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportEndpointRejectsMalformedSelection(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/export",
		strings.NewReader(`{"tests": [true]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed selection")
}

func TestExportEndpointRejectsEmptySelection(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/export", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportEndpointRejectsNonSQLFile(t *testing.T) {
	handler, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "dump.txt", "SELECT 1;", "full")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only .sql files are accepted.")
}

func TestImportEndpointRejectsEmptyFile(t *testing.T) {
	handler, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "dump.sql", "", "full")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty")
}

func TestImportEndpointRejectsUnknownMode(t *testing.T) {
	handler, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "dump.sql", "SELECT 1;", "everything")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown import mode")
}

func TestImportEndpointDataOnlySkipsDDL(t *testing.T) {
	handler, mock := newTestServer(t)

	// Only the INSERT is executed; the DROP is skipped in data_only mode.
	// Auto-increment repair queries afterwards fail and are skipped.
	mock.ExpectExec("INSERT INTO x (id) VALUES (1)").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, contentType := multipartUpload(t, "dump.sql", "DROP TABLE x; INSERT INTO x (id) VALUES (1);", "data_only")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"executed":1`)
	assert.Contains(t, rec.Body.String(), `"skipped":1`)

	assert.NoError(t, mock.ExpectationsWereMet())
}
