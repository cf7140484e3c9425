package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/server"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/storage"
	"github.com/localnerve/gigcrew/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T, exportLimit int) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	store, err := storage.NewLocal(t.TempDir(), storage.NewSigner(testutil.Secret, time.Minute), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		DBType:          "sqlite",
		AuthMode:        config.AuthModeHMAC,
		JWTSecret:       testutil.Secret,
		ExportRateLimit: exportLimit,
	}
	app := server.New(server.Options{
		Config:    cfg,
		DB:        db,
		Verifier:  services.NewHMACVerifier(testutil.Secret, "", ""),
		Store:     store,
		Registry:  prometheus.NewRegistry(),
		AccessLog: io.Discard,
	})
	return &testServer{app: app, db: db}
}

// do sends a request and decodes a JSON response body into out when given.
func (s *testServer) do(t *testing.T, method, target, token string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

type errorBody struct {
	Status       int    `json:"status"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	VersionError bool   `json:"versionError"`
}

type sheetBody struct {
	Sheet struct {
		JobID   string `json:"jobId"`
		Version uint64 `json:"version"`
		Rows    []struct {
			RowID      string `json:"rowId"`
			OrderIndex int    `json:"orderIndex"`
			Label      string `json:"label"`
			Value      string `json:"value"`
		} `json:"rows"`
	} `json:"sheet"`
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	s := newTestServer(t, 0)

	var health services.HealthCheckResult
	resp := s.do(t, http.MethodGet, "/health", "", nil, &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Storage)
	assert.Equal(t, "local", health.Identity)

	var notFound errorBody
	resp = s.do(t, http.MethodGet, "/nowhere", "", nil, &notFound)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", notFound.Type)

	resp = s.do(t, http.MethodGet, "/metrics", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "http_requests_total")
}

func TestAuthAndVersionGates(t *testing.T) {
	s := newTestServer(t, 0)

	var body errorBody
	resp := s.do(t, http.MethodGet, "/api/v1/jobs", "", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "auth.unauthenticated", body.Type)

	resp = s.do(t, http.MethodGet, "/api/v1/jobs", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, "u-1", ""))
	req.Header.Set("X-Api-Version", "2")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var me struct {
		User services.MeResult `json:"user"`
	}
	resp = s.do(t, http.MethodGet, "/api/v1/me", testutil.Token(t, "u-1", "PM"), nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))
	assert.Equal(t, "u-1", me.User.UserID)
	require.NotNil(t, me.User.GlobalRole)
	assert.Equal(t, "PM", *me.User.GlobalRole)
}

func TestJobCreateAndRead(t *testing.T) {
	s := newTestServer(t, 0)
	adminToken := testutil.Token(t, "admin-1", "Admin")

	input := map[string]any{
		"reference": "J-100",
		"name":      "Arena Show",
		"startDate": "2026-05-01",
		"endDate":   "2026-05-03",
		"location":  "Arena",
	}
	var created struct {
		Job services.JobResult `json:"job"`
	}
	resp := s.do(t, http.MethodPost, "/api/v1/jobs", adminToken, input, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "J-100", created.Job.Reference)

	var conflict errorBody
	resp = s.do(t, http.MethodPost, "/api/v1/jobs", adminToken, input, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", conflict.Type)

	resp = s.do(t, http.MethodPost, "/api/v1/jobs", testutil.Token(t, "tech-1", ""), input, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var list struct {
		Jobs []services.JobResult `json:"jobs"`
	}
	resp = s.do(t, http.MethodGet, "/api/v1/jobs?q=arena", adminToken, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, created.Job.JobID, list.Jobs[0].JobID)

	resp = s.do(t, http.MethodGet, "/api/v1/jobs/"+created.Job.JobID, testutil.Token(t, "tech-1", ""), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPlugUpOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)
	job := testutil.CreateJob(t, s.db, "J-7")
	testutil.Assign(t, s.db, job.JobID, "tech-1", "Technician")
	techToken := testutil.Token(t, "tech-1", "")
	path := "/api/v1/jobs/" + job.JobID + "/paperwork/plugup"

	var sheet sheetBody
	resp := s.do(t, http.MethodGet, path, techToken, nil, &sheet)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(0), sheet.Sheet.Version)
	assert.Empty(t, sheet.Sheet.Rows)

	rows := map[string]any{
		"rows": []map[string]any{
			{"orderIndex": 1, "label": "Ch 2", "value": "Snare"},
			{"orderIndex": 0, "label": "Ch 1", "value": "Kick"},
		},
		"baseVersion": 0,
	}
	resp = s.do(t, http.MethodPatch, path, techToken, rows, &sheet)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint64(1), sheet.Sheet.Version)
	require.Len(t, sheet.Sheet.Rows, 2)
	assert.Equal(t, "Kick", sheet.Sheet.Rows[0].Value)

	var stale errorBody
	resp = s.do(t, http.MethodPatch, path, techToken, rows, &stale)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.True(t, stale.VersionError)

	var invalid errorBody
	resp = s.do(t, http.MethodPatch, path, techToken, map[string]any{"rows": []map[string]any{{"label": "no index"}}}, &invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", invalid.Type)

	var export services.PlugUpExportResult
	resp = s.do(t, http.MethodPost, path+"/export-pdf", techToken, nil, &export)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "plugup-J-7.pdf", export.FileName)
	assert.Equal(t, "application/pdf", export.ContentType)
	pdf, err := base64.StdEncoding.DecodeString(export.PDFBase64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	resp = s.do(t, http.MethodGet, path, testutil.Token(t, "stranger", ""), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/jobs/missing/paperwork/plugup", testutil.Token(t, "admin-1", "Admin"), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlugUpWriteRejectsMissingRows(t *testing.T) {
	s := newTestServer(t, 0)
	job := testutil.CreateJob(t, s.db, "J-9")
	token := testutil.Token(t, "admin-1", "Admin")
	path := "/api/v1/jobs/" + job.JobID + "/paperwork/plugup"

	seed := map[string]any{"rows": []map[string]any{{"orderIndex": 0, "label": "Ch 1", "value": "Kick"}}}
	resp := s.do(t, http.MethodPatch, path, token, seed, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bodies := map[string]any{
		"empty body":  nil,
		"no rows key": json.RawMessage(`{}`),
		"null rows":   json.RawMessage(`{"rows":null}`),
		"bare object": json.RawMessage(`{"rows":{"orderIndex":5}}`),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var bad errorBody
			resp := s.do(t, http.MethodPatch, path, token, body, &bad)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "validation", bad.Type)

			var sheet sheetBody
			resp = s.do(t, http.MethodGet, path, token, nil, &sheet)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Len(t, sheet.Sheet.Rows, 1)
			assert.Equal(t, "Kick", sheet.Sheet.Rows[0].Value)
			assert.Equal(t, uint64(1), sheet.Sheet.Version)
		})
	}

	var cleared sheetBody
	resp = s.do(t, http.MethodPatch, path, token, json.RawMessage(`{"rows":[]}`), &cleared)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, cleared.Sheet.Rows)
	assert.Equal(t, uint64(2), cleared.Sheet.Version)
}

func TestExportRateLimit(t *testing.T) {
	s := newTestServer(t, 1)
	job := testutil.CreateJob(t, s.db, "J-8")
	token := testutil.Token(t, "pm-1", "PM")
	path := "/api/v1/jobs/" + job.JobID + "/paperwork/plugup/export-pdf"

	resp := s.do(t, http.MethodPost, path, token, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var limited errorBody
	resp = s.do(t, http.MethodPost, path, token, nil, &limited)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate_limit", limited.Type)

	// Limits are per caller.
	resp = s.do(t, http.MethodPost, path, testutil.Token(t, "admin-1", "Admin"), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFileTransferRoundTrip(t *testing.T) {
	s := newTestServer(t, 0)
	job := testutil.CreateJob(t, s.db, "J-9")
	testutil.Assign(t, s.db, job.JobID, "senior-1", "SeniorTechnician")
	testutil.Assign(t, s.db, job.JobID, "tech-1", "Technician")
	filesPath := "/api/v1/jobs/" + job.JobID + "/files"

	var initiated services.InitiateUploadResult
	resp := s.do(t, http.MethodPost, filesPath+"/initiate-upload", testutil.Token(t, "senior-1", ""), map[string]any{
		"area":             "Shared",
		"category":         "Riders",
		"originalFileName": "rider.txt",
		"mimeType":         "text/plain",
		"sizeBytes":        5,
	}, &initiated)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, http.MethodPut, initiated.Upload.Method)

	req := httptest.NewRequest(http.MethodPut, initiated.Upload.URL, strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var download struct {
		Download storage.SignedURL `json:"download"`
	}
	resp = s.do(t, http.MethodGet, filesPath+"/"+initiated.File.FileID+"/download-url", testutil.Token(t, "tech-1", ""), nil, &download)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, download.Download.URL, "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "rider.txt")
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	// A download grant cannot be replayed as an upload.
	u, err := url.Parse(download.Download.URL)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPut, storage.UploadPath+"?"+u.RawQuery, strings.NewReader("evil"))
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, storage.DownloadPath, "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var list struct {
		Files []services.JobFileResult `json:"files"`
	}
	resp = s.do(t, http.MethodGet, filesPath, testutil.Token(t, "tech-1", ""), nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Files, 1)

	resp = s.do(t, http.MethodDelete, filesPath+"/"+initiated.File.FileID, testutil.Token(t, "pm-1", "PM"), nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, download.Download.URL, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var events struct {
		Events []services.AuditEventResult `json:"events"`
	}
	resp = s.do(t, http.MethodGet, "/api/v1/audit-events?jobId="+job.JobID, testutil.Token(t, "senior-1", ""), nil, &events)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, events.Events, 2)
	assert.Equal(t, "File deleted: rider.txt", events.Events[0].Summary)
}
