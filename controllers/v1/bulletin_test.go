package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/service"
)

const testToken = "s3cret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct {
	runFn func(ctx context.Context) (service.Summary, error)
}

func (f *fakeRunner) Run(ctx context.Context) (service.Summary, error) {
	return f.runFn(ctx)
}

type fakeRunLister struct {
	gotLimit int
	runs     []models.RunRecord
	err      error
}

func (f *fakeRunLister) Recent(_ context.Context, limit int) ([]models.RunRecord, error) {
	f.gotLimit = limit
	return f.runs, f.err
}

func newTestRouter(t *testing.T, runner Runner, history RunLister) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	ctl := NewBulletinController(runner, history, dir, testToken, zap.NewNop())
	return NewRouter(ctl, []string{"https://script.google.com"}), dir
}

func doRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	id := uuid.New()
	runner := &fakeRunner{runFn: func(context.Context) (service.Summary, error) {
		return service.Summary{RunID: id, Slug: "20260222", Status: models.RunStatusIssues, Issues: []string{"Venue is missing"}}, nil
	}}
	r, _ := newTestRouter(t, runner, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/generate", testToken)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		RunID  string   `json:"run_id"`
		Slug   string   `json:"slug"`
		Status string   `json:"status"`
		Issues []string `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body.RunID)
	assert.Equal(t, "20260222", body.Slug)
	assert.Equal(t, "issues", body.Status)
	assert.Equal(t, []string{"Venue is missing"}, body.Issues)
}

func TestGenerate_Unauthorized(t *testing.T) {
	called := false
	runner := &fakeRunner{runFn: func(context.Context) (service.Summary, error) {
		called = true
		return service.Summary{}, nil
	}}
	r, _ := newTestRouter(t, runner, nil)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, "/api/v1/generate", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, "/api/v1/generate", "wrong").Code)
	assert.False(t, called)
}

func TestGenerate_RunError(t *testing.T) {
	runner := &fakeRunner{runFn: func(context.Context) (service.Summary, error) {
		return service.Summary{Status: models.RunStatusFailed}, errors.New("fetch bulletin tabs: permission denied")
	}}
	r, _ := newTestRouter(t, runner, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/generate", testToken)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "permission denied")
}

func TestGenerate_ConflictWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	runner := &fakeRunner{runFn: func(context.Context) (service.Summary, error) {
		close(started)
		<-release
		return service.Summary{Status: models.RunStatusSuccess}, nil
	}}
	r, _ := newTestRouter(t, runner, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var first *httptest.ResponseRecorder
	go func() {
		defer wg.Done()
		first = doRequest(r, http.MethodPost, "/api/v1/generate", testToken)
	}()
	<-started

	second := doRequest(r, http.MethodPost, "/api/v1/generate", testToken)
	close(release)
	wg.Wait()

	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestGetRuns(t *testing.T) {
	history := &fakeRunLister{runs: []models.RunRecord{{ID: uuid.New(), Status: models.RunStatusSuccess}}}
	r, _ := newTestRouter(t, nil, history)

	w := doRequest(r, http.MethodGet, "/api/v1/runs?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, history.gotLimit)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = doRequest(r, http.MethodGet, "/api/v1/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, history.gotLimit)

	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v1/runs?limit=abc", "").Code)
}

func TestGetRuns_NotConfigured(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodGet, "/api/v1/runs", "").Code)
}

func TestGetBulletinsAndStatic(t *testing.T) {
	r, dir := newTestRouter(t, nil, nil)
	older := time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	for name, mtime := range map[string]time.Time{
		"bulletin-20260215.html": older,
		"bulletin-20260222.html": newer,
		"notes.txt":              newer,
	} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("<html>"+name+"</html>"), 0o644))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
	}

	w := doRequest(r, http.MethodGet, "/api/v1/bulletins", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Bulletins []bulletinFile `json:"bulletins"`
		Count     int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "bulletin-20260222.html", body.Bulletins[0].Name)
	assert.Equal(t, "/bulletins/bulletin-20260215.html", body.Bulletins[1].URL)

	w = doRequest(r, http.MethodGet, "/bulletins/bulletin-20260222.html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "bulletin-20260222.html"))
}

func TestNewRouter_EmptyOriginsUseDefault(t *testing.T) {
	ctl := NewBulletinController(&fakeRunner{}, nil, t.TempDir(), testToken, zap.NewNop())

	var r *gin.Engine
	require.NotPanics(t, func() { r = NewRouter(ctl, nil) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/generate", nil)
	req.Header.Set("Origin", "https://script.google.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://script.google.com", w.Header().Get("Access-Control-Allow-Origin"))
}
