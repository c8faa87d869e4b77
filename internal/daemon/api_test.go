package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/beacon/internal/result"
)

type fakeSearcher struct {
	results []result.Result
	queries []string
}

func (f *fakeSearcher) Search(query string) []result.Result {
	f.queries = append(f.queries, query)
	return f.results
}

type fakeRecorder struct {
	names []string
	err   error
}

func (f *fakeRecorder) Record(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, name)
	return nil
}

type fakeActivator struct {
	activated []result.Result
	err       error
}

func (f *fakeActivator) Activate(_ context.Context, res result.Result) error {
	if f.err != nil {
		return f.err
	}
	f.activated = append(f.activated, res)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMux(t *testing.T, deps HandlerDependencies) *http.ServeMux {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = testLogger()
	}
	mux := http.NewServeMux()
	NewHandler(deps).RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleSearch(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: []result.Result{
		{Name: "Firefox", Target: "firefox", Kind: result.KindApp},
		{Name: "Files", Target: "nautilus", Kind: result.KindApp},
	}}
	mux := newTestMux(t, HandlerDependencies{Searcher: searcher})

	w := postJSON(t, mux, "/search", SearchRequest{Query: "fi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "Firefox", resp.Results[0].Name)
	assert.Equal(t, []string{"fi"}, searcher.queries)
}

func TestHandleSearchLimit(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: []result.Result{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	}}
	mux := newTestMux(t, HandlerDependencies{Searcher: searcher})

	w := postJSON(t, mux, "/search", SearchRequest{Query: "x", Limit: 2})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Total)
}

func TestHandleSearchEmptyResultsIsNotNull(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, HandlerDependencies{Searcher: &fakeSearcher{}})

	w := postJSON(t, mux, "/search", SearchRequest{Query: "zzz"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestHandleSearchInvalidBody(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, HandlerDependencies{Searcher: &fakeSearcher{}})

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestHandleActivateRecordsCatalogKinds(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	activator := &fakeActivator{}
	mux := newTestMux(t, HandlerDependencies{Recorder: recorder, Activator: activator})

	w := postJSON(t, mux, "/activate", ActivateRequest{Result: result.Result{
		Name: "Firefox", Target: "firefox", Kind: result.KindApp,
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ActivateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Recorded)
	assert.Equal(t, []string{"Firefox"}, recorder.names)
	require.Len(t, activator.activated, 1)
}

func TestHandleActivateSkipsRecordingForNonCatalogKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range []result.Kind{result.KindCalc, result.KindWeb, result.KindAction} {
		recorder := &fakeRecorder{}
		activator := &fakeActivator{}
		mux := newTestMux(t, HandlerDependencies{Recorder: recorder, Activator: activator})

		w := postJSON(t, mux, "/activate", ActivateRequest{Result: result.Result{
			Name: "row", Target: "t", Kind: kind,
		}})
		require.Equal(t, http.StatusOK, w.Code)

		var resp ActivateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Recorded, "kind %v", kind)
		assert.Empty(t, recorder.names)
		assert.Len(t, activator.activated, 1)
	}
}

func TestHandleActivateRecorderFailureStillLaunches(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{err: errors.New("db locked")}
	activator := &fakeActivator{}
	mux := newTestMux(t, HandlerDependencies{Recorder: recorder, Activator: activator})

	w := postJSON(t, mux, "/activate", ActivateRequest{Result: result.Result{
		Name: "Firefox", Target: "firefox", Kind: result.KindApp,
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ActivateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Recorded)
	assert.Len(t, activator.activated, 1)
}

func TestHandleActivateLaunchFailure(t *testing.T) {
	t.Parallel()

	activator := &fakeActivator{err: errors.New("exec: not found")}
	mux := newTestMux(t, HandlerDependencies{Activator: activator})

	w := postJSON(t, mux, "/activate", ActivateRequest{Result: result.Result{
		Name: "Ghost", Target: "ghost", Kind: result.KindApp,
	}})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "activate_failed", resp.Error)
}

func TestHandleActivateLaunchFailureRecordsNothing(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	activator := &fakeActivator{err: errors.New("exec: not found")}
	mux := newTestMux(t, HandlerDependencies{Recorder: recorder, Activator: activator})

	w := postJSON(t, mux, "/activate", ActivateRequest{Result: result.Result{
		Name: "Ghost", Target: "ghost", Kind: result.KindApp,
	}})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, recorder.names, "failed launch must not bump the usage count")
}

func TestHandleActivateMissingResult(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, HandlerDependencies{Activator: &fakeActivator{}})

	w := postJSON(t, mux, "/activate", ActivateRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRefresh(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, HandlerDependencies{
		RefreshFn: func(context.Context) (int, error) { return 42, nil },
	})

	w := postJSON(t, mux, "/refresh", struct{}{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp RefreshResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 42, resp.Entries)
}

func TestHandleRefreshFailure(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, HandlerDependencies{
		RefreshFn: func(context.Context) (int, error) { return 0, errors.New("scan failed") },
	})

	w := postJSON(t, mux, "/refresh", struct{}{})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, HandlerDependencies{
		Status: func() StatusResponse {
			return StatusResponse{Version: "test", PID: 123, CatalogSize: 7}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 7, resp.CatalogSize)
}

func TestHandlersTouchActivity(t *testing.T) {
	t.Parallel()

	touched := 0
	mux := newTestMux(t, HandlerDependencies{
		Searcher:   &fakeSearcher{},
		OnActivity: func() { touched++ },
	})

	postJSON(t, mux, "/search", SearchRequest{Query: "a"})
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 2, touched)
}
