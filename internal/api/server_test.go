package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/http/response"
	"github.com/alibiapp/alibi-server/internal/llm"
	"github.com/alibiapp/alibi-server/internal/ratelimit"
	"github.com/alibiapp/alibi-server/internal/search"
	"github.com/alibiapp/alibi-server/internal/service"
	"github.com/alibiapp/alibi-server/internal/store/sqlite"
)

// fakeGenerator is a scripted service.Generator for API tests.
type fakeGenerator struct {
	result llm.Result
	err    error
}

func (f *fakeGenerator) Generate(context.Context, llm.GenerateRequest) (llm.Result, error) {
	return f.result, f.err
}

func (f *fakeGenerator) Adjust(context.Context, llm.AdjustRequest) (llm.Result, error) {
	return f.result, f.err
}

func (f *fakeGenerator) Ultimate(context.Context) (llm.Result, error) {
	return f.result, f.err
}

// setupTestServer creates a test server with real storage and search in a
// temp directory, a scripted generator, and no rate limiter.
func setupTestServer(t *testing.T, gen service.Generator) (*Server, func()) {
	t.Helper()
	return setupTestServerWithLimiter(t, gen, nil)
}

func setupTestServerWithLimiter(t *testing.T, gen service.Generator, limiter *ratelimit.KeyedRateLimiter) (*Server, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "alibi-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	cat, err := catalog.Load(logger, catalog.EmbeddedSources()...)
	require.NoError(t, err)

	idx, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)

	excuseService := service.NewExcuseService(st, cat, gen, idx, logger)
	ratingService := service.NewRatingService(st, logger)
	favoriteService := service.NewFavoriteService(st, logger)

	server := NewServer(excuseService, ratingService, favoriteService, limiter, nil, logger)

	cleanup := func() {
		_ = idx.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return server, cleanup
}

// doRequest executes a request against the server and returns the recorder.
func doRequest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// doRequestRaw executes a pre-built request against the server.
func doRequestRaw(t *testing.T, server *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals the response envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// decodeData re-marshals the envelope's data field into a typed target.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()

	envelope := decodeEnvelope(t, w)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}

func TestHealthCheck(t *testing.T) {
	server, cleanup := setupTestServer(t, &fakeGenerator{})
	defer cleanup()

	w := doRequest(t, server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
}

func TestEnvelopeShape(t *testing.T) {
	server, cleanup := setupTestServer(t, &fakeGenerator{})
	defer cleanup()

	// Success responses carry data and no error.
	w := doRequest(t, server, http.MethodGet, "/health", nil)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
	assert.Empty(t, envelope.Error)

	// Error responses carry an error message and no data.
	w = doRequest(t, server, http.MethodGet, "/api/excuses/missing-id/rating", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	envelope = decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)
	assert.Nil(t, envelope.Data)
}

func TestRateLimit_GenerationEndpoints(t *testing.T) {
	limiter := ratelimit.New(0.01, 1) // one request, then a long wait
	defer limiter.Stop()

	gen := &fakeGenerator{result: llm.Result{Excuse: "ok", BelievabilityRating: 50}}
	server, cleanup := setupTestServerWithLimiter(t, gen, limiter)
	defer cleanup()

	body := GenerateRequest{Situation: "Late to work", Tone: "funny", Length: "short"}

	w := doRequest(t, server, http.MethodPost, "/api/excuses/generate", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, server, http.MethodPost, "/api/excuses/generate", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Non-generation endpoints are not limited.
	w = doRequest(t, server, http.MethodGet, "/api/excuses/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
