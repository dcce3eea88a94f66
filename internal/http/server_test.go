package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolsignal/rankd/internal/ranking"
)

type stubSearcher struct {
	searchResp  *ranking.SearchResponse
	searchErr   error
	explainResp *ranking.Explanation
	explainErr  error
}

func (s *stubSearcher) Search(context.Context, *ranking.SearchRequest) (*ranking.SearchResponse, error) {
	return s.searchResp, s.searchErr
}

func (s *stubSearcher) Explain(context.Context, string, float64) (*ranking.Explanation, error) {
	return s.explainResp, s.explainErr
}

func newTestServer(t *testing.T, searcher Searcher) *Server {
	t.Helper()
	srv, err := NewServer(searcher, zap.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(nil, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(&stubSearcher{}, nil, nil)
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleSearch(t *testing.T) {
	resp := &ranking.SearchResponse{
		Intent:              ranking.IntentDistrictSearch,
		ConfidenceThreshold: 0.6,
		Districts: []ranking.RankedResult{
			{DistrictID: "tx-001", Name: "Austin ISD", Composite: 8.4},
		},
		GeneratedAt: time.Now().UTC(),
	}
	srv := newTestServer(t, &stubSearcher{searchResp: resp})

	body := `{"prompt": "large districts in TX"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	req.Header.Set(echoContentType, echoJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got ranking.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Districts, 1)
	assert.Equal(t, "tx-001", got.Districts[0].DistrictID)
}

func TestHandleSearchValidation(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"prompt": ""}`))
	req.Header.Set(echoContentType, echoJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearchUpstreamUnavailable(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{searchErr: ranking.ErrRankingUnavailable})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"prompt": "anything"}`))
	req.Header.Set(echoContentType, echoJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleSearchEmptyResultIsOK(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{searchResp: &ranking.SearchResponse{
		Intent:    ranking.IntentDistrictSearch,
		Districts: []ranking.RankedResult{},
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"prompt": "nothing matches"}`))
	req.Header.Set(echoContentType, echoJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleExplanation(t *testing.T) {
	exp := &ranking.Explanation{
		Confidence: 0.8,
		Band:       ranking.BandHigh,
		Summary:    "Strong readiness for change signals.",
	}
	srv := newTestServer(t, &stubSearcher{explainResp: exp})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/districts/tx-001/explanation",
		strings.NewReader(`{"confidence_threshold": 0.7}`))
	req.Header.Set(echoContentType, echoJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"band":"high"`)
}

func TestHandleExplanationNotFound(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{explainErr: ranking.ErrDistrictNotFound})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/districts/absent/explanation",
		strings.NewReader(`{}`))
	req.Header.Set(echoContentType, echoJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

const (
	echoContentType = "Content-Type"
	echoJSON        = "application/json"
)
