package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sentiment-scoop/internal/llm"
)

func testRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/"))
	return r
}

func TestAnalyzeRequiresVideoID(t *testing.T) {
	svc := newService(&fakeComments{}, &fakeLLM{})
	r := testRouter(svc)

	for _, body := range []string{`{}`, `{"videoId":""}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.Code)
		}
		var payload map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if payload["error"] != "videoId is required" {
			t.Fatalf("unexpected error body: %v", payload)
		}
	}
}

func TestAnalyzeReturnsContractShape(t *testing.T) {
	comments := &fakeComments{comments: []string{"a", "b"}, count: 99}
	classifier := &fakeLLM{result: llm.Classification{
		Positive:    bucket(2, "p"),
		MostHelpful: []string{"helpful"},
		Summary:     "all good",
	}}
	r := testRouter(newService(comments, classifier))

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"videoId":"abc123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"summary", "verdict", "real_total_comments", "most_helpful_comments", "comments_data", "created_at"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing response field: %s", key)
		}
	}
	if payload["summary"] != "all good" {
		t.Fatalf("unexpected summary: %v", payload["summary"])
	}
	if payload["verdict"] != float64(2) {
		t.Fatalf("unexpected verdict: %v", payload["verdict"])
	}
}

func TestAnalyzeUpstreamFailureIs500(t *testing.T) {
	comments := &fakeComments{comments: []string{"a"}}
	classifier := &fakeLLM{err: llm.ErrNotImplemented}
	r := testRouter(newService(comments, classifier))

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"videoId":"abc123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != "Sentiment analysis failed" {
		t.Fatalf("unexpected error body: %v", payload)
	}
}

func TestLookupReturnsStoredAnalysis(t *testing.T) {
	svc := newService(&fakeComments{}, &fakeLLM{})
	stored := Analysis{
		VideoID:      "abc123",
		Summary:      "stored",
		Verdict:      1,
		MostHelpful:  []string{},
		CommentsData: []int{5, 3, 1, 1},
		CreatedAt:    time.Now().UTC(),
	}
	if err := svc.Repo.Upsert(context.Background(), stored); err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	r := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/sentiment/abc123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload Analysis
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Summary != "stored" || payload.Verdict != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestLookupMissReturnsNoResults(t *testing.T) {
	r := testRouter(newService(&fakeComments{}, &fakeLLM{}))

	req := httptest.NewRequest(http.MethodGet, "/sentiment/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != "No results found." {
		t.Fatalf("unexpected error body: %v", payload)
	}
}
