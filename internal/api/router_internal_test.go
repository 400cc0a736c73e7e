package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"newsbrief/internal/domain"
	"newsbrief/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSummarizer struct {
	mu     sync.Mutex
	calls  int
	last   domain.SummaryRequest
	points []string
	err    error
}

func (s *stubSummarizer) Summarize(_ context.Context, req domain.SummaryRequest) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.last = req

	return s.points, s.err
}

func newTestRouter(s Summarizer) (*gin.Engine, *prometheus.Registry) {
	reg := prometheus.NewRegistry()

	return NewRouter(s, reg, metrics.New(reg), slog.Default()), reg
}

func postSummary(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, SummaryRoute, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestSummaryReturnsPoints(t *testing.T) {
	s := &stubSummarizer{points: []string{"P1", "P2", "P3"}}
	r, _ := newTestRouter(s)

	w := postSummary(r, `{"url":"https://example.com/a","title":"T","description":"D","content":"C"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var got []string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if !slices.Equal(got, s.points) {
		t.Fatalf("got %q want %q", got, s.points)
	}

	want := domain.SummaryRequest{URL: "https://example.com/a", Title: "T", Description: "D", Content: "C"}
	if s.last != want {
		t.Fatalf("unexpected request: %+v", s.last)
	}
}

func TestSummaryMissingURL(t *testing.T) {
	s := &stubSummarizer{err: fmt.Errorf("%w: url is required", domain.ErrInvalidRequest)}
	r, _ := newTestRouter(s)

	w := postSummary(r, `{"title":"T"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	if strings.TrimSpace(w.Body.String()) != `{"msg":"URL is required"}` {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSummaryInvalidJSON(t *testing.T) {
	s := &stubSummarizer{}
	r, _ := newTestRouter(s)

	w := postSummary(r, `{"url":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	if s.calls != 0 {
		t.Fatalf("expected summarizer not to be called")
	}
}

func TestSummaryGenerationFailure(t *testing.T) {
	s := &stubSummarizer{err: fmt.Errorf("%w: timeout", domain.ErrGenerationFailed)}
	r, _ := newTestRouter(s)

	w := postSummary(r, `{"url":"https://example.com/a"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body["msg"] != "Failed to generate summary" || !strings.Contains(body["error"], "timeout") {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSummaryUnexpectedError(t *testing.T) {
	s := &stubSummarizer{err: errors.New("boom")}
	r, _ := newTestRouter(s)

	if w := postSummary(r, `{"url":"https://example.com/a"}`); w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(&stubSummarizer{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
}

func TestMetricsEndpointExposesRequestHistogram(t *testing.T) {
	r, _ := newTestRouter(&stubSummarizer{points: []string{"P1"}})

	postSummary(r, `{"url":"https://example.com/a"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), `newsbrief_http_request_duration_seconds_count{method="POST",route="/api/ai/summary",status="200"} 1`) {
		t.Fatalf("expected request histogram in metrics output:\n%s", w.Body.String())
	}
}

func TestServerShutsDownOnContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	r, _ := newTestRouter(&stubSummarizer{})
	s := NewServer(ln.Addr().String(), r, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.serve(ctx, ln) }()

	var resp *http.Response
	for range 50 {
		resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server did not respond: %v", err)
	}
	_ = resp.Body.Close()

	cancel()

	select {
	case err = <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
}
