package jobqueue

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/platform/resilience"
)

func TestQStashPublisher_Enqueue(t *testing.T) {
	t.Parallel()

	var gotPath, gotBody string
	headers := http.Header{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		headers = r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://api.example.com",
		Retries:          3,
		InternalJobToken: "job-secret",
	}, logging.NewNop())

	err := publisher.Enqueue(t.Context(), "api/internal/jobs/recalculate-elo",
		map[string]string{"season": "Q1-2026"}, 90*time.Second, "recalculate-elo-Q1-2026-29000000")
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if !strings.HasSuffix(gotPath, "/v2/publish/https://api.example.com/api/internal/jobs/recalculate-elo") &&
		!strings.HasSuffix(gotPath, "/v2/publish/https:/api.example.com/api/internal/jobs/recalculate-elo") {
		t.Fatalf("unexpected publish path: %s", gotPath)
	}
	if gotBody != `{"season":"Q1-2026"}` {
		t.Fatalf("unexpected body: %s", gotBody)
	}
	if headers.Get("Authorization") != "Bearer qstash-token" {
		t.Fatalf("unexpected authorization header: %s", headers.Get("Authorization"))
	}
	if headers.Get("Upstash-Retries") != "3" || headers.Get("Upstash-Delay") != "90s" {
		t.Fatalf("unexpected upstash headers: %v", headers)
	}
	if headers.Get("Upstash-Deduplication-Id") != "recalculate-elo-Q1-2026-29000000" {
		t.Fatalf("unexpected dedup header: %s", headers.Get("Upstash-Deduplication-Id"))
	}
	if headers.Get("Upstash-Forward-X-Internal-Job-Token") != "job-secret" {
		t.Fatalf("expected forwarded job token")
	}
}

func TestQStashPublisher_EnqueueFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid destination"}`))
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{BaseURL: srv.URL, TargetBaseURL: "https://api.example.com"}, logging.NewNop())
	err := publisher.Enqueue(t.Context(), "/jobs/x", nil, 0, "")
	if err == nil || !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("expected status error, got %v", err)
	}

	if err := publisher.Enqueue(t.Context(), " ", nil, 0, ""); err == nil {
		t.Fatalf("expected error for empty path")
	}

	bad := NewQStashPublisher(QStashPublisherConfig{BaseURL: "ftp://qstash", TargetBaseURL: "https://api.example.com"}, logging.NewNop())
	if err := bad.Enqueue(t.Context(), "/jobs/x", nil, 0, ""); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestQStashPublisher_CircuitOpensOnUpstreamErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       srv.URL,
		TargetBaseURL: "https://api.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	for range 2 {
		if err := publisher.Enqueue(t.Context(), "/jobs/x", nil, 0, ""); err == nil {
			t.Fatalf("expected upstream error")
		}
	}
	err := publisher.Enqueue(t.Context(), "/jobs/x", nil, 0, "")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls.Load())
	}
}

func TestQStashPublisher_CurlPreviewMasksSecrets(t *testing.T) {
	t.Parallel()

	publisher := NewQStashPublisher(QStashPublisherConfig{Token: "secret", InternalJobToken: "job-secret"}, logging.NewNop())
	preview := publisher.curlPreview(publishRequest{
		publishURL: "https://qstash.example/v2/publish/https://api.example.com/x",
		delay:      "0s",
		body:       []byte(`{"season":"it's"}`),
	})

	if strings.Contains(preview, "secret") {
		t.Fatalf("preview leaked a secret: %s", preview)
	}
	if !strings.Contains(preview, `'{"season":"it'"'"'s"}'`) {
		t.Fatalf("expected shell-quoted body, got %s", preview)
	}
}

func TestNormalizeDelay(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]string{
		0:                       "0s",
		-time.Second:            "0s",
		1500 * time.Millisecond: "2s",
		time.Minute:             "60s",
	}
	for in, want := range cases {
		if got := normalizeDelay(in); got != want {
			t.Fatalf("normalizeDelay(%s): expected %s, got %s", in, want, got)
		}
	}
}
