package jobqueue

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/platform/resilience"
)

const maxLoggedBody = 4096

var errPublishTransient = errors.New("qstash publish transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher hands internal jobs to Upstash QStash, which calls back the
// target endpoint with the internal job token forwarded.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	breaker          *resilience.CircuitBreaker
	logger           *logging.Logger
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		breaker:          resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:           logger.Named("qstash"),
	}
}

type publishRequest struct {
	publishURL      string
	targetURL       string
	path            string
	delay           string
	deduplicationID string
	body            []byte
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return errors.New("job path is required")
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return errors.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal job payload")
	}

	req := publishRequest{
		targetURL:       targetBaseURL + path,
		path:            path,
		delay:           normalizeDelay(delay),
		deduplicationID: strings.TrimSpace(deduplicationID),
		body:            body,
	}
	req.publishURL = baseURL + "/v2/publish/" + req.targetURL
	preview := p.curlPreview(req)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", req.targetURL),
			attribute.String("qstash.path", path),
			attribute.String("qstash.deduplication_id", req.deduplicationID),
			attribute.String("qstash.request_curl_preview", preview),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", path, "target_url", req.targetURL, "curl_preview", preview)

	send := func() error { return p.send(ctx, req, preview) }
	if err := p.breaker.Call(send, func(err error) bool { return errors.Is(err, errPublishTransient) }); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", req.delay, "deduplication_id", req.deduplicationID)
	return nil
}

func (p *QStashPublisher) send(ctx context.Context, req publishRequest, preview string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.publishURL, bytes.NewReader(req.body))
	if err != nil {
		return errors.Wrap(err, "create qstash request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		httpReq.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if req.delay != "0s" {
		httpReq.Header.Set("Upstash-Delay", req.delay)
	}
	if req.deduplicationID != "" {
		httpReq.Header.Set("Upstash-Deduplication-Id", req.deduplicationID)
	}
	if p.internalJobToken != "" {
		httpReq.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "publish qstash job target_url=%s", req.targetURL), errPublishTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		err := errors.Newf("publish qstash job status=%d target_url=%s body=%s curl=%s",
			resp.StatusCode, req.targetURL, strings.TrimSpace(string(raw)), preview)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return errors.Mark(err, errPublishTransient)
		}
		return err
	}
	return nil
}

// curlPreview renders an equivalent curl command with secrets masked.
func (p *QStashPublisher) curlPreview(req publishRequest) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	header := func(v string) {
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(v))
	}

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(req.publishURL))
	header("Authorization: Bearer ***")
	header("Content-Type: application/json")
	header("Upstash-Method: POST")
	if p.retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(p.retries))
	}
	if req.delay != "0s" {
		header("Upstash-Delay: " + req.delay)
	}
	if req.deduplicationID != "" {
		header("Upstash-Deduplication-Id: " + req.deduplicationID)
	}
	if p.internalJobToken != "" {
		header("Upstash-Forward-X-Internal-Job-Token: ***")
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(truncateForLog(string(req.body), maxLoggedBody)))
	return buf.String()
}

func normalizeDelay(delay time.Duration) string {
	seconds := int(delay.Round(time.Second).Seconds())
	if seconds <= 0 {
		return "0s"
	}
	return strconv.Itoa(seconds) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", errors.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", errors.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
