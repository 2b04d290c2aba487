package routing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"route-assignment-service/internal/platform/metrics"
	"strings"
	"time"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Thin HTTP session shared by the solver and routing engine clients.
// Requests are issued once; callers decide how failures are classified.
type httpSession struct {
	client  *http.Client
	service string
}

func newHTTPSession(service string, timeout time.Duration) *httpSession {
	return &httpSession{
		client:  &http.Client{Timeout: timeout},
		service: service,
	}
}

func (s *httpSession) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
	contentType string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// do sends req and turns non-2xx answers into *httpStatusError.
func (s *httpSession) do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		s.observe(start, "transport_error")
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		s.observe(start, "http_error")
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}

	s.observe(start, "ok")
	return resp, nil
}

func (s *httpSession) observe(start time.Time, result string) {
	metrics.ExternalCallDuration.WithLabelValues(s.service, result).Observe(time.Since(start).Seconds())
}
