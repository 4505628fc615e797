package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response body is kept in the error.
const maxErrorBody = 512

// Doer issues an outbound HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is a provider-agnostic outbound call.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is the status and fully read body of an outbound call.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Transport executes requests for one provider and normalizes failures.
type Transport struct {
	provider string
	doer     Doer
}

// NewTransport creates a transport for provider. A nil doer falls back to
// an HTTP client with default timeouts.
func NewTransport(provider string, doer Doer) *Transport {
	if doer == nil {
		doer = NewHTTPClient(30 * time.Second)
	}
	return &Transport{provider: provider, doer: doer}
}

// Do sends req. The context carries the caller-supplied timeout.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &TransportError{Provider: t.provider, Err: fmt.Errorf("build request: %w", err)}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.doer.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Provider: t.provider, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Provider: t.provider, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status := resp.Status
		if status == "" {
			status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if excerpt := strings.TrimSpace(string(data)); excerpt != "" {
			if len(excerpt) > maxErrorBody {
				excerpt = excerpt[:maxErrorBody]
			}
			status += ": " + excerpt
		}
		return nil, &TransportError{Provider: t.provider, StatusCode: resp.StatusCode, Status: status}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Push sends an outbound update and reports whether the channel accepted it.
// Transport failures are logged and swallowed.
func (t *Transport) Push(ctx context.Context, req Request, logger *zap.Logger) bool {
	if _, err := t.Do(ctx, req); err != nil {
		logger.Warn("Channel push rejected",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Error(err))
		return false
	}
	return true
}

// NewHTTPClient returns an HTTP client whose dial, TLS and header timeouts
// are bounded by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &http.Client{Transport: transport, Timeout: timeout}
}

// BasicHeader returns headers carrying HTTP basic credentials and a content type.
func BasicHeader(user, pass, contentType string) http.Header {
	req := &http.Request{Header: http.Header{}}
	req.SetBasicAuth(user, pass)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", contentType)
	}
	return req.Header
}
