package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token. An empty token means
// no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUnauthorizedHandler registers fn to run whenever an authenticated
// endpoint answers 401. It is expected to clear the stored session.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// Client is a thin HTTP client for the webmail REST API. It attaches
// the bearer token, encodes JSON bodies, maps error envelopes to *Error
// and turns 401 into a global sign-out. Requests are never retried.
type Client struct {
	baseURL        string
	tokens         TokenSource
	httpClient     *http.Client
	logger         *zap.Logger
	onUnauthorized func()
}

// NewClient creates a client for the service rooted at baseURL
// (e.g., http://localhost:8080).
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// validator is implemented by response schemas that have required fields.
type validator interface {
	validate() error
}

// request describes a single API call.
type request struct {
	method string
	path   string
	body   any
	// public endpoints (login, register) treat 401 as an ordinary
	// failure instead of a session expiry.
	public bool
}

// errorEnvelope is the error body convention of the service:
// {"error": {"code": "...", "message": "..."}}. A bare top-level
// "message" is accepted as well, and so is "error" holding a plain string.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do is the core HTTP method that builds the request, handles auth and
// JSON (de)serialization.
func (c *Client) do(ctx context.Context, r request, result any) error {
	bodyReader, contentType, err := encodeBody(r.body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("executing request %s %s: %w", r.method, r.path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	)

	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode == http.StatusUnauthorized && !r.public {
		// A token replaced while the request was in flight is not the one
		// that expired.
		if c.onUnauthorized != nil && c.token() == token {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", r.method, r.path, ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(r, resp, respBody)
	}

	if result == nil {
		return nil
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return &DecodeError{Path: r.path, Err: fmt.Errorf("empty body")}
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &DecodeError{Path: r.path, Err: err}
	}
	if v, ok := result.(validator); ok {
		if err := v.validate(); err != nil {
			return &DecodeError{Path: r.path, Err: err}
		}
	}

	return nil
}

// encodeBody serializes plain values as JSON. Raw bodies ([]byte,
// io.Reader) are passed through untouched with no content type.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// newError builds an *Error for a non-2xx response. The message is the
// structured error message when present, else the status text, else a
// generic string.
func newError(r request, resp *http.Response, body []byte) *Error {
	apiErr := &Error{
		Method: r.method,
		Path:   r.path,
		Status: resp.StatusCode,
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") ||
		json.Valid(body) {
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil {
			var detail errorDetail
			var text string
			switch {
			case json.Unmarshal(env.Error, &detail) == nil:
				apiErr.Code = detail.Code
				apiErr.Message = detail.Message
			default:
				_ = json.Unmarshal(env.Error, &text)
			}
			if apiErr.Message == "" {
				apiErr.Message = env.Message
			}
			if apiErr.Message == "" {
				apiErr.Message = text
			}
			apiErr.fromBody = apiErr.Message != ""
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = statusText(resp)
	}
	if apiErr.Message == "" {
		apiErr.Message = genericMessage
	}
	return apiErr
}

// statusText returns the reason phrase the server sent, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(
		strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)),
	)
	if text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
