// Package api is the REST client for the chat service. Every call attaches
// the stored bearer token, unwraps the generic response envelope and turns
// a 401 into a process-wide sign-out via the injected bus.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/bitechat/bitechat/bus"
	"github.com/bitechat/bitechat/token"
)

const requestTimeout = 30 * time.Second

// Error is a non-2xx REST response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// envelope is the generic response wrapper. Any response body matching this
// shape is unwrapped to its data payload; other bodies pass through as-is.
type envelope struct {
	StatusCode *int            `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Timestamp  json.RawMessage `json:"timestamp"`
}

// errorBody covers both envelope-shaped errors and plain {detail} errors.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type Client struct {
	// baseURL includes the API prefix, e.g. http://host/api/v1.
	baseURL string
	http    *http.Client
	tokens  *token.Store
	bus     *bus.Bus
}

func NewClient(baseURL string, tokens *token.Store, b *bus.Bus) *Client {
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    8,
		IdleConnTimeout: 90 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Transport: tr, Timeout: requestTimeout},
		tokens:  tokens,
		bus:     b,
	}
}

// BaseURL returns the API base URL including the version prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ServerBase returns the base URL with the API prefix stripped, used for
// media URLs and the websocket endpoint.
func (c *Client) ServerBase() string {
	return strings.TrimSuffix(c.baseURL, "/api/v1")
}

func (c *Client) Token() string {
	return c.tokens.Load()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.tokens.Load(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// send runs the request and decodes the response into out (when non-nil).
func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	glog.V(5).Infof("api: %s %s -> %d, %d bytes", req.Method, req.URL.Path, resp.StatusCode, len(raw))

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired or revoked: drop it and force a process-wide
		// sign-out, same as the mobile client.
		if err := c.tokens.Clear(); err != nil {
			glog.Errorf("api: clear token error: %v", err)
		}
		c.bus.Publish(bus.Unauthorized)
		unauthorizedTotal.Inc()
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErrorsTotal.Inc()
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		return nil
	}
	return decodeBody(raw, out)
}

// do issues a JSON request. body may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, reader, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// decodeBody unwraps the generic envelope when the body matches its shape.
func decodeBody(raw []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.StatusCode != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(raw, out)
}

func errorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Detail != "" {
			return body.Detail
		}
	}

	s := string(raw)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
