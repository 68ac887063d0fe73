// Package api is the client for the MagicWorld REST API. It is the only
// package that talks to the backend; handlers never build URLs themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// AssetURL resolves a path the API returned (an uploaded screenshot, say)
// against the base URL. Absolute URLs pass through.
func (c *Client) AssetURL(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.baseURL + p
}

// doJSON sends body (if any) as JSON and returns the raw response body.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, token)
}

// send performs req and maps the outcome onto the error taxonomy: timeouts,
// 401, server-reported errors, and plain transport failures.
func (c *Client) send(req *http.Request, token string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, req.Method, req.URL.Path)
		}
		return nil, fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, req.Method, req.URL.Path)
		}
		return nil, fmt.Errorf("api: read %s %s: %w", req.Method, req.URL.Path, err)
	}
	slog.Debug("API call", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return nil, &Error{Status: resp.StatusCode, Message: messageFrom(raw)}
	}
	if env, ok := envelopeOf(raw); ok && env.Success != nil && !*env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.message()}
	}
	return raw, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func envelopeOf(raw []byte) (envelope, bool) {
	var env envelope
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, false
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return env, false
	}
	return env, true
}

func messageFrom(raw []byte) string {
	env, _ := envelopeOf(raw)
	return env.message()
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under one of keys.
func decodeList(raw []byte, out any, keys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return fmt.Errorf("api: decode list: %w", err)
	}
	for _, k := range append(keys, "data") {
		if inner, ok := wrapped[k]; ok && len(inner) > 0 && inner[0] == '[' {
			return json.Unmarshal(inner, out)
		}
	}
	return nil
}

// decodeOne accepts the object itself or the object wrapped under one of keys.
func decodeOne(raw []byte, out any, keys ...string) error {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return fmt.Errorf("api: decode: %w", err)
	}
	for _, k := range append(keys, "data") {
		if inner, ok := wrapped[k]; ok && len(inner) > 0 && inner[0] == '{' {
			return json.Unmarshal(inner, out)
		}
	}
	return json.Unmarshal(raw, out)
}

func seg(s string) string { return url.PathEscape(s) }
