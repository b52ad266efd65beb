// Package backend is the HTTP client for the remote showcase REST API. All
// portal state lives behind that API; this package only shuttles JSON and
// maps transport and status failures onto the shared error catalogue so
// callers can tell an auth failure from a flaky network.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/opencampus/vitrine/internal/errors"
)

// Client talks to the showcase backend. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option modifies a Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a backend client for the given base URL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) errorMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do performs a JSON request against the backend and decodes the envelope's
// data into out (when out is non-nil). A non-empty accessToken is sent as a
// bearer header. The returned error wraps a sentinel from internal/errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, accessToken string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failure, not an auth decision. Callers must be able to
		// tell these apart (a flaky network never logs anyone out).
		return errors.Wrapf(apperrors.ErrBackendUnavailable, "[Client.do] %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend call")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(apperrors.ErrBackendUnavailable, "[Client.do] read response: %v", err)
	}

	var env envelope
	// Some error responses carry no envelope at all; status mapping below
	// still applies, so a decode failure here is not fatal.
	_ = json.Unmarshal(respBody, &env)

	if err := statusError(resp.StatusCode, env.errorMessage()); err != nil {
		return err
	}

	if !env.Success {
		msg := env.errorMessage()
		if msg == "" {
			msg = "request failed"
		}
		return errors.Wrapf(apperrors.ErrInternal, "[Client.do] %s %s: %s", method, path, msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrapf(apperrors.ErrInternal, "[Client.do] decode response data: %v", err)
		}
	}
	return nil
}

// statusError maps a non-2xx status onto the error catalogue.
func statusError(status int, message string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	switch status {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return errors.Wrap(apperrors.ErrInternal, fmt.Sprintf("backend returned %d: %s", status, message))
}
