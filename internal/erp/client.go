// Package erp is the client for the ERP backend REST API used by the register
// terminal. Every call is scoped to a Session (bearer token + company) and every
// response is checked against an explicit schema before it reaches callers.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxBodySize = 4 << 20

// Session identifies the operator on whose behalf requests are made.
type Session struct {
	Token     string
	CompanyID string
	UserID    string
}

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Client talks to the ERP backend.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[rawResponse]
	logger  *zap.Logger
}

type rawResponse struct {
	status int
	body   []byte
}

type validator interface {
	validate() error
}

// NewClient builds a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}
	log := logger.Named("erp")
	breaker := gobreaker.NewCircuitBreaker[rawResponse](gobreaker.Settings{
		Name:    "erp",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		breaker: breaker,
		logger:  log,
	}
}

func (c *Client) get(ctx context.Context, sess Session, path string, query url.Values, out validator) error {
	return c.do(ctx, sess, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, sess Session, path string, body any, out validator) error {
	return c.do(ctx, sess, http.MethodPost, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, sess Session, path string, query url.Values) error {
	return c.do(ctx, sess, http.MethodDelete, path, query, nil, nil)
}

func (c *Client) do(ctx context.Context, sess Session, method, path string, query url.Values, body any, out validator) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erp: encode %s body: %w", path, err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() (rawResponse, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
		if err != nil {
			return rawResponse{}, err
		}
		req.Header.Set("Accept", "application/json")
		if sess.Token != "" {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := c.http.Do(req)
		if err != nil {
			return rawResponse{}, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
		if err != nil {
			return rawResponse{}, fmt.Errorf("read body: %w", err)
		}
		r := rawResponse{status: res.StatusCode, body: data}
		if res.StatusCode >= http.StatusInternalServerError {
			return r, apiError(path, r)
		}
		return r, nil
	})

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("request rejected by breaker", fields...)
			return fmt.Errorf("%w: %s %s", ErrUnavailable, method, path)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Error("backend error", append(fields, zap.Int("status", apiErr.Status))...)
			return apiErr
		}
		c.logger.Error("request failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("erp: %s %s: %w", method, path, err)
	}

	c.logger.Debug("request done", append(fields, zap.Int("status", raw.status))...)
	if raw.status >= http.StatusBadRequest {
		return apiError(path, raw)
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw.body)) == 0 {
		return &SchemaError{Path: path, Reason: "empty body"}
	}
	if err := json.Unmarshal(raw.body, out); err != nil {
		return &SchemaError{Path: path, Reason: err.Error()}
	}
	if err := out.validate(); err != nil {
		return &SchemaError{Path: path, Reason: err.Error()}
	}
	return nil
}

func apiError(path string, r rawResponse) *APIError {
	msg := extractMessage(r.body)
	if msg == "" {
		msg = GenericErrorMessage
	}
	return &APIError{Status: r.status, Path: path, Message: msg}
}
