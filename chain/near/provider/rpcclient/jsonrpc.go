package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
)

// ErrEmptyResult is returned when the node answers with neither a result nor an error.
var ErrEmptyResult = errors.New("empty json-rpc result")

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// ErrorCause is the structured cause attached to node errors.
type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

// Error is an error object returned by the node.
type Error struct {
	Name    string          `json:"name"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Cause   *ErrorCause     `json:"cause,omitempty"`
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
	if e.Cause != nil && e.Cause.Name != "" {
		msg += " (" + e.Cause.Name + ")"
	}
	if len(e.Data) > 0 && string(e.Data) != "null" {
		msg += ": " + string(e.Data)
	}

	return msg
}

// config holds the client settings.
type config struct {
	// RetryAttempts is how many times a request is sent when the transport fails. Errors returned
	// by the node are never retried.
	RetryAttempts uint
	RetryDelay    time.Duration
	Headers       map[string]string
	Timeout       time.Duration
	Debug         bool
}

var defaultConfig = config{
	RetryAttempts: 1,
	RetryDelay:    200 * time.Millisecond,
	Timeout:       60 * time.Second,
}

// Option configures a Client.
type Option func(*config)

// WithRetry retries requests failing in transport attempts times, waiting delay in between.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *config) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

// WithHeaders sets headers sent with every request, e.g. an API key for a hosted node.
func WithHeaders(headers map[string]string) Option {
	return func(c *config) {
		c.Headers = headers
	}
}

// WithTimeout sets the HTTP timeout of a single request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.Timeout = timeout
	}
}

// WithDebug logs requests and responses through resty.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.Debug = debug
	}
}

// Client talks to a NEAR node over JSON-RPC.
type Client struct {
	url    string
	client *resty.Client
	config config
}

// New returns a client for the node at url.
func New(url string, opts ...Option) *Client {
	cfg := defaultConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		url:    url,
		config: cfg,
		client: resty.New().
			SetDebug(cfg.Debug).
			SetHeaders(cfg.Headers).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// URL returns the node url.
func (c *Client) URL() string {
	return c.url
}

// call sends method with params and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	payload := request{
		JSONRPC: "2.0",
		ID:      "dontcare",
		Method:  method,
		Params:  params,
	}

	var resp response
	err := retry.Do(func() error {
		resp = response{}
		r, err := c.client.R().SetContext(ctx).SetBody(payload).SetResult(&resp).Post(c.url)
		if err != nil {
			return fmt.Errorf("failed to call %s: %w", method, err)
		}
		// The node reports handler errors with a 200 and an error object, anything else without a
		// decodable body is a transport failure.
		if r.IsError() && resp.Error == nil {
			return fmt.Errorf("failed to call %s: http status %s", method, r.Status())
		}

		return nil
	},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
		retry.Delay(c.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	if resp.Error != nil {
		return resp.Error
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return fmt.Errorf("%s: %w", method, ErrEmptyResult)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}

	return nil
}
