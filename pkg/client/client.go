// Package client is a typed Go client for the receipt API.
package client

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	receiptsPath         = "/api/v1/receipts"
	idempotencyKeyHeader = "Idempotency-Key"
)

// Client talks to the receipt API. Transport failures and overloaded
// responses are retried; a create that loses a numbering race is re-sent.
type Client struct {
	baseURL       string
	http          *retryablehttp.Client
	createBackoff func() backoff.BackOff
}

// Option configures a Client
type Option func(*Client)

// WithRetry sets how often and how patiently transport failures are retried
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithTimeout bounds a single HTTP attempt
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.HTTPClient.Timeout = d
	}
}

// WithCreateBackoff sets the policy for re-sending a create whose receipt
// number was taken
func WithCreateBackoff(f func() backoff.BackOff) Option {
	return func(c *Client) {
		c.createBackoff = f
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 60 * time.Second
	rc.CheckRetry = retryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
		createBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			return backoff.WithMaxRetries(b, 3)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryPolicy retries what the default policy does, except a plain 500:
// the server may have done the work before failing.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusInternalServerError {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
	Reason  string          `json:"reason"`
}

// List returns every receipt, newest first
func (c *Client) List(ctx context.Context) ([]Receipt, error) {
	var receipts []Receipt
	if err := c.call(ctx, http.MethodGet, receiptsPath, nil, nil, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// Get returns one receipt
func (c *Client) Get(ctx context.Context, id string) (*Receipt, error) {
	var r Receipt
	if err := c.call(ctx, http.MethodGet, receiptPath(id), nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create issues a new receipt. Every attempt carries the same
// Idempotency-Key so a retried request cannot issue two receipts.
func (c *Client) Create(ctx context.Context, in *ReceiptInput) (*Receipt, error) {
	headers := map[string]string{idempotencyKeyHeader: uuid.New().String()}

	return backoff.RetryWithData(func() (*Receipt, error) {
		var r Receipt
		err := c.call(ctx, http.MethodPost, receiptsPath, in, headers, &r)
		if err == nil {
			return &r, nil
		}
		if IsDuplicateReceiptNumber(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithContext(c.createBackoff(), ctx))
}

// Update replaces the editable fields of a receipt
func (c *Client) Update(ctx context.Context, id string, in *ReceiptInput) (*Receipt, error) {
	var r Receipt
	if err := c.call(ctx, http.MethodPut, receiptPath(id), in, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete permanently removes a receipt
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, receiptPath(id), nil, nil, nil)
}

// NextReceiptNumber asks which number the next receipt is expected to get
func (c *Client) NextReceiptNumber(ctx context.Context) (int64, error) {
	var out struct {
		NextReceiptNumber int64 `json:"nextReceiptNumber"`
	}
	if err := c.call(ctx, http.MethodGet, receiptsPath+"/next-number", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.NextReceiptNumber, nil
}

// Download fetches the rendered receipt. format may be "", "pdf" or "html".
func (c *Client) Download(ctx context.Context, id, format string) (*Download, error) {
	path := receiptPath(id) + "/pdf"
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}
	return c.download(ctx, path)
}

// Export fetches every receipt as a spreadsheet
func (c *Client) Export(ctx context.Context) (*Download, error) {
	return c.download(ctx, receiptsPath+"/export")
}

func receiptPath(id string) string {
	return receiptsPath + "/" + url.PathEscape(id)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	// retryablehttp replays a []byte body on every attempt
	var payload interface{}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		payload = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	resp, err := c.send(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decode response data")
}

func (c *Client) download(ctx context.Context, path string) (*Download, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, raw)
	}

	d := &Download{ContentType: resp.Header.Get("Content-Type"), Body: raw}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}

func apiError(status int, raw []byte) *APIError {
	e := &APIError{StatusCode: status}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		e.Message = env.Message
		e.Reason = env.Reason
		e.Fields = env.Errors
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
