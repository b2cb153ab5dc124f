// Package upstream talks to the platform API that masters College records and
// exposes the paginated list endpoints the dashboard aggregates.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/stats"
)

// APIError is a non-2xx response from the platform API.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.Code, e.Msg)
}

func (e *APIError) StatusCode() int { return e.Code }
func (e *APIError) Message() string { return e.Msg }

var _ college.RemoteError = (*APIError)(nil)

// envelope is the platform API's single response shape. Decoding is strict:
// an unexpected shape is a decode error, never unwrapped speculatively.
type envelope struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Pagination *stats.Pagination `json:"pagination"`
	Message    string            `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  core.Logger
}

var _ college.Remote = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: conf.Upstream.BaseURL,
		http:    &http.Client{Timeout: conf.Upstream.Timeout},
		logger:  logger,
	}
}

func (c *Client) CreateCollege(ctx context.Context, col college.College) (college.College, error) {
	env, err := c.do(ctx, http.MethodPost, "/colleges", col)
	if err != nil {
		return college.College{}, err
	}
	return decodeCollege(env)
}

func (c *Client) UpdateCollege(ctx context.Context, id string, fields college.UpdateCollege) (college.College, error) {
	env, err := c.do(ctx, http.MethodPut, "/colleges/"+url.PathEscape(id), fields)
	if err != nil {
		return college.College{}, err
	}
	return decodeCollege(env)
}

// List fetches one page of a category's list endpoint, eg. /colleges or
// /leads. The result feeds the dashboard aggregator as-is.
func (c *Client) List(ctx context.Context, path string, page, limit int) (stats.ListResponse, error) {
	q := make(url.Values)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	env, err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil)
	if err != nil {
		return stats.ListResponse{}, err
	}

	var records []stats.Record
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return stats.ListResponse{}, errors.Wrapf(err, "decoding %s list data", path)
		}
	}
	return stats.ListResponse{
		Success:    env.Success,
		Data:       records,
		Pagination: env.Pagination,
	}, nil
}

// ListFetcher adapts a list endpoint into a stats.Fetcher.
func (c *Client) ListFetcher(path string) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		return c.List(ctx, path, page, limit)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (envelope, error) {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return envelope{}, errors.Wrap(err, "serializing request body")
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return envelope{}, errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			// error responses need not carry the envelope
			return envelope{}, &APIError{Code: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
		}
		return envelope{}, errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return envelope{}, &APIError{Code: resp.StatusCode, Msg: msg}
	}
	return env, nil
}

func decodeCollege(env envelope) (college.College, error) {
	var col college.College
	if err := json.Unmarshal(env.Data, &col); err != nil {
		return college.College{}, errors.Wrap(err, "decoding college data")
	}
	return col, nil
}
