package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/college"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestClient(handler http.Handler) (*Client, func()) {
	srv := httptest.NewServer(handler)
	c := NewClient(&core.Config{
		Upstream: core.UpstreamConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
	}, nopLogger{})
	return c, srv.Close
}

func TestClient_CreateCollege(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/colleges", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"abc","name":"X","status":"ACTIVE"}}`))
	}))
	defer closeFn()

	col, err := client.CreateCollege(context.Background(), college.College{Name: "X"})
	assert.NoError(t, err)
	assert.Equal(t, "abc", col.ID)
	assert.Equal(t, "ACTIVE", col.Status)
}

func TestClient_UpdateCollege_apiError(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid length 9 for UUID"}`))
	}))
	defer closeFn()

	_, err := client.UpdateCollege(context.Background(), "bad-id", college.UpdateCollege{Name: "Y"})
	assert.Error(t, err)

	apiErr, ok := errors.Cause(err).(*APIError)
	if assert.True(t, ok, "expected *APIError, got %T", err) {
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode())
		assert.Contains(t, apiErr.Message(), "invalid length")
	}
}

func TestClient_List(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"status":"NEW"},{"status":"CONVERTED"}],
			"pagination": {"total": 12, "page": 1, "limit": 50, "hasNext": true}
		}`))
	}))
	defer closeFn()

	resp, err := client.List(context.Background(), "/leads", 1, 50)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.True(t, resp.HasTotal())
	assert.Equal(t, 12, resp.AuthoritativeTotal())
}

func TestClient_List_malformedEnvelopeFailsFast(t *testing.T) {
	client, closeFn := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"data":{"data":[]}}}`)) // nested junk
	}))
	defer closeFn()

	_, err := client.List(context.Background(), "/leads", 1, 50)
	assert.Error(t, err, "speculative multi-level unwrapping is a decode error")
}
