package college

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/upskillway/crm/core"
)

var uuidV4Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

type mapCache map[string][]byte

func (c mapCache) Get(key string) ([]byte, error)   { return c[key], nil }
func (c mapCache) Put(key string, val []byte) error { c[key] = val; return nil }
func (c mapCache) Delete(key string) error          { delete(c, key); return nil }

type remoteMock struct {
	createFn func(ctx context.Context, c College) (College, error)
	updateFn func(ctx context.Context, id string, fields UpdateCollege) (College, error)
}

func (m *remoteMock) CreateCollege(ctx context.Context, c College) (College, error) {
	return m.createFn(ctx, c)
}

func (m *remoteMock) UpdateCollege(ctx context.Context, id string, fields UpdateCollege) (College, error) {
	return m.updateFn(ctx, id, fields)
}

type remoteErrMock struct {
	code int
	msg  string
}

func (e *remoteErrMock) Error() string   { return e.msg }
func (e *remoteErrMock) StatusCode() int { return e.code }
func (e *remoteErrMock) Message() string { return e.msg }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = (*nopLogger)(nil)

func newTestReconciler(remote Remote) (*Reconciler, mapCache) {
	cache := make(mapCache)
	return NewReconciler(remote, cache, nopLogger{}), cache
}

func TestReconciler_Create_remoteSuccessWritesThrough(t *testing.T) {
	remote := &remoteMock{
		createFn: func(_ context.Context, c College) (College, error) {
			c.ID = "d2c1f9e8-6f3a-4f6e-8f7e-0123456789ab"
			return c, nil
		},
	}
	rec, _ := newTestReconciler(remote)

	c, err := rec.Create(context.Background(), NewCollege{Name: "Northfield Institute"})
	assert.NoError(t, err)
	assert.False(t, c.Fallback)
	assert.Equal(t, StatusActive, c.Status) // defaulted
	assert.Equal(t, TypeOther, c.Type)

	cached, ok := rec.FindByID(c.ID)
	assert.True(t, ok, "remote-created college must be mirrored for later fallback")
	assert.Equal(t, "Northfield Institute", cached.Name)
}

func TestReconciler_Create_idempotentOnSameID(t *testing.T) {
	remote := &remoteMock{
		createFn: func(_ context.Context, c College) (College, error) {
			c.ID = "42"
			return c, nil
		},
	}
	rec, _ := newTestReconciler(remote)

	_, err := rec.Create(context.Background(), NewCollege{Name: "First"})
	assert.NoError(t, err)
	_, err = rec.Create(context.Background(), NewCollege{Name: "Second"})
	assert.NoError(t, err)

	colleges := rec.CachedColleges()
	assert.Len(t, colleges, 1, "duplicate ids must merge, not duplicate")
	assert.Equal(t, "Second", colleges[0].Name, "later write wins")
}

func TestReconciler_Create_fallbackOnRemoteFailure(t *testing.T) {
	remote := &remoteMock{
		createFn: func(context.Context, College) (College, error) {
			return College{}, errors.New("connection refused")
		},
	}
	rec, _ := newTestReconciler(remote)

	before := time.Now().UTC()
	c, err := rec.Create(context.Background(), NewCollege{Name: "X", Status: StatusActive, Type: TypeOther})
	assert.NoError(t, err)
	assert.True(t, c.Fallback)
	assert.Regexp(t, uuidV4Regex, c.ID)
	assert.Equal(t, "X", c.Name)
	assert.False(t, c.CreatedAt.Before(before.Truncate(time.Second)))
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	cached, ok := rec.FindByID(c.ID)
	assert.True(t, ok)
	assert.Equal(t, c.ID, cached.ID)
}

func TestReconciler_Update_fallbackOnIDFormatRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "http 404", err: &remoteErrMock{code: 404, msg: "not found"}},
		{name: "invalid length", err: &remoteErrMock{code: 400, msg: "invalid length 12 for id"}},
		{name: "uuid mismatch", err: &remoteErrMock{code: 422, msg: "id must be a UUID"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &remoteMock{
				createFn: func(context.Context, College) (College, error) {
					return College{}, errors.New("down")
				},
				updateFn: func(context.Context, string, UpdateCollege) (College, error) {
					return College{}, tt.err
				},
			}
			rec, _ := newTestReconciler(remote)

			created, err := rec.Create(context.Background(), NewCollege{Name: "Before", City: "Pune"})
			assert.NoError(t, err)

			updated, err := rec.Update(context.Background(), created.ID, UpdateCollege{Name: "After"})
			assert.NoError(t, err)
			assert.True(t, updated.Fallback)
			assert.Equal(t, "After", updated.Name)
			assert.Equal(t, "Pune", updated.City, "unset fields keep cached values")
			assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
		})
	}
}

func TestReconciler_Update_skippedOnDoubleMiss(t *testing.T) {
	remote := &remoteMock{
		updateFn: func(context.Context, string, UpdateCollege) (College, error) {
			return College{}, &remoteErrMock{code: 404, msg: "not found"}
		},
	}
	rec, _ := newTestReconciler(remote)

	c, err := rec.Update(context.Background(), "unknown-id", UpdateCollege{Name: "whatever"})
	assert.NoError(t, err, "a reconcile miss is a soft no-op, not an error")
	assert.True(t, c.Skipped)
	assert.Equal(t, "unknown-id", c.ID)
}

func TestReconciler_Update_otherRemoteErrorsPropagate(t *testing.T) {
	remote := &remoteMock{
		updateFn: func(context.Context, string, UpdateCollege) (College, error) {
			return College{}, &remoteErrMock{code: 500, msg: "boom"}
		},
	}
	rec, _ := newTestReconciler(remote)

	_, err := rec.Update(context.Background(), "any", UpdateCollege{Name: "whatever"})
	assert.Error(t, err)
}

func TestReconciler_FindByID_tolerantCompare(t *testing.T) {
	rec, cache := newTestReconciler(&remoteMock{})
	_ = cache.Put(cacheKey, []byte(`[{"id":"42","name":"Numeric"},{"id":"007","name":"Padded"}]`))

	c, ok := rec.FindByID("42")
	assert.True(t, ok)
	assert.Equal(t, "Numeric", c.Name)

	// numeric-parse fallback: "42.0" and "7" match stored string forms
	c, ok = rec.FindByID("42.0")
	assert.True(t, ok)
	assert.Equal(t, "Numeric", c.Name)

	c, ok = rec.FindByID("7")
	assert.True(t, ok)
	assert.Equal(t, "Padded", c.Name)

	_, ok = rec.FindByID("43")
	assert.False(t, ok)
}

func TestReconciler_corruptCacheDegradesToMiss(t *testing.T) {
	rec, cache := newTestReconciler(&remoteMock{})
	_ = cache.Put(cacheKey, []byte(`{not json`))

	_, ok := rec.FindByID("42")
	assert.False(t, ok)
	assert.Nil(t, rec.CachedColleges())
}

func TestReconciler_Delete(t *testing.T) {
	rec, cache := newTestReconciler(&remoteMock{})
	_ = cache.Put(cacheKey, []byte(`[{"id":"a"},{"id":"b"}]`))

	assert.NoError(t, rec.Delete("a"))
	colleges := rec.CachedColleges()
	assert.Len(t, colleges, 1)
	assert.Equal(t, "b", colleges[0].ID)
}
