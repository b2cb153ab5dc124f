package college

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/upskillway/crm/core"
)

const cacheKey = "colleges"

var NowFunc = time.Now // mockable

type (
	// Remote is the upstream platform API mastering College records.
	Remote interface {
		CreateCollege(ctx context.Context, c College) (College, error)
		UpdateCollege(ctx context.Context, id string, fields UpdateCollege) (College, error)
	}

	// RemoteError exposes enough of an upstream rejection to drive the
	// fallback heuristics.
	RemoteError interface {
		StatusCode() int
		Message() string
	}

	// CacheStore is a durable key-value store holding one serialized
	// document per key. All implementations must treat read failures as
	// recoverable; the Reconciler degrades them to cache misses.
	CacheStore interface {
		Get(key string) ([]byte, error)
		Put(key string, val []byte) error
		Delete(key string) error
	}

	// Reconciler mirrors College writes into a durable local cache so that
	// the record survives an unreachable or rejecting upstream. The upstream
	// response always wins on conflict; the cache is a fallback, never the
	// source of truth while the upstream is reachable.
	Reconciler struct {
		remote Remote
		cache  CacheStore
		logger core.Logger
	}
)

func NewReconciler(remote Remote, cache CacheStore, logger core.Logger) *Reconciler {
	return &Reconciler{
		remote: remote,
		cache:  cache,
		logger: logger,
	}
}

// Create attempts the upstream create first. On success the returned record is
// written through into the cache so later updates can fall back on it. On
// upstream failure a fallback record with a locally minted UUID is cached and
// returned with Fallback set; a successful Create therefore does not imply
// upstream durability.
func (r *Reconciler) Create(ctx context.Context, nc NewCollege) (College, error) {
	now := NowFunc().UTC()
	c := College{
		Name:            nc.Name,
		Status:          nc.Status,
		Type:            nc.Type,
		Email:           nc.Email,
		Phone:           nc.Phone,
		Website:         nc.Website,
		City:            nc.City,
		State:           nc.State,
		EstablishedYear: nc.EstablishedYear,
		SourceLeadID:    nc.SourceLeadID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.Type == "" {
		c.Type = TypeOther
	}

	created, err := r.remote.CreateCollege(ctx, c)
	if err == nil {
		r.mirror(created)
		return created, nil
	}
	r.logger.Warn("upstream college create failed, falling back to local cache", err)

	c.ID = uuid.New().String()
	c.Fallback = true
	if cacheErr := r.upsertCached(c); cacheErr != nil {
		// total failure: neither store took the write
		return College{}, errors.Wrap(err, "creating college upstream (cache fallback also failed)")
	}
	return c, nil
}

// Update attempts the upstream update first. When the upstream rejects the
// identifier format (a locally minted id it never assigned), the cached copy
// is patched instead. A miss in both stores is treated as a skipped no-op so
// multi-step workflows such as lead conversion are not broken by a
// non-critical metadata write.
func (r *Reconciler) Update(ctx context.Context, id string, fields UpdateCollege) (College, error) {
	updated, err := r.remote.UpdateCollege(ctx, id, fields)
	if err == nil {
		r.mirror(updated)
		return updated, nil
	}
	if !isIDFormatErr(err) {
		return College{}, errors.Wrap(err, "updating college upstream")
	}

	if cached, ok := r.FindByID(id); ok {
		merged := fields.merge(cached)
		merged.UpdatedAt = NowFunc().UTC()
		merged.Fallback = true
		if cacheErr := r.upsertCached(merged); cacheErr != nil {
			return College{}, errors.Wrap(cacheErr, "updating cached college")
		}
		return merged, nil
	}

	r.logger.Warn("college update skipped: not in upstream nor cache", errors.Errorf("college id %q", id))
	return College{ID: id, Skipped: true}, nil
}

// FindByID looks a college up in the local cache. Ids are compared as strings
// first, then as parsed numbers, so a numeric id stored by one code path still
// matches its string form from another.
func (r *Reconciler) FindByID(id string) (College, bool) {
	for _, c := range r.CachedColleges() {
		if idsEqual(c.ID, id) {
			return c, true
		}
	}
	return College{}, false
}

// CachedColleges returns the cache contents. Any storage failure degrades to
// an empty cache; the upstream remains the source of truth when reachable.
func (r *Reconciler) CachedColleges() []College {
	raw, err := r.cache.Get(cacheKey)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var colleges []College
	if err := json.Unmarshal(raw, &colleges); err != nil {
		r.logger.Warn("corrupt college cache, treating as empty", err)
		return nil
	}
	return colleges
}

// Delete removes a college from the local cache only.
func (r *Reconciler) Delete(id string) error {
	colleges := r.CachedColleges()
	kept := colleges[:0]
	for _, c := range colleges {
		if !idsEqual(c.ID, id) {
			kept = append(kept, c)
		}
	}
	return r.saveCached(kept)
}

// mirror writes an upstream-confirmed record through into the cache,
// best-effort.
func (r *Reconciler) mirror(c College) {
	if err := r.upsertCached(c); err != nil {
		r.logger.Warn("mirroring college into local cache failed", err)
	}
}

// upsertCached merges c into the cached list by id; the later write wins.
func (r *Reconciler) upsertCached(c College) error {
	colleges := r.CachedColleges()
	replaced := false
	for i := range colleges {
		if idsEqual(colleges[i].ID, c.ID) {
			colleges[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		colleges = append(colleges, c)
	}
	return r.saveCached(colleges)
}

func (r *Reconciler) saveCached(colleges []College) error {
	raw, err := json.Marshal(colleges)
	if err != nil {
		return errors.Wrap(err, "serializing college cache")
	}
	return r.cache.Put(cacheKey, raw)
}

// idsEqual compares ids as strings, tolerating a numeric-vs-string
// representation mismatch.
func idsEqual(a, b string) bool {
	if a == b {
		return true
	}
	an, aerr := strconv.ParseFloat(strings.TrimSpace(a), 64)
	bn, berr := strconv.ParseFloat(strings.TrimSpace(b), 64)
	return aerr == nil && berr == nil && an == bn
}

// isIDFormatErr reports whether the upstream rejected the identifier format:
// HTTP 404, or an error message mentioning "invalid length" or "UUID".
func isIDFormatErr(err error) bool {
	if rerr, ok := errors.Cause(err).(RemoteError); ok {
		if rerr.StatusCode() == 404 {
			return true
		}
		return strings.Contains(rerr.Message(), "invalid length") || strings.Contains(rerr.Message(), "UUID")
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid length") || strings.Contains(msg, "UUID")
}
