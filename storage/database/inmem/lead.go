package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/upskillway/crm/core/lead"
)

type leadRepository struct {
	db *leadTable
}

var _ lead.Repository = (*leadRepository)(nil)

func NewLeadRepository(db *DB) *leadRepository {
	return &leadRepository{db: db.lead}
}

func (repo *leadRepository) query() []lead.Lead {
	leads := make([]lead.Lead, 0, len(repo.db.table))
	for _, l := range repo.db.table {
		leads = append(leads, *l)
	}
	return leads
}

func (repo *leadRepository) CreateLead(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	l.ID = uuid.New().String()
	repo.db.table[l.ID] = &l
	return l, nil
}

func (repo *leadRepository) QueryAllLeads(ctx context.Context) ([]lead.Lead, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *leadRepository) GetLeadByID(ctx context.Context, id string) (lead.Lead, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.table[id]; ok {
		return *l, nil
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (repo *leadRepository) FilterLeads(ctx context.Context, filter lead.QueryFilter) ([]lead.Lead, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	leads := make([]lead.Lead, 0, len(repo.db.table))
	for _, l := range repo.query() {
		if filter.Search != "" && !leadMatchesSearch(l, filter.Search) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, l.Status) {
			continue
		}
		if filter.AssigneeID != "" && l.AssigneeID != filter.AssigneeID {
			continue
		}
		if !filter.CreatedFrom.IsZero() && l.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && l.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		leads = append(leads, l)
	}
	return leads, nil
}

func (repo *leadRepository) UpdateLead(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[l.ID]
	if !ok {
		return lead.Lead{}, lead.ErrNotFound
	}
	if l.Name != "" {
		orig.Name = l.Name
	}
	if l.Email != "" {
		orig.Email = l.Email
	}
	if l.Phone != "" {
		orig.Phone = l.Phone
	}
	if l.CollegeName != "" {
		orig.CollegeName = l.CollegeName
	}
	if l.Source != "" {
		orig.Source = l.Source
	}
	if l.Status != "" {
		orig.Status = l.Status
	}
	if l.AssigneeID != "" {
		orig.AssigneeID = l.AssigneeID
	}
	if l.Notes != "" {
		orig.Notes = l.Notes
	}
	if !l.UpdatedAt.IsZero() {
		orig.UpdatedAt = l.UpdatedAt
	}

	repo.db.table[l.ID] = orig
	return *orig, nil
}

func (repo *leadRepository) DeleteLeadsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func leadMatchesSearch(l lead.Lead, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(l.Name), search) ||
		strings.Contains(strings.ToLower(l.Email), search) ||
		strings.Contains(strings.ToLower(l.CollegeName), search)
}

func containsString(vals []string, val string) bool {
	for _, v := range vals {
		if v == val {
			return true
		}
	}
	return false
}
