package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/upskillway/crm/core/content"
)

type contentRepository struct {
	db *contentTable
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db.content}
}

func (repo *contentRepository) query() []content.Item {
	items := make([]content.Item, 0, len(repo.db.table))
	for _, it := range repo.db.table {
		items = append(items, *it)
	}
	return items
}

func (repo *contentRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedItems ...content.Item) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, it := range repo.query() {
		if it.Slug != slug {
			continue
		}
		excluded := false
		for _, excl := range excludedItems {
			if excl.ID == it.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return content.ErrSlugExists
		}
	}
	return nil
}

func (repo *contentRepository) CreateItem(ctx context.Context, it content.Item) (content.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	it.ID = uuid.New().String()
	repo.db.table[it.ID] = &it
	return it, nil
}

func (repo *contentRepository) QueryAllItems(ctx context.Context) ([]content.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *contentRepository) GetItemByID(ctx context.Context, id string) (content.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if it, ok := repo.db.table[id]; ok {
		return *it, nil
	}
	return content.Item{}, content.ErrNotFound
}

func (repo *contentRepository) GetItemBySlug(ctx context.Context, slug string) (content.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, it := range repo.query() {
		if it.Slug == slug {
			return it, nil
		}
	}
	return content.Item{}, content.ErrNotFound
}

func (repo *contentRepository) FilterItems(ctx context.Context, filter content.QueryFilter) ([]content.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]content.Item, 0, len(repo.db.table))
	for _, it := range repo.query() {
		if filter.Kind != "" && it.Kind != filter.Kind {
			continue
		}
		if filter.Search != "" && !itemMatchesSearch(it, filter.Search) {
			continue
		}
		if filter.Published != nil && it.Published != *filter.Published {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (repo *contentRepository) UpdateItem(ctx context.Context, it content.Item, published *bool, order *int) (content.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[it.ID]
	if !ok {
		return content.Item{}, content.ErrNotFound
	}
	if it.Title != "" {
		orig.Title = it.Title
	}
	if it.Slug != "" {
		orig.Slug = it.Slug
	}
	if it.Body != "" {
		orig.Body = it.Body
	}
	if it.Author != "" {
		orig.Author = it.Author
	}
	if published != nil {
		orig.Published = *published
	}
	if it.FileURL != "" {
		orig.FileURL = it.FileURL
	}
	if it.Pages != 0 {
		orig.Pages = it.Pages
	}
	if it.Duration != 0 {
		orig.Duration = it.Duration
	}
	if it.Answer != "" {
		orig.Answer = it.Answer
	}
	if order != nil {
		orig.Order = *order
	}
	if it.Role != "" {
		orig.Role = it.Role
	}
	if it.Rating != 0 {
		orig.Rating = it.Rating
	}
	if !it.UpdatedAt.IsZero() {
		orig.UpdatedAt = it.UpdatedAt
	}

	repo.db.table[it.ID] = orig
	return *orig, nil
}

func (repo *contentRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func itemMatchesSearch(it content.Item, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(it.Title), search) ||
		strings.Contains(strings.ToLower(it.Author), search)
}
