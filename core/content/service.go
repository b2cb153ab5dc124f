package content

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/upskillway/crm/core"
)

var (
	// errors
	ErrNotFound   = errors.New("content item not found")
	ErrSlugExists = errors.New("a content item with this slug already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string, excludedItems ...Item) error
		CreateItem(ctx context.Context, it Item) (Item, error)
		QueryAllItems(ctx context.Context) ([]Item, error)
		GetItemByID(ctx context.Context, id string) (Item, error)
		GetItemBySlug(ctx context.Context, slug string) (Item, error)
		// FilterItems applies AND operation on available QueryFilter fields.
		FilterItems(ctx context.Context, filter QueryFilter) ([]Item, error)
		UpdateItem(ctx context.Context, it Item, published *bool, order *int) (Item, error)
		DeleteItemsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, ni NewItem) (Item, error)
		QueryAll(ctx context.Context) ([]Item, error)
		GetByID(ctx context.Context, id string) (Item, error)
		GetBySlug(ctx context.Context, slug string) (Item, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Item, error)
		Update(ctx context.Context, id string, ui UpdateItem) (Item, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

func (svc *service) checkSlugUniqueness(ctx context.Context, slug string, exclItems ...Item) error {
	if err := svc.repo.CheckSlugUniqueness(ctx, slug, exclItems...); err != nil {
		if errors.Cause(err) == ErrSlugExists {
			return core.NewValidationError(err, core.FieldError{Field: "slug", Error: err.Error()})
		}
		return err
	}
	return nil
}

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ni NewItem) (Item, error) {
	if ni.Slug != "" {
		if err := svc.checkSlugUniqueness(ctx, ni.Slug); err != nil {
			return Item{}, err
		}
	}
	now := time.Now().UTC()
	it := Item{
		Kind:      ni.Kind,
		Title:     ni.Title,
		Slug:      ni.Slug,
		Body:      ni.Body,
		Author:    ni.Author,
		Published: ni.Published,
		FileURL:   ni.FileURL,
		Pages:     ni.Pages,
		Duration:  ni.Duration,
		Answer:    ni.Answer,
		Order:     ni.Order,
		Role:      ni.Role,
		Rating:    ni.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateItem(ctx, it)
}

func (svc *service) QueryAll(ctx context.Context) ([]Item, error) {
	return svc.repo.QueryAllItems(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Item, error) {
	return svc.repo.GetItemByID(ctx, id)
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Item, error) {
	return svc.repo.GetItemBySlug(ctx, slug)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Item, error) {
	return svc.repo.FilterItems(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, ui UpdateItem) (Item, error) {
	orig, err := svc.repo.GetItemByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if ui.Slug != "" && ui.Slug != orig.Slug {
		if err := svc.checkSlugUniqueness(ctx, ui.Slug, orig); err != nil {
			return Item{}, err
		}
	}
	it := Item{
		ID:       id,
		Title:    ui.Title,
		Slug:     ui.Slug,
		Body:     ui.Body,
		Author:   ui.Author,
		FileURL:  ui.FileURL,
		Pages:    ui.Pages,
		Duration: ui.Duration,
		Answer:   ui.Answer,
		Role:     ui.Role,
		Rating:   ui.Rating,

		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateItem(ctx, it, ui.Published, ui.Order)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteItemsByID(ctx, ids...)
}
