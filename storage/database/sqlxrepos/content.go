package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/upskillway/crm/core/content"
)

type contentRow struct {
	ID        string      `db:"id"`
	Kind      string      `db:"kind"`
	Title     string      `db:"title"`
	Slug      null.String `db:"slug"`
	Body      null.String `db:"body"`
	Author    null.String `db:"author"`
	Published bool        `db:"published"`
	FileURL   null.String `db:"file_url"`
	Pages     null.Int    `db:"pages"`
	Duration  null.Int    `db:"duration"`
	Answer    null.String `db:"answer"`
	Ordering  null.Int    `db:"ordering"`
	Role      null.String `db:"role"`
	Rating    null.Int    `db:"rating"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r contentRow) toItem() content.Item {
	return content.Item{
		ID:        r.ID,
		Kind:      r.Kind,
		Title:     r.Title,
		Slug:      r.Slug.String,
		Body:      r.Body.String,
		Author:    r.Author.String,
		Published: r.Published,
		FileURL:   r.FileURL.String,
		Pages:     r.Pages.Int,
		Duration:  r.Duration.Int,
		Answer:    r.Answer.String,
		Order:     r.Ordering.Int,
		Role:      r.Role.String,
		Rating:    r.Rating.Int,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func toContentRow(it content.Item) contentRow {
	return contentRow{
		ID:        it.ID,
		Kind:      it.Kind,
		Title:     it.Title,
		Slug:      null.NewString(it.Slug, it.Slug != ""),
		Body:      null.NewString(it.Body, it.Body != ""),
		Author:    null.NewString(it.Author, it.Author != ""),
		Published: it.Published,
		FileURL:   null.NewString(it.FileURL, it.FileURL != ""),
		Pages:     null.NewInt(it.Pages, it.Pages != 0),
		Duration:  null.NewInt(it.Duration, it.Duration != 0),
		Answer:    null.NewString(it.Answer, it.Answer != ""),
		Ordering:  null.NewInt(it.Order, it.Order != 0),
		Role:      null.NewString(it.Role, it.Role != ""),
		Rating:    null.NewInt(it.Rating, it.Rating != 0),
		CreatedAt: null.NewTime(it.CreatedAt.UTC(), !it.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(it.UpdatedAt.UTC(), !it.UpdatedAt.IsZero()),
	}
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(db *sqlx.DB) *contentRepository {
	return &contentRepository{db: db}
}

func (repo contentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return content.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo contentRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedItems ...content.Item) error {
	q := `SELECT COUNT(*) FROM content_item WHERE slug = $1`
	args := []interface{}{slug}
	if len(excludedItems) > 0 {
		ids := make([]string, 0, len(excludedItems))
		for _, it := range excludedItems {
			ids = append(ids, it.ID)
		}
		q += ` AND NOT (id = ANY($2))`
		args = append(args, pq.StringArray(ids))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if count > 0 {
		return content.ErrSlugExists
	}
	return nil
}

func (repo contentRepository) CreateItem(ctx context.Context, it content.Item) (content.Item, error) {
	it.ID = uuid.New().String()
	row := toContentRow(it)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO content_item (id, kind, title, slug, body, author, published, file_url, pages, duration, answer, ordering, role, rating, created_at, updated_at)
		VALUES (:id, :kind, :title, :slug, :body, :author, :published, :file_url, :pages, :duration, :answer, :ordering, :role, :rating, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return content.Item{}, errors.Wrap(err, "inserting content item")
	}
	return it, nil
}

func (repo contentRepository) QueryAllItems(ctx context.Context) ([]content.Item, error) {
	var rows []contentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM content_item ORDER BY ordering, created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying content items")
	}
	return rowsToItems(rows), nil
}

func (repo contentRepository) GetItemByID(ctx context.Context, id string) (content.Item, error) {
	var row contentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM content_item WHERE id = $1`, id); err != nil {
		return content.Item{}, repo.trapNoRowsErr(err, "getting content item by id")
	}
	return row.toItem(), nil
}

func (repo contentRepository) GetItemBySlug(ctx context.Context, slug string) (content.Item, error) {
	var row contentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM content_item WHERE slug = $1`, slug); err != nil {
		return content.Item{}, repo.trapNoRowsErr(err, "getting content item by slug")
	}
	return row.toItem(), nil
}

func (repo contentRepository) FilterItems(ctx context.Context, filter content.QueryFilter) ([]content.Item, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Kind != "" {
		conds = append(conds, "kind = "+arg(filter.Kind))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR author ILIKE %s)", p, p))
	}
	if filter.Published != nil {
		conds = append(conds, "published = "+arg(*filter.Published))
	}

	q := `SELECT * FROM content_item`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY ordering, created_at DESC"

	var rows []contentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering content items")
	}
	return rowsToItems(rows), nil
}

func (repo contentRepository) UpdateItem(ctx context.Context, it content.Item, published *bool, order *int) (content.Item, error) {
	sets := make([]string, 0, 12)
	args := make([]interface{}, 0, 12)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if it.Title != "" {
		sets = append(sets, "title = "+arg(it.Title))
	}
	if it.Slug != "" {
		sets = append(sets, "slug = "+arg(it.Slug))
	}
	if it.Body != "" {
		sets = append(sets, "body = "+arg(it.Body))
	}
	if it.Author != "" {
		sets = append(sets, "author = "+arg(it.Author))
	}
	if published != nil {
		sets = append(sets, "published = "+arg(*published))
	}
	if it.FileURL != "" {
		sets = append(sets, "file_url = "+arg(it.FileURL))
	}
	if it.Pages != 0 {
		sets = append(sets, "pages = "+arg(it.Pages))
	}
	if it.Duration != 0 {
		sets = append(sets, "duration = "+arg(it.Duration))
	}
	if it.Answer != "" {
		sets = append(sets, "answer = "+arg(it.Answer))
	}
	if order != nil {
		sets = append(sets, "ordering = "+arg(*order))
	}
	if it.Role != "" {
		sets = append(sets, "role = "+arg(it.Role))
	}
	if it.Rating != 0 {
		sets = append(sets, "rating = "+arg(it.Rating))
	}
	if !it.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(it.UpdatedAt.UTC()))
	}
	if len(sets) == 0 {
		return repo.GetItemByID(ctx, it.ID)
	}

	q := fmt.Sprintf(`UPDATE content_item SET %s WHERE id = %s`, strings.Join(sets, ", "), arg(it.ID))
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return content.Item{}, errors.Wrap(err, "updating content item")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.Item{}, content.ErrNotFound
	}
	return repo.GetItemByID(ctx, it.ID)
}

func (repo contentRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM content_item WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting content items")
}

func rowsToItems(rows []contentRow) []content.Item {
	items := make([]content.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items
}
