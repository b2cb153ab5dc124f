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

	"github.com/upskillway/crm/core/lead"
)

type leadRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Email       null.String `db:"email"`
	Phone       null.String `db:"phone"`
	CollegeName null.String `db:"college_name"`
	Source      null.String `db:"source"`
	Status      string      `db:"status"`
	AssigneeID  null.String `db:"assignee_id"`
	Notes       null.String `db:"notes"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r leadRow) toLead() lead.Lead {
	return lead.Lead{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email.String,
		Phone:       r.Phone.String,
		CollegeName: r.CollegeName.String,
		Source:      r.Source.String,
		Status:      r.Status,
		AssigneeID:  r.AssigneeID.String,
		Notes:       r.Notes.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func toLeadRow(l lead.Lead) leadRow {
	return leadRow{
		ID:          l.ID,
		Name:        l.Name,
		Email:       null.NewString(l.Email, l.Email != ""),
		Phone:       null.NewString(l.Phone, l.Phone != ""),
		CollegeName: null.NewString(l.CollegeName, l.CollegeName != ""),
		Source:      null.NewString(l.Source, l.Source != ""),
		Status:      l.Status,
		AssigneeID:  null.NewString(l.AssigneeID, l.AssigneeID != ""),
		Notes:       null.NewString(l.Notes, l.Notes != ""),
		CreatedAt:   null.NewTime(l.CreatedAt.UTC(), !l.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(l.UpdatedAt.UTC(), !l.UpdatedAt.IsZero()),
	}
}

type leadRepository struct {
	db *sqlx.DB
}

var _ lead.Repository = (*leadRepository)(nil)

func NewLeadRepository(db *sqlx.DB) *leadRepository {
	return &leadRepository{db: db}
}

func (repo leadRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return lead.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo leadRepository) CreateLead(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	l.ID = uuid.New().String()
	row := toLeadRow(l)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO lead (id, name, email, phone, college_name, source, status, assignee_id, notes, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :college_name, :source, :status, :assignee_id, :notes, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "inserting lead")
	}
	return l, nil
}

func (repo leadRepository) QueryAllLeads(ctx context.Context) ([]lead.Lead, error) {
	var rows []leadRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM lead ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying leads")
	}
	return rowsToLeads(rows), nil
}

func (repo leadRepository) GetLeadByID(ctx context.Context, id string) (lead.Lead, error) {
	var row leadRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lead WHERE id = $1`, id); err != nil {
		return lead.Lead{}, repo.trapNoRowsErr(err, "getting lead by id")
	}
	return row.toLead(), nil
}

func (repo leadRepository) FilterLeads(ctx context.Context, filter lead.QueryFilter) ([]lead.Lead, error) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR college_name ILIKE %s)", p, p, p))
	}
	if len(filter.Statuses) > 0 {
		conds = append(conds, "status = ANY("+arg(pq.StringArray(filter.Statuses))+")")
	}
	if filter.AssigneeID != "" {
		conds = append(conds, "assignee_id = "+arg(filter.AssigneeID))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	q := `SELECT * FROM lead`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var rows []leadRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering leads")
	}
	return rowsToLeads(rows), nil
}

func (repo leadRepository) UpdateLead(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	sets := make([]string, 0, 9)
	args := make([]interface{}, 0, 9)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if l.Name != "" {
		sets = append(sets, "name = "+arg(l.Name))
	}
	if l.Email != "" {
		sets = append(sets, "email = "+arg(l.Email))
	}
	if l.Phone != "" {
		sets = append(sets, "phone = "+arg(l.Phone))
	}
	if l.CollegeName != "" {
		sets = append(sets, "college_name = "+arg(l.CollegeName))
	}
	if l.Source != "" {
		sets = append(sets, "source = "+arg(l.Source))
	}
	if l.Status != "" {
		sets = append(sets, "status = "+arg(l.Status))
	}
	if l.AssigneeID != "" {
		sets = append(sets, "assignee_id = "+arg(l.AssigneeID))
	}
	if l.Notes != "" {
		sets = append(sets, "notes = "+arg(l.Notes))
	}
	if !l.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(l.UpdatedAt.UTC()))
	}
	if len(sets) == 0 {
		return repo.GetLeadByID(ctx, l.ID)
	}

	q := fmt.Sprintf(`UPDATE lead SET %s WHERE id = %s`, strings.Join(sets, ", "), arg(l.ID))
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "updating lead")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lead.Lead{}, lead.ErrNotFound
	}
	return repo.GetLeadByID(ctx, l.ID)
}

func (repo leadRepository) DeleteLeadsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM lead WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting leads")
}

func rowsToLeads(rows []leadRow) []lead.Lead {
	leads := make([]lead.Lead, 0, len(rows))
	for _, r := range rows {
		leads = append(leads, r.toLead())
	}
	return leads
}
