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

	"github.com/upskillway/crm/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name.String,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		LastLogin:    r.LastLogin.Time,
	}
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.IsActive,
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += ` AND NOT (id = ANY($3))`
		args = append(args, pq.StringArray(ids))
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if username != "" && r.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && r.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := toUserRow(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`,
		row,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return rowsToUsers(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE username = $1`, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by username")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE username = $1 OR email = $1`, username)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by username or email")
	}
	return row.toUser(), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		p := arg(val)
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR username ILIKE %s OR email ILIKE %s)", p, p, p))
	}
	// users with any role that starts with any of the provided roles
	if len(filter.Roles) > 0 {
		roleConds := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roleConds = append(roleConds, fmt.Sprintf(
				`id IN (SELECT id FROM "user", UNNEST(roles) user_role WHERE user_role ILIKE %s)`, arg(role+"%")))
		}
		conds = append(conds, "("+strings.Join(roleConds, " OR ")+")")
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	q := `SELECT * FROM "user"`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return rowsToUsers(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if usr.Name != "" {
		sets = append(sets, "name = "+arg(usr.Name))
	}
	if usr.Username != "" {
		sets = append(sets, "username = "+arg(usr.Username))
	}
	if usr.Email != "" {
		sets = append(sets, "email = "+arg(usr.Email))
	}
	if usr.Roles != nil {
		sets = append(sets, "roles = "+arg(pq.StringArray(usr.Roles)))
	}
	if usr.PasswordHash != nil {
		sets = append(sets, "password_hash = "+arg(usr.PasswordHash))
	}
	if isActive != nil {
		sets = append(sets, "is_active = "+arg(*isActive))
	}
	if !usr.LastLogin.IsZero() {
		sets = append(sets, "last_login = "+arg(usr.LastLogin.UTC()))
	}
	if !usr.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(usr.UpdatedAt.UTC()))
	}
	if len(sets) == 0 {
		return repo.GetUserByID(ctx, usr.ID)
	}

	q := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = %s`, strings.Join(sets, ", "), arg(usr.ID))
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	updated, err := repo.UpdateUser(ctx, usr, &usr.IsActive)
	if errors.Cause(err) == user.ErrNotFound {
		return repo.CreateUser(ctx, usr)
	}
	return updated, err
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting users")
}

func rowsToUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users
}
