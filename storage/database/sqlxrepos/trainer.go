package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/upskillway/crm/core/trainer"
)

type trainerRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Email     string         `db:"email"`
	Phone     null.String    `db:"phone"`
	Expertise pq.StringArray `db:"expertise"`
	Status    string         `db:"status"`
	CreatedAt null.Time      `db:"created_at"`
	UpdatedAt null.Time      `db:"updated_at"`
}

func (r trainerRow) toTrainer() trainer.Trainer {
	return trainer.Trainer{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone.String,
		Expertise: r.Expertise,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type bookingRow struct {
	ID        string    `db:"id"`
	TrainerID string    `db:"trainer_id"`
	CollegeID string    `db:"college_id"`
	Topic     string    `db:"topic"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	Status    string    `db:"status"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (r bookingRow) toBooking() trainer.Booking {
	return trainer.Booking{
		ID:        r.ID,
		TrainerID: r.TrainerID,
		CollegeID: r.CollegeID,
		Topic:     r.Topic,
		StartsAt:  r.StartsAt,
		EndsAt:    r.EndsAt,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type trainerRepository struct {
	db *sqlx.DB
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(db *sqlx.DB) *trainerRepository {
	return &trainerRepository{db: db}
}

func (repo trainerRepository) CreateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	t.ID = uuid.New().String()
	row := trainerRow{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Phone:     null.NewString(t.Phone, t.Phone != ""),
		Expertise: t.Expertise,
		Status:    t.Status,
		CreatedAt: null.NewTime(t.CreatedAt.UTC(), !t.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(t.UpdatedAt.UTC(), !t.UpdatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO trainer (id, name, email, phone, expertise, status, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :expertise, :status, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return trainer.Trainer{}, errors.Wrap(err, "inserting trainer")
	}
	return t, nil
}

func (repo trainerRepository) QueryAllTrainers(ctx context.Context) ([]trainer.Trainer, error) {
	var rows []trainerRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM trainer ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying trainers")
	}
	trainers := make([]trainer.Trainer, 0, len(rows))
	for _, r := range rows {
		trainers = append(trainers, r.toTrainer())
	}
	return trainers, nil
}

func (repo trainerRepository) GetTrainerByID(ctx context.Context, id string) (trainer.Trainer, error) {
	var row trainerRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM trainer WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return trainer.Trainer{}, trainer.ErrNotFound
		}
		return trainer.Trainer{}, errors.Wrap(err, "getting trainer by id")
	}
	return row.toTrainer(), nil
}

func (repo trainerRepository) UpdateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if t.Name != "" {
		sets = append(sets, "name = "+arg(t.Name))
	}
	if t.Email != "" {
		sets = append(sets, "email = "+arg(t.Email))
	}
	if t.Phone != "" {
		sets = append(sets, "phone = "+arg(t.Phone))
	}
	if t.Expertise != nil {
		sets = append(sets, "expertise = "+arg(pq.StringArray(t.Expertise)))
	}
	if t.Status != "" {
		sets = append(sets, "status = "+arg(t.Status))
	}
	if !t.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(t.UpdatedAt.UTC()))
	}
	if len(sets) == 0 {
		return repo.GetTrainerByID(ctx, t.ID)
	}

	q := fmt.Sprintf(`UPDATE trainer SET %s WHERE id = %s`, strings.Join(sets, ", "), arg(t.ID))
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return trainer.Trainer{}, errors.Wrap(err, "updating trainer")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return trainer.Trainer{}, trainer.ErrNotFound
	}
	return repo.GetTrainerByID(ctx, t.ID)
}

func (repo trainerRepository) DeleteTrainersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM trainer WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting trainers")
}

func (repo trainerRepository) CreateBooking(ctx context.Context, b trainer.Booking) (trainer.Booking, error) {
	b.ID = uuid.New().String()
	row := bookingRow{
		ID:        b.ID,
		TrainerID: b.TrainerID,
		CollegeID: b.CollegeID,
		Topic:     b.Topic,
		StartsAt:  b.StartsAt.UTC(),
		EndsAt:    b.EndsAt.UTC(),
		Status:    b.Status,
		CreatedAt: null.NewTime(b.CreatedAt.UTC(), !b.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(b.UpdatedAt.UTC(), !b.UpdatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO booking (id, trainer_id, college_id, topic, starts_at, ends_at, status, created_at, updated_at)
		VALUES (:id, :trainer_id, :college_id, :topic, :starts_at, :ends_at, :status, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return trainer.Booking{}, errors.Wrap(err, "inserting booking")
	}
	return b, nil
}

func (repo trainerRepository) QueryBookingsByTrainer(ctx context.Context, trainerID string) ([]trainer.Booking, error) {
	var rows []bookingRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM booking WHERE trainer_id = $1 ORDER BY starts_at`, trainerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying bookings")
	}
	bookings := make([]trainer.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.toBooking())
	}
	return bookings, nil
}

func (repo trainerRepository) GetBookingByID(ctx context.Context, id string) (trainer.Booking, error) {
	var row bookingRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM booking WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return trainer.Booking{}, trainer.ErrBookingNotFound
		}
		return trainer.Booking{}, errors.Wrap(err, "getting booking by id")
	}
	return row.toBooking(), nil
}

func (repo trainerRepository) UpdateBooking(ctx context.Context, b trainer.Booking) (trainer.Booking, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE booking SET status = $1, updated_at = $2 WHERE id = $3`,
		b.Status, b.UpdatedAt.UTC(), b.ID,
	)
	if err != nil {
		return trainer.Booking{}, errors.Wrap(err, "updating booking")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return trainer.Booking{}, trainer.ErrBookingNotFound
	}
	return b, nil
}
