package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/upskillway/crm/core/trainer"
)

type trainerRepository struct {
	trainers *trainerTable
	bookings *bookingTable
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(db *DB) *trainerRepository {
	return &trainerRepository{trainers: db.trainer, bookings: db.booking}
}

func (repo *trainerRepository) CreateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	repo.trainers.mutex.Lock()
	defer repo.trainers.mutex.Unlock()

	t.ID = uuid.New().String()
	repo.trainers.table[t.ID] = &t
	return t, nil
}

func (repo *trainerRepository) QueryAllTrainers(ctx context.Context) ([]trainer.Trainer, error) {
	repo.trainers.mutex.RLock()
	defer repo.trainers.mutex.RUnlock()

	trainers := make([]trainer.Trainer, 0, len(repo.trainers.table))
	for _, t := range repo.trainers.table {
		trainers = append(trainers, *t)
	}
	return trainers, nil
}

func (repo *trainerRepository) GetTrainerByID(ctx context.Context, id string) (trainer.Trainer, error) {
	repo.trainers.mutex.RLock()
	defer repo.trainers.mutex.RUnlock()

	if t, ok := repo.trainers.table[id]; ok {
		return *t, nil
	}
	return trainer.Trainer{}, trainer.ErrNotFound
}

func (repo *trainerRepository) UpdateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	repo.trainers.mutex.Lock()
	defer repo.trainers.mutex.Unlock()

	// only save set fields
	orig, ok := repo.trainers.table[t.ID]
	if !ok {
		return trainer.Trainer{}, trainer.ErrNotFound
	}
	if t.Name != "" {
		orig.Name = t.Name
	}
	if t.Email != "" {
		orig.Email = t.Email
	}
	if t.Phone != "" {
		orig.Phone = t.Phone
	}
	if t.Expertise != nil {
		orig.Expertise = t.Expertise
	}
	if t.Status != "" {
		orig.Status = t.Status
	}
	if !t.UpdatedAt.IsZero() {
		orig.UpdatedAt = t.UpdatedAt
	}

	repo.trainers.table[t.ID] = orig
	return *orig, nil
}

func (repo *trainerRepository) DeleteTrainersByID(ctx context.Context, ids ...string) error {
	repo.trainers.mutex.Lock()
	defer repo.trainers.mutex.Unlock()
	for _, id := range ids {
		delete(repo.trainers.table, id)
	}
	return nil
}

func (repo *trainerRepository) CreateBooking(ctx context.Context, b trainer.Booking) (trainer.Booking, error) {
	repo.bookings.mutex.Lock()
	defer repo.bookings.mutex.Unlock()

	b.ID = uuid.New().String()
	repo.bookings.table[b.ID] = &b
	return b, nil
}

func (repo *trainerRepository) QueryBookingsByTrainer(ctx context.Context, trainerID string) ([]trainer.Booking, error) {
	repo.bookings.mutex.RLock()
	defer repo.bookings.mutex.RUnlock()

	bookings := make([]trainer.Booking, 0, len(repo.bookings.table))
	for _, b := range repo.bookings.table {
		if b.TrainerID == trainerID {
			bookings = append(bookings, *b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartsAt.Before(bookings[j].StartsAt) })
	return bookings, nil
}

func (repo *trainerRepository) GetBookingByID(ctx context.Context, id string) (trainer.Booking, error) {
	repo.bookings.mutex.RLock()
	defer repo.bookings.mutex.RUnlock()

	if b, ok := repo.bookings.table[id]; ok {
		return *b, nil
	}
	return trainer.Booking{}, trainer.ErrBookingNotFound
}

func (repo *trainerRepository) UpdateBooking(ctx context.Context, b trainer.Booking) (trainer.Booking, error) {
	repo.bookings.mutex.Lock()
	defer repo.bookings.mutex.Unlock()

	orig, ok := repo.bookings.table[b.ID]
	if !ok {
		return trainer.Booking{}, trainer.ErrBookingNotFound
	}
	if b.Status != "" {
		orig.Status = b.Status
	}
	if !b.UpdatedAt.IsZero() {
		orig.UpdatedAt = b.UpdatedAt
	}

	repo.bookings.table[b.ID] = orig
	return *orig, nil
}
