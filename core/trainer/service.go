package trainer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/upskillway/crm/core"
)

var (
	// errors
	ErrNotFound        = errors.New("trainer not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotTaken       = errors.New("trainer already booked for this time range")
)

type (
	Repository interface {
		CreateTrainer(ctx context.Context, t Trainer) (Trainer, error)
		QueryAllTrainers(ctx context.Context) ([]Trainer, error)
		GetTrainerByID(ctx context.Context, id string) (Trainer, error)
		UpdateTrainer(ctx context.Context, t Trainer) (Trainer, error)
		DeleteTrainersByID(ctx context.Context, ids ...string) error

		CreateBooking(ctx context.Context, b Booking) (Booking, error)
		QueryBookingsByTrainer(ctx context.Context, trainerID string) ([]Booking, error)
		GetBookingByID(ctx context.Context, id string) (Booking, error)
		UpdateBooking(ctx context.Context, b Booking) (Booking, error)
	}

	Service interface {
		Create(ctx context.Context, nt NewTrainer) (Trainer, error)
		QueryAll(ctx context.Context) ([]Trainer, error)
		GetByID(ctx context.Context, id string) (Trainer, error)
		Update(ctx context.Context, id string, ut UpdateTrainer) (Trainer, error)
		Delete(ctx context.Context, ids ...string) error

		Book(ctx context.Context, nb NewBooking) (Booking, error)
		ConfirmBooking(ctx context.Context, id string) (Booking, error)
		CompleteBooking(ctx context.Context, id string) (Booking, error)
		CancelBooking(ctx context.Context, id string) (Booking, error)
		Bookings(ctx context.Context, trainerID string) ([]Booking, error)
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (svc *service) Create(ctx context.Context, nt NewTrainer) (Trainer, error) {
	now := time.Now().UTC()
	t := Trainer{
		Name:      nt.Name,
		Email:     nt.Email,
		Phone:     nt.Phone,
		Expertise: nt.Expertise,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTrainer(ctx, t)
}

func (svc *service) QueryAll(ctx context.Context) ([]Trainer, error) {
	return svc.repo.QueryAllTrainers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Trainer, error) {
	return svc.repo.GetTrainerByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTrainer) (Trainer, error) {
	t := Trainer{
		ID:        id,
		Name:      ut.Name,
		Email:     ut.Email,
		Phone:     ut.Phone,
		Expertise: ut.Expertise,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateTrainer(ctx, t)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTrainersByID(ctx, ids...)
}

// Book creates a PENDING booking after rejecting overlaps with the trainer's
// other active bookings.
func (svc *service) Book(ctx context.Context, nb NewBooking) (Booking, error) {
	if _, err := svc.repo.GetTrainerByID(ctx, nb.TrainerID); err != nil {
		return Booking{}, err
	}

	existing, err := svc.repo.QueryBookingsByTrainer(ctx, nb.TrainerID)
	if err != nil {
		return Booking{}, err
	}
	for _, b := range existing {
		if b.IsActive() && b.Overlaps(nb.StartsAt, nb.EndsAt) {
			return Booking{}, core.NewValidationError(ErrSlotTaken, core.FieldError{Field: "starts_at", Error: ErrSlotTaken.Error()})
		}
	}

	now := time.Now().UTC()
	b := Booking{
		TrainerID: nb.TrainerID,
		CollegeID: nb.CollegeID,
		Topic:     nb.Topic,
		StartsAt:  nb.StartsAt.UTC(),
		EndsAt:    nb.EndsAt.UTC(),
		Status:    BookingPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBooking(ctx, b)
}

func (svc *service) ConfirmBooking(ctx context.Context, id string) (Booking, error) {
	b, err := svc.setBookingStatus(ctx, id, BookingConfirmed)
	if err != nil {
		return Booking{}, err
	}
	// a confirmed booking holds the trainer
	if err := svc.setTrainerStatus(ctx, b.TrainerID, StatusBusy); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (svc *service) CompleteBooking(ctx context.Context, id string) (Booking, error) {
	return svc.releaseBooking(ctx, id, BookingCompleted)
}

func (svc *service) CancelBooking(ctx context.Context, id string) (Booking, error) {
	return svc.releaseBooking(ctx, id, BookingCancelled)
}

func (svc *service) Bookings(ctx context.Context, trainerID string) ([]Booking, error) {
	return svc.repo.QueryBookingsByTrainer(ctx, trainerID)
}

// releaseBooking closes a booking and frees the trainer when no other
// confirmed booking remains.
func (svc *service) releaseBooking(ctx context.Context, id, status string) (Booking, error) {
	b, err := svc.setBookingStatus(ctx, id, status)
	if err != nil {
		return Booking{}, err
	}

	remaining, err := svc.repo.QueryBookingsByTrainer(ctx, b.TrainerID)
	if err != nil {
		return Booking{}, err
	}
	for _, other := range remaining {
		if other.ID != b.ID && other.Status == BookingConfirmed {
			return b, nil
		}
	}
	if err := svc.setTrainerStatus(ctx, b.TrainerID, StatusAvailable); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (svc *service) setBookingStatus(ctx context.Context, id, status string) (Booking, error) {
	b, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBooking(ctx, b)
}

func (svc *service) setTrainerStatus(ctx context.Context, id, status string) error {
	_, err := svc.repo.UpdateTrainer(ctx, Trainer{ID: id, Status: status, UpdatedAt: time.Now().UTC()})
	return errors.Wrap(err, "updating trainer status")
}
