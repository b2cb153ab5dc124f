package trainer

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

// Trainer statuses
const (
	StatusAvailable = "AVAILABLE"
	StatusBusy      = "BUSY"
)

// Booking statuses
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
)

var (
	AllStatuses        = []string{StatusAvailable, StatusBusy}
	AllBookingStatuses = []string{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled}
)

// Trainer delivers training sessions booked by colleges.
type Trainer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Expertise []string  `json:"expertise,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Booking reserves a Trainer for a college over a time range.
type Booking struct {
	ID        string    `json:"id"`
	TrainerID string    `json:"trainer_id"`
	CollegeID string    `json:"college_id"`
	Topic     string    `json:"topic"`
	StartsAt  time.Time `json:"starts_at"` // UTC
	EndsAt    time.Time `json:"ends_at"`   // UTC
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// IsActive reports whether the booking still holds the trainer.
func (b Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// Overlaps reports whether two time ranges intersect.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartsAt.Before(end) && start.Before(b.EndsAt)
}

// NewTrainer contains information needed to register a new Trainer.
type NewTrainer struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone" validate:"omitempty,min=7,max=20"`
	Expertise []string `json:"expertise"`
}

func (nt *NewTrainer) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

// UpdateTrainer defines what information may be provided to modify an
// existing Trainer. Empty fields are left untouched.
type UpdateTrainer struct {
	Name      string   `json:"name"`
	Email     string   `json:"email" validate:"omitempty,email"`
	Phone     string   `json:"phone" validate:"omitempty,min=7,max=20"`
	Expertise []string `json:"expertise"`
}

func (ut *UpdateTrainer) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	return validate.Struct(ut)
}

// NewBooking contains information needed to book a Trainer.
type NewBooking struct {
	TrainerID string    `json:"trainer_id" validate:"required"`
	CollegeID string    `json:"college_id" validate:"required"`
	Topic     string    `json:"topic" validate:"required"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (nb *NewBooking) Validate(validate *validator.Validate) error {
	nb.Topic = core.CleanString(nb.Topic)
	return validate.Struct(nb)
}
