package college

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

// Statuses
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusPending  = "PENDING"
)

// Types
const (
	TypeEngineering = "ENGINEERING"
	TypeManagement  = "MANAGEMENT"
	TypeArts        = "ARTS"
	TypeScience     = "SCIENCE"
	TypeOther       = "OTHER"
)

var (
	AllStatuses = []string{StatusActive, StatusInactive, StatusPending}
	AllTypes    = []string{TypeEngineering, TypeManagement, TypeArts, TypeScience, TypeOther}
)

// College is a college record mastered by the upstream platform API and
// mirrored in the local fallback cache.
type College struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	Type            string    `json:"type"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Website         string    `json:"website,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	EstablishedYear int       `json:"established_year,omitempty"`
	// SourceLeadID is a weak back-reference to the Lead this college was
	// converted from. The two lifecycles are independent after conversion.
	SourceLeadID string    `json:"source_lead_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC

	// Fallback marks a write that only reached the local cache.
	// Skipped marks an update that reached neither store.
	// Out-of-band markers; not part of the wire representation.
	Fallback bool `json:"-"`
	Skipped  bool `json:"-"`
}

// NewCollege contains information needed to create a new College.
type NewCollege struct {
	Name            string `json:"name" validate:"required"`
	Status          string `json:"status" validate:"omitempty,collegestatus"`
	Type            string `json:"type" validate:"omitempty,collegetype"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Website         string `json:"website" validate:"omitempty,url"`
	City            string `json:"city"`
	State           string `json:"state"`
	EstablishedYear int    `json:"established_year" validate:"omitempty,min=1800,max=2100"`
	SourceLeadID    string `json:"source_lead_id"`
}

func (nc *NewCollege) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	return validate.Struct(nc)
}

// UpdateCollege defines what information may be provided to modify an existing
// College. Empty fields are left untouched on merge.
type UpdateCollege struct {
	Name            string `json:"name"`
	Status          string `json:"status" validate:"omitempty,collegestatus"`
	Type            string `json:"type" validate:"omitempty,collegetype"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Website         string `json:"website" validate:"omitempty,url"`
	City            string `json:"city"`
	State           string `json:"state"`
	EstablishedYear int    `json:"established_year" validate:"omitempty,min=1800,max=2100"`
}

func (uc *UpdateCollege) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Email = core.CleanString(uc.Email, true /* lower */)
	return validate.Struct(uc)
}

// merge overlays set fields of uc onto c.
func (uc UpdateCollege) merge(c College) College {
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Status != "" {
		c.Status = uc.Status
	}
	if uc.Type != "" {
		c.Type = uc.Type
	}
	if uc.Email != "" {
		c.Email = uc.Email
	}
	if uc.Phone != "" {
		c.Phone = uc.Phone
	}
	if uc.Website != "" {
		c.Website = uc.Website
	}
	if uc.City != "" {
		c.City = uc.City
	}
	if uc.State != "" {
		c.State = uc.State
	}
	if uc.EstablishedYear != 0 {
		c.EstablishedYear = uc.EstablishedYear
	}
	return c
}
