package lead

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

// Statuses, in ladder order.
const (
	StatusNew            = "NEW"
	StatusStart          = "START"
	StatusQualified      = "QUALIFIED"
	StatusInProgress     = "IN_PROGRESS"
	StatusInConversation = "IN_CONVERSATION"
	StatusActive         = "ACTIVE"
	StatusConverted      = "CONVERTED"
	StatusLost           = "LOST"
)

var AllStatuses = []string{
	StatusNew, StatusStart, StatusQualified, StatusInProgress,
	StatusInConversation, StatusActive, StatusConverted, StatusLost,
}

// Lead is a prospective college captured by sales/marketing.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CollegeName string    `json:"college_name,omitempty"`
	Source      string    `json:"source,omitempty"`
	Status      string    `json:"status"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// IsClosed reports whether the lead reached a terminal status.
func (l Lead) IsClosed() bool {
	return l.Status == StatusConverted || l.Status == StatusLost
}

// NewLead contains information needed to capture a new Lead.
type NewLead struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7,max=20"`
	CollegeName string `json:"college_name"`
	Source      string `json:"source"`
	AssigneeID  string `json:"assignee_id"`
	Notes       string `json:"notes"`
}

func (nl *NewLead) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	return validate.Struct(nl)
}

// UpdateLead defines what information may be provided to modify an existing
// Lead. Empty fields are left untouched.
type UpdateLead struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7,max=20"`
	CollegeName string `json:"college_name"`
	Source      string `json:"source"`
	Status      string `json:"status" validate:"omitempty,leadstatus"`
	AssigneeID  string `json:"assignee_id"`
	Notes       string `json:"notes"`
}

func (ul *UpdateLead) Validate(validate *validator.Validate) error {
	ul.Name = core.CleanString(ul.Name)
	ul.Email = core.CleanString(ul.Email, true /* lower */)
	return validate.Struct(ul)
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of Name, Email or CollegeName.
	Search      string
	Statuses    []string
	AssigneeID  string
	CreatedFrom time.Time
	CreatedTo   time.Time
}
