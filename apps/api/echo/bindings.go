package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	PasswordResetConfirmRequest struct {
		UID             string `json:"uid" validate:"required"`
		Token           string `json:"token" validate:"required"`
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	}

	AssignLeadRequest struct {
		AssigneeID string `json:"assignee_id" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (pc *PasswordResetConfirmRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pc)
}

func (ar *AssignLeadRequest) Validate(validate *validator.Validate) error {
	ar.AssigneeID = core.CleanString(ar.AssigneeID)
	return validate.Struct(ar)
}
