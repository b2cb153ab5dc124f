package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/upskillway/crm/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Manager
	RoleManager = "manager:"

	// Counselor
	RoleCounselor = "counselor:"
)

var (
	AdminRoles     = []string{RoleAdmin, RoleAdminOwner}
	ManagerRoles   = []string{RoleManager}
	CounselorRoles = []string{RoleCounselor}
	AllRoles       = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Managers: 20 - 11
		RoleManager: 11,

		// Counselors: 10 - 1
		RoleCounselor: 1,
	}

	Roles = []Role{
		{Name: "Counselor", Value: RoleCounselor},
		{Name: "Manager", Value: RoleManager},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 4)
	all = append(all, AdminRoles...)
	all = append(all, ManagerRoles...)
	all = append(all, CounselorRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsManager() bool {
	return u.RoleStartsWith(RoleManager)
}

func (u *User) IsCounselor() bool {
	return u.RoleStartsWith(RoleCounselor)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty,required_with=PasswordConfirm"`
	PasswordConfirm string   `json:"password_confirm" validate:"eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate, svc Service, orig User) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Username = core.CleanString(uu.Username, true /* lower */)
	uu.Email = core.CleanString(uu.Email, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Username != "" || uu.Email != "" {
		return svc.CheckUniqueness(uu.Username, uu.Email, orig)
	}
	return nil
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of Name, Username or Email.
	Search      string
	Roles       []string
	IsActive    *bool
	CreatedFrom time.Time
	CreatedTo   time.Time
}
