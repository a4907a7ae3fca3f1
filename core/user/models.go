package user

import (
	"net/mail"
	"time"

	"github.com/trezcool/gymleague/core"
)

// Roles
const (
	RoleAdmin     = "admin"
	RoleGymAdmin  = "gym_admin"
	RoleCoach     = "coach"
	RoleGymnast   = "gymnast"
	RoleSpectator = "spectator"
)

var (
	AllRoles   = []string{RoleAdmin, RoleGymAdmin, RoleCoach, RoleGymnast, RoleSpectator}
	StaffRoles = []string{RoleGymAdmin, RoleCoach}

	Roles = []Role{
		{Name: "Spectator", Value: RoleSpectator},
		{Name: "Gymnast", Value: RoleGymnast},
		{Name: "Coach", Value: RoleCoach},
		{Name: "Gym Admin", Value: RoleGymAdmin},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

func (u User) IsZero() bool { return u.ID == "" }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsStaff reports whether u may be associated with gyms.
func (u User) IsStaff() bool { return u.Role == RoleCoach || u.Role == RoleGymAdmin }

func (u User) Address() mail.Address {
	return mail.Address{Name: u.Name, Address: u.Email}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name  string `json:"name" validate:"required,notblank,max=150"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,role"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
}

type UpdateRole struct {
	Role string `json:"role" validate:"required,role"`
}

type QueryFilter struct {
	Search string   `query:"search"`
	Roles  []string `query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
