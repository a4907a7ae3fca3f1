package gym

import (
	"time"

	"github.com/trezcool/gymleague/core"
)

type Gym struct {
	ID                    string    `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	City                  string    `json:"city" db:"city"`
	Email                 string    `json:"email" db:"email"`
	Approved              bool      `json:"approved" db:"approved"`
	MembershipPaid        bool      `json:"membershipPaid" db:"membership_paid"`
	AllowSelfRegistration bool      `json:"allowSelfRegistration" db:"allow_self_registration"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt             time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

// CoachAssociation links a staff user to a gym.
type CoachAssociation struct {
	UserID    string    `json:"userId" db:"user_id"`
	GymID     string    `json:"gymId" db:"gym_id"`
	IsAdmin   bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
}

// Coach is a CoachAssociation with its user's details.
type Coach struct {
	CoachAssociation
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Role  string `json:"role" db:"role"`
}

// NewGym contains information needed to create a new Gym.
type NewGym struct {
	Name                  string `json:"name" validate:"required,notblank,max=150"`
	City                  string `json:"city" validate:"max=100"`
	Email                 string `json:"email" validate:"required,email"`
	Approved              bool   `json:"approved"`
	MembershipPaid        bool   `json:"membershipPaid"`
	AllowSelfRegistration bool   `json:"allowSelfRegistration"`
}

func (ng *NewGym) Clean() {
	ng.Name = core.CleanString(ng.Name)
	ng.City = core.CleanString(ng.City)
	ng.Email = core.CleanString(ng.Email, true /* lower */)
}

// UpdateGym defines what information may be provided to modify an existing Gym.
// Nil fields are left untouched.
type UpdateGym struct {
	Name                  *string `json:"name" validate:"omitempty,notblank,max=150"`
	City                  *string `json:"city" validate:"omitempty,max=100"`
	Approved              *bool   `json:"approved"`
	MembershipPaid        *bool   `json:"membershipPaid"`
	AllowSelfRegistration *bool   `json:"allowSelfRegistration"`
}

// adminOnly reports whether ug touches fields reserved to league admins.
func (ug UpdateGym) adminOnly() bool {
	return ug.Approved != nil || ug.MembershipPaid != nil
}

type NewCoach struct {
	UserID  string `json:"userId" validate:"required"`
	IsAdmin bool   `json:"isAdmin"`
}

type QueryFilter struct {
	Search   string `query:"search"`
	City     string `query:"city"`
	Approved *bool  `query:"approved"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.City = core.CleanString(qf.City)
}
