package registration

import (
	"time"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gymnast"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a self-registration application to a gym. It is resolved at most once and never deleted.
type Request struct {
	ID     string `json:"id"`
	GymID  string `json:"gymId"`
	Status string `json:"status"`
	gymnast.NewGymnast
	ReviewedBy      string     `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"` // UTC
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"` // UTC
	UpdatedAt       time.Time  `json:"updatedAt"` // UTC
}

func (r Request) IsPending() bool { return r.Status == StatusPending }

// NewRequest contains the applicant's information.
type NewRequest struct {
	GymID string `json:"gymId" validate:"required"`
	gymnast.NewGymnast
}

func (nr *NewRequest) Clean() {
	nr.GymID = core.CleanString(nr.GymID)
	nr.NewGymnast.Clean()
}

type Rejection struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type QueryFilter struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// ApproveResult holds the resolved request and the gymnast it created.
type ApproveResult struct {
	Request Request         `json:"request"`
	Gymnast gymnast.Gymnast `json:"gymnast"`
}
