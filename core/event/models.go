package event

import (
	"time"

	"github.com/trezcool/gymleague/core"
)

type Session struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"startsAt"` // UTC
	Levels   []string  `json:"levels"`
}

// Event is a competition hosted by a gym. Dates are YYYY-MM-DD, windows inclusive.
type Event struct {
	ID                 string    `json:"id"`
	GymID              string    `json:"gymId"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	StartDate          string    `json:"startDate"`
	EndDate            string    `json:"endDate"`
	RegistrationOpens  string    `json:"registrationOpens"`
	RegistrationCloses string    `json:"registrationCloses"`
	Approved           bool      `json:"approved"`
	Sessions           []Session `json:"sessions"`
	CreatedBy          string    `json:"createdBy"`
	CreatedAt          time.Time `json:"createdAt"` // UTC
}

// AcceptsLevel is true when no session restricts levels or one session lists level.
func (e Event) AcceptsLevel(level string) bool {
	restricted := false
	for _, s := range e.Sessions {
		if len(s.Levels) == 0 {
			return true
		}
		restricted = true
		for _, l := range s.Levels {
			if l == level {
				return true
			}
		}
	}
	return !restricted
}

// RegistrationOpen reports whether day (a YYYY-MM-DD date) falls within the registration window.
func (e Event) RegistrationOpen(day string) bool {
	return e.RegistrationOpens <= day && day <= e.RegistrationCloses
}

type Registration struct {
	EventID      string    `json:"eventId" db:"event_id"`
	GymnastID    string    `json:"gymnastId" db:"gymnast_id"`
	RegisteredBy string    `json:"registeredBy" db:"registered_by"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
}

type NewSession struct {
	Name     string    `json:"name" validate:"required,notblank,max=100"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
	Levels   []string  `json:"levels" validate:"dive,gymlevel"`
}

type NewEvent struct {
	GymID              string       `json:"gymId" validate:"required"`
	Name               string       `json:"name" validate:"required,notblank,max=150"`
	Location           string       `json:"location" validate:"max=255"`
	StartDate          string       `json:"startDate" validate:"required,date"`
	EndDate            string       `json:"endDate" validate:"required,date"`
	RegistrationOpens  string       `json:"registrationOpens" validate:"required,date"`
	RegistrationCloses string       `json:"registrationCloses" validate:"required,date"`
	Sessions           []NewSession `json:"sessions" validate:"dive"`
}

func (ne *NewEvent) Clean() {
	ne.GymID = core.CleanString(ne.GymID)
	ne.Name = core.CleanString(ne.Name)
	ne.Location = core.CleanString(ne.Location)
	ne.StartDate = core.CleanString(ne.StartDate)
	ne.EndDate = core.CleanString(ne.EndDate)
	ne.RegistrationOpens = core.CleanString(ne.RegistrationOpens)
	ne.RegistrationCloses = core.CleanString(ne.RegistrationCloses)
	for i := range ne.Sessions {
		ne.Sessions[i].Name = core.CleanString(ne.Sessions[i].Name)
		for j, l := range ne.Sessions[i].Levels {
			ne.Sessions[i].Levels[j] = core.CleanString(l, true /* lower */)
		}
	}
}

// checkDates validates the date ordering; field formats are validated beforehand.
func (ne NewEvent) checkDates() error {
	var flds []core.FieldError
	if ne.EndDate < ne.StartDate {
		flds = append(flds, core.FieldError{Field: "endDate", Error: "endDate must not be before startDate"})
	}
	// one message per field
	switch {
	case ne.RegistrationCloses < ne.RegistrationOpens:
		flds = append(flds, core.FieldError{Field: "registrationCloses", Error: "registrationCloses must not be before registrationOpens"})
	case ne.RegistrationCloses > ne.StartDate:
		flds = append(flds, core.FieldError{Field: "registrationCloses", Error: "registrationCloses must not be after startDate"})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

type NewRegistration struct {
	GymnastID string `json:"gymnastId" validate:"required"`
}

type QueryFilter struct {
	GymID string `query:"gymId"`
}

// RepoFilter narrows Repository.QueryEvents. Zero values match everything.
type RepoFilter struct {
	GymID string
	// ApprovedOnly hides pending events, except those of IncludePendingOf.
	ApprovedOnly     bool
	IncludePendingOf string
}
