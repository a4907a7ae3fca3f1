package gymnast

import (
	"net/mail"
	"time"

	"github.com/trezcool/gymleague/core"
)

// Levels
const (
	LevelPreTeam = "pre-team"
)

// Types
const (
	TypeTeam    = "team"
	TypePreTeam = "pre-team"
	TypeNonTeam = "non-team"
)

// Leaderboard types
const (
	LeaderboardIndividual = "individual"
	LeaderboardTeam       = "team"

	LeaderboardSize = 50
)

var (
	Levels = []string{LevelPreTeam, "3", "4", "5", "6", "7", "8", "9", "10"}
	Types  = []string{TypeTeam, TypePreTeam, TypeNonTeam}
)

type Gymnast struct {
	ID                           string    `json:"id"`
	GymID                        string    `json:"gymId"`
	UserID                       string    `json:"userId,omitempty"`
	FirstName                    string    `json:"firstName"`
	LastName                     string    `json:"lastName"`
	Email                        string    `json:"email,omitempty"`
	BirthDate                    string    `json:"birthDate"` // YYYY-MM-DD
	Level                        string    `json:"level"`
	Type                         string    `json:"type"`
	ParentName                   string    `json:"parentName,omitempty"`
	ParentEmail                  string    `json:"parentEmail,omitempty"`
	ParentPhone                  string    `json:"parentPhone,omitempty"`
	EmergencyContactName         string    `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone        string    `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelationship string    `json:"emergencyContactRelationship,omitempty"`
	MedicalNotes                 string    `json:"medicalNotes,omitempty"`
	Approved                     bool      `json:"approved"`
	Points                       int       `json:"points"`
	CreatedAt                    time.Time `json:"createdAt"` // UTC
	UpdatedAt                    time.Time `json:"updatedAt"` // UTC
}

func (g Gymnast) FullName() string {
	return g.FirstName + " " + g.LastName
}

// ContactAddress is the gymnast's own email, falling back to the parent's.
func (g Gymnast) ContactAddress() (mail.Address, bool) {
	if g.Email != "" {
		return mail.Address{Name: g.FullName(), Address: g.Email}, true
	}
	if g.ParentEmail != "" {
		return mail.Address{Name: g.ParentName, Address: g.ParentEmail}, true
	}
	return mail.Address{}, false
}

// NewGymnast is the gymnast field contract shared by direct creation,
// registration requests and roster rows. Every field is a string so that
// malformed values surface as validation errors rather than decoding failures.
type NewGymnast struct {
	FirstName                    string `json:"firstName" csv:"first_name" validate:"required,notblank,max=100"`
	LastName                     string `json:"lastName" csv:"last_name" validate:"required,notblank,max=100"`
	Email                        string `json:"email" csv:"email" validate:"omitempty,email"`
	BirthDate                    string `json:"birthDate" csv:"birth_date" validate:"required,birthdate"`
	Level                        string `json:"level" csv:"level" validate:"required,gymlevel"`
	Type                         string `json:"type" csv:"type" validate:"omitempty,gymnasttype"`
	ParentName                   string `json:"parentName" csv:"parent_name" validate:"max=150"`
	ParentEmail                  string `json:"parentEmail" csv:"parent_email" validate:"omitempty,email"`
	ParentPhone                  string `json:"parentPhone" csv:"parent_phone" validate:"max=30"`
	EmergencyContactName         string `json:"emergencyContactName" csv:"emergency_contact_name" validate:"max=150"`
	EmergencyContactPhone        string `json:"emergencyContactPhone" csv:"emergency_contact_phone" validate:"max=30"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship" csv:"emergency_contact_relationship" validate:"max=50"`
	MedicalNotes                 string `json:"medicalNotes" csv:"medical_notes" validate:"max=2000"`
}

// Clean normalizes ng in place. An empty Type defaults from the level.
func (ng *NewGymnast) Clean() {
	ng.FirstName = core.CleanString(ng.FirstName)
	ng.LastName = core.CleanString(ng.LastName)
	ng.Email = core.CleanString(ng.Email, true /* lower */)
	ng.BirthDate = core.CleanString(ng.BirthDate)
	ng.Level = core.CleanString(ng.Level, true /* lower */)
	ng.Type = core.CleanString(ng.Type, true /* lower */)
	ng.ParentName = core.CleanString(ng.ParentName)
	ng.ParentEmail = core.CleanString(ng.ParentEmail, true /* lower */)
	ng.ParentPhone = core.CleanString(ng.ParentPhone)
	ng.EmergencyContactName = core.CleanString(ng.EmergencyContactName)
	ng.EmergencyContactPhone = core.CleanString(ng.EmergencyContactPhone)
	ng.EmergencyContactRelationship = core.CleanString(ng.EmergencyContactRelationship)
	ng.MedicalNotes = core.CleanString(ng.MedicalNotes)

	if ng.Type == "" {
		if ng.Level == LevelPreTeam {
			ng.Type = TypePreTeam
		} else {
			ng.Type = TypeTeam
		}
	}
}

// UpdateGymnast defines what information may be provided to modify an existing Gymnast's profile.
// Nil fields are left untouched.
type UpdateGymnast struct {
	FirstName                    *string `json:"firstName" validate:"omitempty,notblank,max=100"`
	LastName                     *string `json:"lastName" validate:"omitempty,notblank,max=100"`
	Email                        *string `json:"email" validate:"omitempty,email"`
	BirthDate                    *string `json:"birthDate" validate:"omitempty,birthdate"`
	Level                        *string `json:"level" validate:"omitempty,gymlevel"`
	Type                         *string `json:"type" validate:"omitempty,gymnasttype"`
	ParentName                   *string `json:"parentName" validate:"omitempty,max=150"`
	ParentEmail                  *string `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone                  *string `json:"parentPhone" validate:"omitempty,max=30"`
	EmergencyContactName         *string `json:"emergencyContactName" validate:"omitempty,max=150"`
	EmergencyContactPhone        *string `json:"emergencyContactPhone" validate:"omitempty,max=30"`
	EmergencyContactRelationship *string `json:"emergencyContactRelationship" validate:"omitempty,max=50"`
	MedicalNotes                 *string `json:"medicalNotes" validate:"omitempty,max=2000"`
}

type SetApproval struct {
	Approved *bool `json:"approved"`
}

type AdjustPoints struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=255"`
}

type QueryFilter struct {
	GymID    string `query:"-"`
	Level    string `query:"level"`
	Approved *bool  `query:"approved"`
	Search   string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Level = core.CleanString(qf.Level, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}

type LeaderboardFilter struct {
	Type  string `query:"type" json:"type" validate:"omitempty,oneof=individual team"`
	Level string `query:"level" json:"level" validate:"omitempty,gymlevel"`
	GymID string `query:"gymId" json:"gymId"`
}

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	GymnastID string `json:"gymnastId"`
	GymID     string `json:"gymId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Level     string `json:"level"`
	Type      string `json:"type"`
	Points    int    `json:"points"`
}
