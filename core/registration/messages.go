package registration

import (
	"net/mail"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
)

type (
	CoachAlertData struct {
		GymID         string
		GymName       string
		RequestID     string
		ApplicantName string
		Level         string
	}

	RejectedData struct {
		Name    string
		GymName string
		Reason  string
	}
)

func newCoachAlertMessage(req Request, g gym.Gym, staff []mail.Address) *core.EmailMessage {
	return &core.EmailMessage{
		To:           staff,
		Subject:      "New registration request for " + g.Name,
		TemplateName: "coach_alert",
		TemplateData: CoachAlertData{
			GymID:         g.ID,
			GymName:       g.Name,
			RequestID:     req.ID,
			ApplicantName: req.FirstName + " " + req.LastName,
			Level:         req.Level,
		},
	}
}

// newRejectedMessage goes to the applicant, or their parent when they left no email.
func newRejectedMessage(req Request, gymName string) *core.EmailMessage {
	msg := &core.EmailMessage{
		Subject:      "Your registration request for " + gymName,
		TemplateName: "registration_rejected",
		TemplateData: RejectedData{Name: req.FirstName, GymName: gymName, Reason: req.RejectionReason},
	}
	switch {
	case req.Email != "":
		msg.To = []mail.Address{{Name: req.FirstName + " " + req.LastName, Address: req.Email}}
	case req.ParentEmail != "":
		msg.To = []mail.Address{{Name: req.ParentName, Address: req.ParentEmail}}
	}
	return msg
}
