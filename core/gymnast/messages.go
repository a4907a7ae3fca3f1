package gymnast

import "github.com/trezcool/gymleague/core"

type MemberData struct {
	Name    string
	GymName string
}

// NewWelcomeMessage greets a newly admitted gymnast (or their parent).
func NewWelcomeMessage(g Gymnast, gymName string) *core.EmailMessage {
	msg := &core.EmailMessage{
		Subject:      "Welcome to " + gymName,
		TemplateName: "welcome",
		TemplateData: MemberData{Name: g.FirstName, GymName: gymName},
	}
	if to, ok := g.ContactAddress(); ok {
		msg.To = append(msg.To, to)
	}
	return msg
}

func NewApprovedMessage(g Gymnast, gymName string) *core.EmailMessage {
	msg := &core.EmailMessage{
		Subject:      "Your profile is approved",
		TemplateName: "gymnast_approved",
		TemplateData: MemberData{Name: g.FirstName, GymName: gymName},
	}
	if to, ok := g.ContactAddress(); ok {
		msg.To = append(msg.To, to)
	}
	return msg
}
