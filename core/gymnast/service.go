package gymnast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("gymnast")
	// ErrNegativePoints is returned by Repository.AddPoints when a balance would drop below zero.
	ErrNegativePoints = errors.New("insufficient points")

	errEmailUsedByGym = "this email is already used by a gym"
	errNotApproved    = "gymnast is not approved"
)

type (
	Repository interface {
		CreateGymnast(ctx context.Context, g Gymnast) (Gymnast, error)
		GetGymnastByID(ctx context.Context, id string) (Gymnast, error)
		QueryGymnasts(ctx context.Context, filter QueryFilter) ([]Gymnast, error)
		UpdateGymnast(ctx context.Context, g Gymnast) (Gymnast, error)
		// AddPoints atomically adds delta (possibly negative) to the gymnast's points.
		AddPoints(ctx context.Context, id string, delta int) (Gymnast, error)
		// Leaderboard lists approved gymnasts by points DESC, ties in creation order.
		Leaderboard(ctx context.Context, filter LeaderboardFilter, limit int) ([]Gymnast, error)
	}

	Service struct {
		repo     Repository
		gyms     gym.Repository
		users    user.Repository
		gate     *gym.Gate
		notifier *core.Notifier
	}
)

func NewService(
	repo Repository,
	gyms gym.Repository,
	users user.Repository,
	gate *gym.Gate,
	notifier *core.Notifier,
) *Service {
	return &Service{
		repo:     repo,
		gyms:     gyms,
		users:    users,
		gate:     gate,
		notifier: notifier,
	}
}

// Create persists a gymnast on the gym without any authorization check; callers gate first.
// It joins the transaction carried by ctx, if any.
// An email owned by a gym is rejected; one owned by a gymnast user links that account.
func (svc *Service) Create(ctx context.Context, gymID string, ng NewGymnast, approved bool) (Gymnast, error) {
	ng.Clean()
	now := time.Now().UTC()
	g := Gymnast{
		ID:                           uuid.NewString(),
		GymID:                        gymID,
		FirstName:                    ng.FirstName,
		LastName:                     ng.LastName,
		Email:                        ng.Email,
		BirthDate:                    ng.BirthDate,
		Level:                        ng.Level,
		Type:                         ng.Type,
		ParentName:                   ng.ParentName,
		ParentEmail:                  ng.ParentEmail,
		ParentPhone:                  ng.ParentPhone,
		EmergencyContactName:         ng.EmergencyContactName,
		EmergencyContactPhone:        ng.EmergencyContactPhone,
		EmergencyContactRelationship: ng.EmergencyContactRelationship,
		MedicalNotes:                 ng.MedicalNotes,
		Approved:                     approved,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}

	if g.Email != "" {
		taken, err := svc.gyms.GymEmailExists(ctx, g.Email)
		if err != nil {
			return Gymnast{}, errors.Wrap(err, "checking gym emails")
		}
		if taken {
			return Gymnast{}, core.NewConflictError("email", errEmailUsedByGym)
		}

		usr, err := svc.users.GetUserByEmail(ctx, g.Email)
		switch {
		case err == nil:
			if usr.Role == user.RoleGymnast {
				g.UserID = usr.ID
			}
		case errors.Cause(err) != user.ErrNotFound:
			return Gymnast{}, errors.Wrap(err, "finding user by email")
		}
	}

	g, err := svc.repo.CreateGymnast(ctx, g)
	return g, errors.Wrap(err, "inserting gymnast")
}

// Add creates an unapproved gymnast on behalf of the gym's staff.
func (svc *Service) Add(ctx context.Context, actor user.User, gymID string, ng NewGymnast) (Gymnast, error) {
	if _, err := svc.gyms.GetGymByID(ctx, gymID); err != nil {
		return Gymnast{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, gymID); err != nil {
		return Gymnast{}, err
	}
	return svc.Create(ctx, gymID, ng, false)
}

// Get returns the gymnast if actor is the gymnast's own user or can act on the gymnast's gym.
func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Gymnast, error) {
	g, err := svc.repo.GetGymnastByID(ctx, id)
	if err != nil {
		return Gymnast{}, err
	}
	if !actor.IsZero() && g.UserID == actor.ID {
		return g, nil
	}
	if err := svc.gate.Authorize(ctx, actor, g.GymID); err != nil {
		return Gymnast{}, err
	}
	return g, nil
}

func (svc *Service) getForStaff(ctx context.Context, actor user.User, id string) (Gymnast, error) {
	g, err := svc.repo.GetGymnastByID(ctx, id)
	if err != nil {
		return Gymnast{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, g.GymID); err != nil {
		return Gymnast{}, err
	}
	return g, nil
}

func (svc *Service) QueryByGym(ctx context.Context, actor user.User, gymID string, filter QueryFilter) ([]Gymnast, error) {
	if err := svc.gate.Authorize(ctx, actor, gymID); err != nil {
		return nil, err
	}
	filter.GymID = gymID
	filter.Clean()
	return svc.repo.QueryGymnasts(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, ug UpdateGymnast) (Gymnast, error) {
	g, err := svc.getForStaff(ctx, actor, id)
	if err != nil {
		return Gymnast{}, err
	}

	set := func(dst *string, src *string, lower bool) {
		if src != nil {
			*dst = core.CleanString(*src, lower)
		}
	}
	set(&g.FirstName, ug.FirstName, false)
	set(&g.LastName, ug.LastName, false)
	set(&g.BirthDate, ug.BirthDate, false)
	set(&g.Level, ug.Level, true)
	set(&g.Type, ug.Type, true)
	set(&g.ParentName, ug.ParentName, false)
	set(&g.ParentEmail, ug.ParentEmail, true)
	set(&g.ParentPhone, ug.ParentPhone, false)
	set(&g.EmergencyContactName, ug.EmergencyContactName, false)
	set(&g.EmergencyContactPhone, ug.EmergencyContactPhone, false)
	set(&g.EmergencyContactRelationship, ug.EmergencyContactRelationship, false)
	set(&g.MedicalNotes, ug.MedicalNotes, false)

	if ug.Email != nil {
		email := core.CleanString(*ug.Email, true /* lower */)
		if email != "" && email != g.Email {
			taken, err := svc.gyms.GymEmailExists(ctx, email)
			if err != nil {
				return Gymnast{}, errors.Wrap(err, "checking gym emails")
			}
			if taken {
				return Gymnast{}, core.NewConflictError("email", errEmailUsedByGym)
			}
		}
		g.Email = email
	}

	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGymnast(ctx, g)
}

// SetApproved approves or revokes a gymnast. Newly approved gymnasts are notified.
func (svc *Service) SetApproved(ctx context.Context, actor user.User, id string, approved bool) (Gymnast, error) {
	g, err := svc.getForStaff(ctx, actor, id)
	if err != nil {
		return Gymnast{}, err
	}
	if g.Approved == approved {
		return g, nil
	}

	g.Approved = approved
	g.UpdatedAt = time.Now().UTC()
	if g, err = svc.repo.UpdateGymnast(ctx, g); err != nil {
		return Gymnast{}, errors.Wrap(err, "updating gymnast")
	}

	if approved {
		gymName := svc.gymName(ctx, g.GymID)
		svc.notifier.Notify(ctx, NewApprovedMessage(g, gymName))
	}
	return g, nil
}

// AdjustPoints adds (or removes) points. Unapproved gymnasts accrue nothing and balances never go negative.
func (svc *Service) AdjustPoints(ctx context.Context, actor user.User, id string, ap AdjustPoints) (Gymnast, error) {
	g, err := svc.getForStaff(ctx, actor, id)
	if err != nil {
		return Gymnast{}, err
	}
	if !g.Approved {
		return Gymnast{}, core.NewValidationError(nil, core.FieldError{Field: "gymnastId", Error: errNotApproved})
	}

	g, err = svc.repo.AddPoints(ctx, id, ap.Delta)
	if err != nil {
		if errors.Cause(err) == ErrNegativePoints {
			return Gymnast{}, core.NewValidationError(nil, core.FieldError{Field: "delta", Error: ErrNegativePoints.Error()})
		}
		return Gymnast{}, errors.Wrap(err, "adding points")
	}
	return g, nil
}

// Leaderboard ranks approved gymnasts by points. Both leaderboard types rank on raw points.
func (svc *Service) Leaderboard(ctx context.Context, filter LeaderboardFilter) ([]LeaderboardEntry, error) {
	filter.Level = core.CleanString(filter.Level, true /* lower */)
	filter.GymID = core.CleanString(filter.GymID)
	if filter.Type == "" {
		filter.Type = LeaderboardIndividual
	}

	gymnasts, err := svc.repo.Leaderboard(ctx, filter, LeaderboardSize)
	if err != nil {
		return nil, errors.Wrap(err, "querying leaderboard")
	}
	if len(gymnasts) > LeaderboardSize {
		gymnasts = gymnasts[:LeaderboardSize]
	}

	entries := make([]LeaderboardEntry, 0, len(gymnasts))
	for i, g := range gymnasts {
		entries = append(entries, LeaderboardEntry{
			Rank:      i + 1,
			GymnastID: g.ID,
			GymID:     g.GymID,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Level:     g.Level,
			Type:      g.Type,
			Points:    g.Points,
		})
	}
	return entries, nil
}

func (svc *Service) gymName(ctx context.Context, gymID string) string {
	if g, err := svc.gyms.GetGymByID(ctx, gymID); err == nil {
		return g.Name
	}
	return ""
}
