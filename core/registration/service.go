package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("registration request")
	// ErrNotPending is returned by Repository.Resolve when the request was already resolved.
	ErrNotPending = errors.New("registration request is not pending")

	errSelfRegistrationClosed = core.NewPermissionError("this gym does not accept self-registration")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequestByID(ctx context.Context, id string) (Request, error)
		// QueryRequests lists a gym's requests, newest first. An empty status matches all.
		QueryRequests(ctx context.Context, gymID, status string) ([]Request, error)
		// Resolve moves a pending request to its final status in a single conditional write.
		// It returns ErrNotPending, leaving the request untouched, if it is no longer pending.
		Resolve(ctx context.Context, id, status, reviewerID, reason string, at time.Time) (Request, error)
	}

	Service struct {
		repo       Repository
		gyms       *gym.Service
		gate       *gym.Gate
		gymnastSvc *gymnast.Service
		tx         core.Transactor
		notifier   *core.Notifier
	}
)

func NewService(
	repo Repository,
	gyms *gym.Service,
	gate *gym.Gate,
	gymnastSvc *gymnast.Service,
	tx core.Transactor,
	notifier *core.Notifier,
) *Service {
	return &Service{
		repo:       repo,
		gyms:       gyms,
		gate:       gate,
		gymnastSvc: gymnastSvc,
		tx:         tx,
		notifier:   notifier,
	}
}

// Submit files a pending request for a gym that accepts self-registration,
// then alerts the gym's staff.
func (svc *Service) Submit(ctx context.Context, nr NewRequest) (Request, error) {
	nr.Clean()
	g, err := svc.gyms.Get(ctx, nr.GymID)
	if err != nil {
		return Request{}, err
	}
	if !g.AllowSelfRegistration {
		return Request{}, errSelfRegistrationClosed
	}

	now := time.Now().UTC()
	req, err := svc.repo.CreateRequest(ctx, Request{
		ID:         uuid.NewString(),
		GymID:      g.ID,
		Status:     StatusPending,
		NewGymnast: nr.NewGymnast,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Request{}, errors.Wrap(err, "inserting registration request")
	}

	staff, err := svc.gyms.StaffEmails(ctx, g.ID)
	if err != nil {
		svc.notifier.Skip("coach_alert", errors.Wrap(err, "listing gym staff"), core.LogContext{GymID: g.ID, RequestID: req.ID})
		return req, nil
	}
	svc.notifier.Notify(ctx, newCoachAlertMessage(req, g, staff))
	return req, nil
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Request, error) {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, req.GymID); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (svc *Service) QueryByGym(ctx context.Context, actor user.User, gymID string, filter QueryFilter) ([]Request, error) {
	if err := svc.gate.Authorize(ctx, actor, gymID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRequests(ctx, gymID, filter.Status)
}

// Approve resolves a pending request and creates its approved gymnast (0 points) in one transaction.
// The welcome email is sent once committed.
func (svc *Service) Approve(ctx context.Context, actor user.User, id string) (ApproveResult, error) {
	req, err := svc.Get(ctx, actor, id)
	if err != nil {
		return ApproveResult{}, err
	}
	if !req.IsPending() {
		return ApproveResult{}, alreadyResolved(req)
	}

	var res ApproveResult
	err = svc.tx.Transact(ctx, func(ctx context.Context) error {
		resolved, err := svc.repo.Resolve(ctx, req.ID, StatusApproved, actor.ID, "", time.Now().UTC())
		if err != nil {
			return err
		}
		g, err := svc.gymnastSvc.Create(ctx, req.GymID, req.NewGymnast, true)
		if err != nil {
			return errors.Wrap(err, "creating gymnast")
		}
		res = ApproveResult{Request: resolved, Gymnast: g}
		return nil
	})
	if err != nil {
		return ApproveResult{}, svc.resolveError(ctx, req, err)
	}

	gymName := svc.gymName(ctx, req.GymID)
	svc.notifier.Notify(ctx, gymnast.NewWelcomeMessage(res.Gymnast, gymName))
	return res, nil
}

// Reject resolves a pending request as rejected and notifies the applicant.
func (svc *Service) Reject(ctx context.Context, actor user.User, id string, rej Rejection) (Request, error) {
	req, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Request{}, err
	}
	if !req.IsPending() {
		return Request{}, alreadyResolved(req)
	}

	reason := core.CleanString(rej.Reason)
	resolved, err := svc.repo.Resolve(ctx, req.ID, StatusRejected, actor.ID, reason, time.Now().UTC())
	if err != nil {
		return Request{}, svc.resolveError(ctx, req, err)
	}

	gymName := svc.gymName(ctx, req.GymID)
	svc.notifier.Notify(ctx, newRejectedMessage(resolved, gymName))
	return resolved, nil
}

// resolveError turns a lost race into a conflict naming the winner's status.
func (svc *Service) resolveError(ctx context.Context, req Request, err error) error {
	if errors.Cause(err) != ErrNotPending {
		return err
	}
	current, gErr := svc.repo.GetRequestByID(ctx, req.ID)
	if gErr != nil {
		return errors.Wrap(gErr, "finding registration request")
	}
	return alreadyResolved(current)
}

func alreadyResolved(req Request) error {
	return core.NewConflictError("status", fmt.Sprintf("registration request already %s", req.Status))
}

func (svc *Service) gymName(ctx context.Context, gymID string) string {
	if g, err := svc.gyms.Get(ctx, gymID); err == nil {
		return g.Name
	}
	return ""
}
