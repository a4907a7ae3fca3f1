package roster

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("roster upload")
	// ErrNotPending is returned by Repository.StartProcessing when the upload already left the pending status.
	ErrNotPending = errors.New("roster upload is not pending")
)

type (
	Repository interface {
		CreateUpload(ctx context.Context, u Upload) (Upload, error)
		GetUploadByID(ctx context.Context, id string) (Upload, error)
		// QueryUploads lists a gym's uploads, newest first.
		QueryUploads(ctx context.Context, gymID string) ([]Upload, error)
		// StartProcessing moves a pending upload to processing and records its row count in a single
		// conditional write. It returns ErrNotPending, leaving the upload untouched, otherwise.
		StartProcessing(ctx context.Context, id string, totalRows int, at time.Time) (Upload, error)
		UpdateUpload(ctx context.Context, u Upload) (Upload, error)
	}

	Service struct {
		repo       Repository
		gyms       *gym.Service
		gate       *gym.Gate
		gymnastSvc *gymnast.Service
		tx         core.Transactor
		notifier   *core.Notifier
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator
	}

	SummaryData struct {
		Filename      string
		GymName       string
		Status        string
		TotalRows     int
		ProcessedRows int
		ErrorRows     int
	}
)

func NewService(
	repo Repository,
	gyms *gym.Service,
	gate *gym.Gate,
	gymnastSvc *gymnast.Service,
	tx core.Transactor,
	notifier *core.Notifier,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	return &Service{
		repo:       repo,
		gyms:       gyms,
		gate:       gate,
		gymnastSvc: gymnastSvc,
		tx:         tx,
		notifier:   notifier,
		logger:     logger,
		validate:   validate,
		translator: translator,
	}
}

// CreateUpload records a pending upload for the gym.
func (svc *Service) CreateUpload(ctx context.Context, actor user.User, nu NewUpload) (Upload, error) {
	nu.Clean()
	if _, err := svc.gyms.Get(ctx, nu.GymID); err != nil {
		return Upload{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, nu.GymID); err != nil {
		return Upload{}, err
	}

	now := time.Now().UTC()
	u, err := svc.repo.CreateUpload(ctx, Upload{
		ID:         uuid.NewString(),
		GymID:      nu.GymID,
		UploadedBy: actor.ID,
		Filename:   nu.Filename,
		Status:     StatusPending,
		TotalRows:  nu.TotalRows,
		Errors:     []RowError{},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	return u, errors.Wrap(err, "inserting roster upload")
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Upload, error) {
	u, err := svc.repo.GetUploadByID(ctx, id)
	if err != nil {
		return Upload{}, err
	}
	if err := svc.gate.Authorize(ctx, actor, u.GymID); err != nil {
		return Upload{}, err
	}
	return u, nil
}

func (svc *Service) QueryByGym(ctx context.Context, actor user.User, gymID string) ([]Upload, error) {
	if err := svc.gate.Authorize(ctx, actor, gymID); err != nil {
		return nil, err
	}
	return svc.repo.QueryUploads(ctx, gymID)
}

// Import creates an upload and processes its rows right away.
func (svc *Service) Import(ctx context.Context, actor user.User, gymID, filename string, rows []gymnast.NewGymnast) (Result, error) {
	u, err := svc.CreateUpload(ctx, actor, NewUpload{GymID: gymID, Filename: filename, TotalRows: len(rows)})
	if err != nil {
		return Result{}, err
	}
	return svc.Process(ctx, actor, u.ID, rows)
}

// Process creates an approved gymnast per valid row, in input order.
// Each row commits on its own together with the upload's counters; a bad row is recorded and skipped.
// Only a pending upload can be processed.
func (svc *Service) Process(ctx context.Context, actor user.User, id string, rows []gymnast.NewGymnast) (Result, error) {
	u, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Result{}, err
	}
	if u.Status != StatusPending {
		return Result{}, alreadyProcessed(u)
	}

	u, err = svc.repo.StartProcessing(ctx, id, len(rows), time.Now().UTC())
	if err != nil {
		if errors.Cause(err) == ErrNotPending {
			if current, gErr := svc.repo.GetUploadByID(ctx, id); gErr == nil {
				return Result{}, alreadyProcessed(current)
			}
		}
		return Result{}, errors.Wrap(err, "starting roster processing")
	}

	// a started batch runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	gymName := ""
	if g, err := svc.gyms.Get(ctx, u.GymID); err == nil {
		gymName = g.Name
	}

	var created int
	for i, row := range rows {
		g, rowErr := svc.processRow(ctx, &u, row)
		if rowErr != nil {
			u.ErrorRows++
			u.Errors = append(u.Errors, RowError{Row: i + 1, Data: row, Error: core.ErrorMessage(rowErr, svc.translator)})
			u.UpdatedAt = time.Now().UTC()
			saved, err := svc.repo.UpdateUpload(ctx, u)
			if err != nil {
				return svc.fail(ctx, actor, u, gymName, errors.Wrap(err, "recording row error"))
			}
			u = saved
			continue
		}

		created++
		svc.notifier.Notify(ctx, gymnast.NewWelcomeMessage(g, gymName))
	}

	u.Status = StatusCompleted
	u.UpdatedAt = time.Now().UTC()
	saved, err := svc.repo.UpdateUpload(ctx, u)
	if err != nil {
		return svc.fail(ctx, actor, u, gymName, errors.Wrap(err, "completing roster upload"))
	}

	svc.notifier.Notify(ctx, svc.summaryMessage(actor, saved, gymName))
	return newResult(saved, created), nil
}

// processRow validates the row, then creates its gymnast and bumps the processed counter in one transaction.
func (svc *Service) processRow(ctx context.Context, u *Upload, row gymnast.NewGymnast) (gymnast.Gymnast, error) {
	row.Clean()
	if err := svc.validate.Struct(row); err != nil {
		return gymnast.Gymnast{}, err
	}

	var g gymnast.Gymnast
	err := svc.tx.Transact(ctx, func(ctx context.Context) error {
		var err error
		if g, err = svc.gymnastSvc.Create(ctx, u.GymID, row, true); err != nil {
			return err
		}

		next := *u
		next.ProcessedRows++
		next.UpdatedAt = time.Now().UTC()
		saved, err := svc.repo.UpdateUpload(ctx, next)
		if err != nil {
			return errors.Wrap(err, "updating roster upload")
		}
		*u = saved
		return nil
	})
	return g, err
}

// fail marks the upload failed: every row not yet processed counts as an error row.
func (svc *Service) fail(ctx context.Context, actor user.User, u Upload, gymName string, cause error) (Result, error) {
	u.Status = StatusFailed
	u.Errors = append(u.Errors, RowError{Row: 0, Error: cause.Error()})
	u.ErrorRows = u.TotalRows - u.ProcessedRows
	u.UpdatedAt = time.Now().UTC()

	if _, err := svc.repo.UpdateUpload(ctx, u); err != nil {
		svc.logger.Error(fmt.Sprintf("marking roster upload failed: %v", err), err, actor, core.LogContext{GymID: u.GymID, UploadID: u.ID})
	}

	svc.notifier.Notify(ctx, svc.summaryMessage(actor, u, gymName))
	return newResult(u, u.ProcessedRows), cause
}

func (svc *Service) summaryMessage(actor user.User, u Upload, gymName string) *core.EmailMessage {
	msg := &core.EmailMessage{
		Subject:      fmt.Sprintf("Roster import %s: %s", u.Status, u.Filename),
		TemplateName: "roster_summary",
		TemplateData: SummaryData{
			Filename:      u.Filename,
			GymName:       gymName,
			Status:        u.Status,
			TotalRows:     u.TotalRows,
			ProcessedRows: u.ProcessedRows,
			ErrorRows:     u.ErrorRows,
		},
	}
	if actor.Email != "" {
		msg.To = []mail.Address{actor.Address()}
	}

	if len(u.Errors) > 0 {
		data, err := errorsCSV(u.Errors)
		if err == nil {
			err = msg.Attach(bytes.NewReader(data), "roster-errors.csv", "text/csv")
		}
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("attaching roster errors: %v", err), err, core.LogContext{GymID: u.GymID, UploadID: u.ID})
		}
	}
	return msg
}

func alreadyProcessed(u Upload) error {
	return core.NewConflictError("status", fmt.Sprintf("roster upload already %s", u.Status))
}
