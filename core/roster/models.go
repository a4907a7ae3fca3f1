package roster

import (
	"time"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gymnast"
)

// Statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// MaxReportedErrors caps the row errors returned by Process; the upload keeps them all.
const MaxReportedErrors = 10

// RowError describes a rejected roster row. Row is 1-based; 0 marks a batch-level failure.
type RowError struct {
	Row   int                `json:"row"`
	Data  gymnast.NewGymnast `json:"data"`
	Error string             `json:"error"`
}

// Upload tracks a bulk roster import.
// Once completed or failed, ProcessedRows + ErrorRows == TotalRows.
type Upload struct {
	ID            string     `json:"id"`
	GymID         string     `json:"gymId"`
	UploadedBy    string     `json:"uploadedBy"`
	Filename      string     `json:"filename"`
	Status        string     `json:"status"`
	TotalRows     int        `json:"totalRows"`
	ProcessedRows int        `json:"processedRows"`
	ErrorRows     int        `json:"errorRows"`
	Errors        []RowError `json:"errors"`
	CreatedAt     time.Time  `json:"createdAt"` // UTC
	UpdatedAt     time.Time  `json:"updatedAt"` // UTC
}

func (u Upload) IsTerminal() bool {
	return u.Status == StatusCompleted || u.Status == StatusFailed
}

type NewUpload struct {
	GymID     string `json:"gymId" validate:"required"`
	Filename  string `json:"filename" validate:"required,notblank,max=255"`
	TotalRows int    `json:"totalRows" validate:"gte=0"`
}

func (nu *NewUpload) Clean() {
	nu.GymID = core.CleanString(nu.GymID)
	nu.Filename = core.CleanString(nu.Filename)
}

// ProcessRequest carries the parsed rows. Rows are validated one by one during processing.
type ProcessRequest struct {
	Rows []gymnast.NewGymnast `json:"rows" validate:"required"`
}

type Result struct {
	UploadID      string     `json:"uploadId"`
	Status        string     `json:"status"`
	TotalRows     int        `json:"totalRows"`
	ProcessedRows int        `json:"processedRows"`
	ErrorRows     int        `json:"errorRows"`
	Errors        []RowError `json:"errors"`
	CreatedCount  int        `json:"createdCount"`
}

func newResult(u Upload, created int) Result {
	errs := u.Errors
	if len(errs) > MaxReportedErrors {
		errs = errs[:MaxReportedErrors]
	}
	if errs == nil {
		errs = []RowError{}
	}
	return Result{
		UploadID:      u.ID,
		Status:        u.Status,
		TotalRows:     u.TotalRows,
		ProcessedRows: u.ProcessedRows,
		ErrorRows:     u.ErrorRows,
		Errors:        errs,
		CreatedCount:  created,
	}
}
