package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/roster"
)

type rosterApi struct {
	svc      *roster.Service
	validate *validator.Validate
}

func registerRosterAPI(g *echo.Group, svc *roster.Service, validate *validator.Validate) {
	api := rosterApi{svc: svc, validate: validate}

	ug := g.Group("/roster-upload")
	ug.POST("", api.create)
	ug.POST("/import", api.importCSV)
	ug.POST("/:id/process", api.process)

	qg := g.Group("/roster-uploads")
	qg.GET("/gym/:gymId", api.queryByGym)
	qg.GET("/:id", api.retrieve)
}

// Handlers

func (api *rosterApi) create(ctx echo.Context) error {
	var data roster.NewUpload
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	u, err := api.svc.CreateUpload(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating roster upload")
	}
	return ctx.JSON(http.StatusCreated, u)
}

// process runs the batch. Row failures do not fail the request; they are counted in the result.
func (api *rosterApi) process(ctx echo.Context) error {
	var data roster.ProcessRequest
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	res, err := api.svc.Process(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data.Rows)
	if err != nil {
		return errors.Wrap(err, "processing roster upload")
	}
	return ctx.JSON(http.StatusOK, res)
}

// importCSV creates and processes an upload from a multipart CSV file ("file" field, "gymId" value).
func (api *rosterApi) importCSV(ctx echo.Context) error {
	gymID := ctx.FormValue("gymId")
	fh, err := ctx.FormFile("file")
	if err != nil {
		return errMissingFile
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	rows, err := roster.ParseCSV(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := api.svc.Import(ctx.Request().Context(), contextUser(ctx), gymID, fh.Filename, rows)
	if err != nil {
		return errors.Wrap(err, "importing roster")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rosterApi) queryByGym(ctx echo.Context) error {
	uploads, err := api.svc.QueryByGym(ctx.Request().Context(), contextUser(ctx), ctx.Param("gymId"))
	if err != nil {
		return errors.Wrap(err, "querying roster uploads")
	}
	if uploads == nil {
		uploads = []roster.Upload{}
	}
	return ctx.JSON(http.StatusOK, uploads)
}

func (api *rosterApi) retrieve(ctx echo.Context) error {
	u, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding roster upload")
	}
	return ctx.JSON(http.StatusOK, u)
}
