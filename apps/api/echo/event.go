package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/event"
)

type eventApi struct {
	svc      *event.Service
	validate *validator.Validate
}

func registerEventAPI(g *echo.Group, svc *event.Service, validate *validator.Validate) {
	api := eventApi{svc: svc, validate: validate}

	eg := g.Group("/events")
	eg.POST("", api.create)
	eg.GET("", api.query)
	eg.PATCH("/:id/approve", api.approve)
	eg.GET("/:id/registrations", api.queryRegistrations)
	eg.POST("/:id/registrations", api.register)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	e, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *eventApi) query(ctx echo.Context) error {
	filter := new(event.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query filter")
	}

	events, err := api.svc.Query(ctx.Request().Context(), contextUser(ctx), *filter)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) approve(ctx echo.Context) error {
	e, err := api.svc.Approve(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) register(ctx echo.Context) error {
	var data event.NewRegistration
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	reg, err := api.svc.Register(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "registering gymnast")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *eventApi) queryRegistrations(ctx echo.Context) error {
	regs, err := api.svc.QueryRegistrations(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying event registrations")
	}
	if regs == nil {
		regs = []event.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}
