package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/registration"
)

type registrationApi struct {
	svc      *registration.Service
	validate *validator.Validate
}

// registerRegistrationAPI mounts the public submission endpoint on public and the review endpoints on authed.
func registerRegistrationAPI(public, authed *echo.Group, svc *registration.Service, validate *validator.Validate) {
	api := registrationApi{svc: svc, validate: validate}

	public.POST("/registration-requests", api.submit)

	rg := authed.Group("/registration-requests")
	rg.GET("/gym/:gymId", api.queryByGym)
	rg.GET("/:id", api.retrieve)
	rg.POST("/:id/approve", api.approve)
	rg.POST("/:id/reject", api.reject)
}

// Handlers

func (api *registrationApi) submit(ctx echo.Context) error {
	var data registration.NewRequest
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	req, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting registration request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *registrationApi) queryByGym(ctx echo.Context) error {
	var filter registration.QueryFilter
	if err := bindValid(ctx, api.validate, &filter); err != nil {
		return err
	}

	reqs, err := api.svc.QueryByGym(ctx.Request().Context(), contextUser(ctx), ctx.Param("gymId"), filter)
	if err != nil {
		return errors.Wrap(err, "querying registration requests")
	}
	if reqs == nil {
		reqs = []registration.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *registrationApi) retrieve(ctx echo.Context) error {
	req, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding registration request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *registrationApi) approve(ctx echo.Context) error {
	res, err := api.svc.Approve(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving registration request")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *registrationApi) reject(ctx echo.Context) error {
	var data registration.Rejection
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	req, err := api.svc.Reject(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "rejecting registration request")
	}
	return ctx.JSON(http.StatusOK, req)
}
