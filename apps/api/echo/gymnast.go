package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/gymnast"
)

type gymnastApi struct {
	svc      *gymnast.Service
	validate *validator.Validate
}

func registerGymnastAPI(g *echo.Group, svc *gymnast.Service, validate *validator.Validate) {
	api := gymnastApi{svc: svc, validate: validate}

	g.GET("/leaderboard", api.leaderboard)

	gg := g.Group("/gymnasts/:id")
	gg.GET("", api.retrieve)
	gg.PUT("", api.update)
	gg.PATCH("/approve", api.approve)
	gg.PATCH("/points", api.adjustPoints)
}

// Handlers

func (api *gymnastApi) retrieve(ctx echo.Context) error {
	g, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding gymnast")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gymnastApi) update(ctx echo.Context) error {
	var data gymnast.UpdateGymnast
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	g, err := api.svc.Update(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating gymnast")
	}
	return ctx.JSON(http.StatusOK, g)
}

// approve sets the gymnast's approval; an empty body approves.
func (api *gymnastApi) approve(ctx echo.Context) error {
	var data gymnast.SetApproval
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}
	approved := true
	if data.Approved != nil {
		approved = *data.Approved
	}

	g, err := api.svc.SetApproved(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), approved)
	if err != nil {
		return errors.Wrap(err, "setting gymnast approval")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gymnastApi) adjustPoints(ctx echo.Context) error {
	var data gymnast.AdjustPoints
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	g, err := api.svc.AdjustPoints(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adjusting gymnast points")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gymnastApi) leaderboard(ctx echo.Context) error {
	var filter gymnast.LeaderboardFilter
	if err := bindValid(ctx, api.validate, &filter); err != nil {
		return err
	}

	entries, err := api.svc.Leaderboard(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying leaderboard")
	}
	return ctx.JSON(http.StatusOK, entries)
}
