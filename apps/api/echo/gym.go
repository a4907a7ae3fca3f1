package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
)

type gymApi struct {
	svc        *gym.Service
	gymnastSvc *gymnast.Service
	validate   *validator.Validate
}

func registerGymAPI(g *echo.Group, svc *gym.Service, gymnastSvc *gymnast.Service, validate *validator.Validate) {
	api := gymApi{svc: svc, gymnastSvc: gymnastSvc, validate: validate}

	gg := g.Group("/gyms")
	gg.POST("", api.create, adminMiddleware())
	gg.GET("", api.query)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update)
	dg.GET("/coaches", api.queryCoaches)
	dg.POST("/coaches", api.addCoach)
	dg.DELETE("/coaches/:userId", api.removeCoach)
	dg.GET("/gymnasts", api.queryGymnasts)
	dg.POST("/gymnasts", api.addGymnast)
}

// Handlers

func (api *gymApi) create(ctx echo.Context) error {
	var data gym.NewGym
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating gym")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *gymApi) query(ctx echo.Context) error {
	filter := new(gym.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query filter")
	}

	gyms, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying gyms")
	}
	if gyms == nil {
		gyms = []gym.Gym{}
	}
	return ctx.JSON(http.StatusOK, gyms)
}

func (api *gymApi) retrieve(ctx echo.Context) error {
	g, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding gym")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gymApi) update(ctx echo.Context) error {
	var data gym.UpdateGym
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	g, err := api.svc.Update(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating gym")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gymApi) queryCoaches(ctx echo.Context) error {
	coaches, err := api.svc.QueryCoaches(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying coaches")
	}
	if coaches == nil {
		coaches = []gym.Coach{}
	}
	return ctx.JSON(http.StatusOK, coaches)
}

func (api *gymApi) addCoach(ctx echo.Context) error {
	var data gym.NewCoach
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	assoc, err := api.svc.AddCoach(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding coach")
	}
	return ctx.JSON(http.StatusCreated, assoc)
}

func (api *gymApi) removeCoach(ctx echo.Context) error {
	err := api.svc.RemoveCoach(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "removing coach")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gymApi) queryGymnasts(ctx echo.Context) error {
	filter := new(gymnast.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query filter")
	}

	gymnasts, err := api.gymnastSvc.QueryByGym(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), *filter)
	if err != nil {
		return errors.Wrap(err, "querying gymnasts")
	}
	if gymnasts == nil {
		gymnasts = []gymnast.Gymnast{}
	}
	return ctx.JSON(http.StatusOK, gymnasts)
}

func (api *gymApi) addGymnast(ctx echo.Context) error {
	var data gymnast.NewGymnast
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	g, err := api.gymnastSvc.Add(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding gymnast")
	}
	return ctx.JSON(http.StatusCreated, g)
}
