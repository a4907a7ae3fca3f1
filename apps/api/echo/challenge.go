package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core/challenge"
	"github.com/trezcool/gymleague/core/reward"
)

type challengeApi struct {
	svc      *challenge.Service
	validate *validator.Validate
}

func registerChallengeAPI(g *echo.Group, svc *challenge.Service, validate *validator.Validate) {
	api := challengeApi{svc: svc, validate: validate}

	cg := g.Group("/challenges")
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.POST("/:id/complete", api.complete)
}

func (api *challengeApi) create(ctx echo.Context) error {
	var data challenge.NewChallenge
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating challenge")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *challengeApi) query(ctx echo.Context) error {
	filter := new(challenge.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query filter")
	}

	challenges, err := api.svc.Query(ctx.Request().Context(), contextUser(ctx), *filter)
	if err != nil {
		return errors.Wrap(err, "querying challenges")
	}
	if challenges == nil {
		challenges = []challenge.Challenge{}
	}
	return ctx.JSON(http.StatusOK, challenges)
}

func (api *challengeApi) complete(ctx echo.Context) error {
	var data challenge.NewCompletion
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	comp, err := api.svc.Complete(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "completing challenge")
	}
	return ctx.JSON(http.StatusCreated, comp)
}

type rewardApi struct {
	svc      *reward.Service
	validate *validator.Validate
}

func registerRewardAPI(g *echo.Group, svc *reward.Service, validate *validator.Validate) {
	api := rewardApi{svc: svc, validate: validate}

	rg := g.Group("/rewards")
	rg.POST("", api.create)
	rg.GET("", api.query)
	rg.POST("/:id/redeem", api.redeem)
}

func (api *rewardApi) create(ctx echo.Context) error {
	var data reward.NewReward
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating reward")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *rewardApi) query(ctx echo.Context) error {
	rewards, err := api.svc.Query(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "querying rewards")
	}
	if rewards == nil {
		rewards = []reward.Reward{}
	}
	return ctx.JSON(http.StatusOK, rewards)
}

func (api *rewardApi) redeem(ctx echo.Context) error {
	var data reward.NewRedemption
	if err := bindValid(ctx, api.validate, &data); err != nil {
		return err
	}

	red, err := api.svc.Redeem(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "redeeming reward")
	}
	return ctx.JSON(http.StatusCreated, red)
}
