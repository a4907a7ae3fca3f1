package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/challenge"
	"github.com/trezcool/gymleague/core/event"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/registration"
	"github.com/trezcool/gymleague/core/reward"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc         *user.Service
		GymSvc          *gym.Service
		GymnastSvc      *gymnast.Service
		RegistrationSvc *registration.Service
		RosterSvc       *roster.Service
		ChallengeSvc    *challenge.Service
		RewardSvc       *reward.Service
		EventSvc        *event.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	authed := api.Group("",
		middleware.JWTWithConfig(jwtConfig(conf)),
		principalMiddleware(conf, s.deps.UserSvc),
	)

	registerUserAPI(authed, s.deps.UserSvc, s.deps.Validate)
	registerGymAPI(authed, s.deps.GymSvc, s.deps.GymnastSvc, s.deps.Validate)
	registerGymnastAPI(authed, s.deps.GymnastSvc, s.deps.Validate)
	registerRegistrationAPI(api, authed, s.deps.RegistrationSvc, s.deps.Validate)
	registerRosterAPI(authed, s.deps.RosterSvc, s.deps.Validate)
	registerChallengeAPI(authed, s.deps.ChallengeSvc, s.deps.Validate)
	registerRewardAPI(authed, s.deps.RewardSvc, s.deps.Validate)
	registerEventAPI(authed, s.deps.EventSvc, s.deps.Validate)
}

// Start listens until the server is shut down. Listener failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
