package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/gymleague/apps/api/echo"
	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/challenge"
	"github.com/trezcool/gymleague/core/event"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/registration"
	"github.com/trezcool/gymleague/core/reward"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
	emailsvc "github.com/trezcool/gymleague/services/email"
	logsvc "github.com/trezcool/gymleague/services/logger"
	"github.com/trezcool/gymleague/storage/database"
	inmemdb "github.com/trezcool/gymleague/storage/database/inmem"
	sqlxrepos "github.com/trezcool/gymleague/storage/database/sqlx"
)

// EngineMemory keeps every record in process memory. Handy for demos; nothing survives a restart.
const EngineMemory = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Store is the persistence layer: one repository per aggregate plus the transactor.
type Store struct {
	dig.Out

	Users         user.Repository
	Gyms          gym.Repository
	GymEmails     user.GymEmails
	Gymnasts      gymnast.Repository
	Registrations registration.Repository
	Uploads       roster.Repository
	Challenges    challenge.Repository
	Rewards       reward.Repository
	Events        event.Repository
	Tx            core.Transactor
	Closer        DBCloser
}

// DBCloser releases the database connections.
type DBCloser func() error

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) Store {
	if conf.Database.Engine == EngineMemory {
		db, err := inmemdb.Open()
		if err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("opening in-memory database: %v", err), err)
		}
		gyms := inmemdb.NewGymRepository(db)
		return Store{
			Users:         inmemdb.NewUserRepository(db),
			Gyms:          gyms,
			GymEmails:     gyms,
			Gymnasts:      inmemdb.NewGymnastRepository(db),
			Registrations: inmemdb.NewRegistrationRepository(db),
			Uploads:       inmemdb.NewRosterRepository(db),
			Challenges:    inmemdb.NewChallengeRepository(db),
			Rewards:       inmemdb.NewRewardRepository(db),
			Events:        inmemdb.NewEventRepository(db),
			Tx:            db,
			Closer:        func() error { return nil },
		}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(context.Background(), db.DB, loggerParam.Logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	gyms := sqlxrepos.NewGymRepository(db)
	return Store{
		Users:         sqlxrepos.NewUserRepository(db),
		Gyms:          gyms,
		GymEmails:     gyms,
		Gymnasts:      sqlxrepos.NewGymnastRepository(db),
		Registrations: sqlxrepos.NewRegistrationRepository(db),
		Uploads:       sqlxrepos.NewRosterRepository(db),
		Challenges:    sqlxrepos.NewChallengeRepository(db),
		Rewards:       sqlxrepos.NewRewardRepository(db),
		Events:        sqlxrepos.NewEventRepository(db),
		Tx:            sqlxrepos.NewTransactor(db),
		Closer:        db.Close,
	}
}

func newEmailService(conf *core.Config) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, log.New(os.Stdout, "EMAIL : ", log.LstdFlags))
	}
	return emailsvc.NewSendgridService(conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator() *validator.Validate {
	return validator.New()
}

type serverParams struct {
	dig.In

	Conf            *core.Config
	Logger          core.Logger
	Validate        *validator.Validate
	Translator      ut.Translator
	UserSvc         *user.Service
	GymSvc          *gym.Service
	GymnastSvc      *gymnast.Service
	RegistrationSvc *registration.Service
	RosterSvc       *roster.Service
	ChallengeSvc    *challenge.Service
	RewardSvc       *reward.Service
	EventSvc        *event.Service
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            p.Conf,
			Logger:          p.Logger,
			Validate:        p.Validate,
			Translator:      p.Translator,
			UserSvc:         p.UserSvc,
			GymSvc:          p.GymSvc,
			GymnastSvc:      p.GymnastSvc,
			RegistrationSvc: p.RegistrationSvc,
			RosterSvc:       p.RosterSvc,
			ChallengeSvc:    p.ChallengeSvc,
			RewardSvc:       p.RewardSvc,
			EventSvc:        p.EventSvc,
		},
	)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewNotifier))
	must(c.Provide(newValidator))
	must(c.Provide(newTranslator))

	must(c.Provide(gym.NewGate))
	must(c.Provide(user.NewService))
	must(c.Provide(gym.NewService))
	must(c.Provide(gymnast.NewService))
	must(c.Provide(registration.NewService))
	must(c.Provide(roster.NewService))
	must(c.Provide(challenge.NewService))
	must(c.Provide(reward.NewService))
	must(c.Provide(event.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
