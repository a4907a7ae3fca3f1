package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/gym"
	"github.com/trezcool/gymleague/core/gymnast"
	"github.com/trezcool/gymleague/core/roster"
	"github.com/trezcool/gymleague/core/user"
	emailsvc "github.com/trezcool/gymleague/services/email"
	logsvc "github.com/trezcool/gymleague/services/logger"
	"github.com/trezcool/gymleague/storage/database"
	sqlxrepos "github.com/trezcool/gymleague/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	defer func() { _ = db.Close() }()
	if err = db.Ping(); err != nil {
		logger.Fatal(err.Error(), err)
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	gymnast.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, stdLogger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf)
	}
	notifier := core.NewNotifier(mailSvc, logger)

	tx := sqlxrepos.NewTransactor(db)
	usrRepo := sqlxrepos.NewUserRepository(db)
	gymRepo := sqlxrepos.NewGymRepository(db)
	gate := gym.NewGate(gymRepo)
	gymSvc := gym.NewService(gymRepo, usrRepo, gate, tx)
	gymnastSvc := gymnast.NewService(sqlxrepos.NewGymnastRepository(db), gymRepo, usrRepo, gate, notifier)

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db.DB,
		logger:     logger,
		out:        os.Stdout,
		validate:   validate,
		translator: translator,
		usrSvc:     user.NewService(usrRepo, gymRepo, tx),
		rosterSvc: roster.NewService(
			sqlxrepos.NewRosterRepository(db), gymSvc, gate, gymnastSvc, tx, notifier, logger, validate, translator,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
