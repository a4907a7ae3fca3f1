package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

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
	inmemdb "github.com/trezcool/gymleague/storage/database/inmem"
)

// Env wires every service on a fresh in-memory store.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *inmemdb.DB
	Mailer     *emailsvc.Mock
	Notifier   *core.Notifier
	Validate   *validator.Validate
	Translator ut.Translator

	Users      user.Repository
	Gyms       gym.Repository
	Gymnasts   gymnast.Repository
	Requests   registration.Repository
	Uploads    roster.Repository
	Challenges challenge.Repository
	Rewards    reward.Repository
	Events     event.Repository
	Gate       *gym.Gate

	UserSvc         *user.Service
	GymSvc          *gym.Service
	GymnastSvc      *gymnast.Service
	RegistrationSvc *registration.Service
	RosterSvc       *roster.Service
	ChallengeSvc    *challenge.Service
	RewardSvc       *reward.Service
	EventSvc        *event.Service
}

func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		Build:            "test",
		AppName:          "Gym League",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Gym League", Address: "noreply@test.com"},
		Server: core.ServerConfig{
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Auth: core.AuthConfig{
			SecretKey: "test-secret",
			TokenTTL:  time.Hour,
		},
	}
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", log.LstdFlags), conf)
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	gymnast.InitValidators(validate, translator)
	return validate, translator
}

func NewEnv(t *testing.T) *Env {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	conf := NewConfig()
	logger := NewLogger(conf)
	mailer := emailsvc.NewMock(conf)
	notifier := core.NewNotifier(mailer, logger)
	validate, translator := NewValidator()

	env := &Env{
		Conf:       conf,
		Logger:     logger,
		DB:         db,
		Mailer:     mailer,
		Notifier:   notifier,
		Validate:   validate,
		Translator: translator,
		Users:      inmemdb.NewUserRepository(db),
		Gyms:       inmemdb.NewGymRepository(db),
		Gymnasts:   inmemdb.NewGymnastRepository(db),
		Requests:   inmemdb.NewRegistrationRepository(db),
		Uploads:    inmemdb.NewRosterRepository(db),
		Challenges: inmemdb.NewChallengeRepository(db),
		Rewards:    inmemdb.NewRewardRepository(db),
		Events:     inmemdb.NewEventRepository(db),
	}
	env.Gate = gym.NewGate(env.Gyms)

	env.UserSvc = user.NewService(env.Users, env.Gyms, db)
	env.GymSvc = gym.NewService(env.Gyms, env.Users, env.Gate, db)
	env.GymnastSvc = gymnast.NewService(env.Gymnasts, env.Gyms, env.Users, env.Gate, notifier)
	env.RegistrationSvc = registration.NewService(env.Requests, env.GymSvc, env.Gate, env.GymnastSvc, db, notifier)
	env.RosterSvc = env.NewRosterService(env.Uploads)
	env.ChallengeSvc = challenge.NewService(env.Challenges, env.Gymnasts, env.Gyms, env.Gate, db)
	env.RewardSvc = reward.NewService(env.Rewards, env.Gymnasts, env.Gate, db)
	env.EventSvc = event.NewService(env.Events, env.Gymnasts, env.Gyms, env.Gate)
	return env
}

// NewRosterService builds a roster service on repo, sharing everything else with env.
func (env *Env) NewRosterService(repo roster.Repository) *roster.Service {
	return roster.NewService(
		repo,
		env.GymSvc,
		env.Gate,
		env.GymnastSvc,
		env.DB,
		env.Notifier,
		env.Logger,
		env.Validate,
		env.Translator,
	)
}

func CreateUser(t *testing.T, repo user.Repository, name, email, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateGym(t *testing.T, repo gym.Repository, name, email string, allowSelfRegistration bool) gym.Gym {
	now := time.Now().UTC()
	g, err := repo.CreateGym(context.Background(), gym.Gym{
		ID:                    uuid.NewString(),
		Name:                  name,
		Email:                 email,
		Approved:              true,
		MembershipPaid:        true,
		AllowSelfRegistration: allowSelfRegistration,
		CreatedAt:             now,
		UpdatedAt:             now,
	})
	if err != nil {
		t.Fatalf("CreateGym() failed: %v", err)
	}
	return g
}

func AddCoach(t *testing.T, repo gym.Repository, usr user.User, gymID string, isAdmin bool) {
	_, err := repo.AddCoach(context.Background(), gym.CoachAssociation{
		UserID:    usr.ID,
		GymID:     gymID,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("AddCoach() failed: %v", err)
	}
}

// CreateGymnast inserts a gymnast straight into repo with the given standing.
func CreateGymnast(t *testing.T, repo gymnast.Repository, gymID, firstName, level string, approved bool, points int) gymnast.Gymnast {
	now := time.Now().UTC()
	typ := gymnast.TypeTeam
	if level == gymnast.LevelPreTeam {
		typ = gymnast.TypePreTeam
	}
	g, err := repo.CreateGymnast(context.Background(), gymnast.Gymnast{
		ID:        uuid.NewString(),
		GymID:     gymID,
		FirstName: firstName,
		LastName:  "Test",
		BirthDate: "2012-05-04",
		Level:     level,
		Type:      typ,
		Approved:  approved,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGymnast() failed: %v", err)
	}
	if points != 0 {
		if g, err = repo.AddPoints(context.Background(), g.ID, points); err != nil {
			t.Fatalf("CreateGymnast() failed to add points: %v", err)
		}
	}
	return g
}

// NewGymnast returns a valid gymnast payload.
func NewGymnast(firstName, level string) gymnast.NewGymnast {
	return gymnast.NewGymnast{
		FirstName:   firstName,
		LastName:    "Test",
		BirthDate:   "2012-05-04",
		Level:       level,
		ParentName:  "Parent " + firstName,
		ParentEmail: "parent." + firstName + "@test.com",
	}
}
