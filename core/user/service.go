package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
	}

	ServiceInterface interface {
		CheckUniqueness(uname string) error
		Register(ctx context.Context, nu NewUser) (User, error)
		GetByUsername(ctx context.Context, uname string) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) CheckUniqueness(uname string) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname); err != nil {
		if err == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the account and notifies the configured administrator.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{Username: nu.Username}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.mailSvc.SendMessages(svc.registrationEmail(usr))
	return usr, nil
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) registrationEmail(usr User) *core.EmailMessage {
	return &core.EmailMessage{
		To:      []mail.Address{svc.conf.AdminAddress()},
		Subject: "New registration",
		Body:    fmt.Sprintf("A new account %q has been registered.", usr.Username),
	}
}
