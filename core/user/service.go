package user

import (
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(usr User) (User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		QueryAllUsers() ([]User, error)
		UpdateUser(usr User, isActive *bool) (User, error)
		// DeleteUsersByID deletes users together with all their activities
		// and study sessions.
		DeleteUsersByID(ids ...string) error
	}

	Service interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		Create(nu NewUser) (User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		GetOrCreateByEmail(email string) (User, error)
		QueryAll() ([]User, error)
		Update(id string, uu UpdateUser) (User, error)
		SetLastLogin(usr User) (User, error)
		Delete(ids ...string) error
		RequestLoginCode(email string) error
		VerifyLoginCode(email, code string) (bool, error)
	}

	service struct {
		repo     Repository
		codeRepo CodeRepository
		mailSvc  core.EmailService
		textGen  core.TextGenerator
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	codeRepo CodeRepository,
	mailSvc core.EmailService,
	textGen core.TextGenerator,
	logger core.Logger,
) Service {
	return &service{
		repo:     repo,
		codeRepo: codeRepo,
		mailSvc:  mailSvc,
		textGen:  textGen,
		logger:   logger,
	}
}

func (svc *service) CheckEmailUniqueness(email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, excludedUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nu NewUser) (User, error) {
	now := nowFunc().UTC()
	isActive := true
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

// GetOrCreateByEmail returns the account registered under email, creating a
// password-less one on the fly. Backs the one-time-code login flow where a
// verified email is all we know about the user.
func (svc *service) GetOrCreateByEmail(email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	usr, err := svc.repo.GetUserByEmail(email)
	if err == nil {
		return usr, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding user by email")
	}

	now := nowFunc().UTC()
	isActive := true
	usr = User{
		Email:     email,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err = svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *service) Update(id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		UpdatedAt: nowFunc().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(usr, uu.IsActive)
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = nowFunc().UTC()
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteUsersByID(ids...)
}

func (svc *service) sendWelcomeMail(usr User) {
	name := usr.Name
	if name == "" {
		name = usr.Email
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: usr.Email}},
		Subject:      "Welcome to " + core.Conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{name},
	})
}
