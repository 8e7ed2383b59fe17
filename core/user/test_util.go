package user

import (
	"github.com/matludke/tempocerto/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose login-code emails are drafted and
// sent synchronously, so tests can assert on sent messages.
func NewServiceMock(
	repo Repository,
	codeRepo CodeRepository,
	mailSvc core.EmailService,
	textGen core.TextGenerator,
	logger core.Logger,
) Service {
	return &serviceMock{
		service: service{
			repo:     repo,
			codeRepo: codeRepo,
			mailSvc:  mailSvc,
			textGen:  textGen,
			logger:   logger,
		},
	}
}

func (svc *serviceMock) RequestLoginCode(email string) error {
	email = core.CleanString(email, true /* lower */)

	code, err := generateLoginCode()
	if err != nil {
		return err
	}
	lc := LoginCode{
		Email:     email,
		Code:      code,
		ExpiresAt: nowFunc().UTC().Add(core.Conf.LoginCodeTimeout),
	}
	if err := svc.codeRepo.SaveLoginCode(lc); err != nil {
		return err
	}

	// run synchronously
	svc.sendLoginCodeMail(email, code)
	return nil
}
