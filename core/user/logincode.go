package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
)

var (
	// ErrCodeNotFound is returned by a CodeRepository when no pending code
	// exists for an email.
	ErrCodeNotFound = errors.New("login code not found")

	textGenTimeout = 15 * time.Second
)

type (
	// LoginCode is a short-lived one-time credential keyed by email.
	// At most one pending code exists per email at a time.
	LoginCode struct {
		Email     string    `json:"email"`
		Code      string    `json:"code"`
		ExpiresAt time.Time `json:"expires_at"` // UTC
	}

	CodeRepository interface {
		// SaveLoginCode upserts; any prior pending code for the email is replaced.
		SaveLoginCode(lc LoginCode) error
		GetLoginCode(email string) (LoginCode, error)
		DeleteLoginCode(email string) error
	}
)

// RequestLoginCode issues a fresh 6-digit code for the email, stores it with
// a core.Conf.LoginCodeTimeout expiry and mails it out. The mail is drafted
// and sent in the background; a delivery failure never invalidates the
// stored code.
func (svc *service) RequestLoginCode(email string) error {
	email = core.CleanString(email, true /* lower */)

	code, err := generateLoginCode()
	if err != nil {
		return errors.Wrap(err, "generating login code")
	}
	lc := LoginCode{
		Email:     email,
		Code:      code,
		ExpiresAt: nowFunc().UTC().Add(core.Conf.LoginCodeTimeout),
	}
	if err := svc.codeRepo.SaveLoginCode(lc); err != nil {
		return errors.Wrap(err, "saving login code")
	}

	go svc.sendLoginCodeMail(email, code)
	return nil
}

// VerifyLoginCode validates a submitted code. A correct code is deleted on
// success (single-use); an expired entry is deleted on detection; a mismatch
// leaves the entry intact so the user may retry until expiry.
func (svc *service) VerifyLoginCode(email, code string) (bool, error) {
	email = core.CleanString(email, true /* lower */)

	lc, err := svc.codeRepo.GetLoginCode(email)
	if err != nil {
		if errors.Cause(err) == ErrCodeNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding login code")
	}

	// the expiry instant itself is still valid
	if nowFunc().UTC().After(lc.ExpiresAt) {
		if err := svc.codeRepo.DeleteLoginCode(email); err != nil {
			return false, errors.Wrap(err, "deleting expired login code")
		}
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(lc.Code), []byte(code)) == 1 {
		if err := svc.codeRepo.DeleteLoginCode(email); err != nil {
			return false, errors.Wrap(err, "deleting used login code")
		}
		return true, nil
	}
	return false, nil
}

func (svc *service) sendLoginCodeMail(email, code string) {
	validMins := int(core.Conf.LoginCodeTimeout / time.Minute)

	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: email}},
		Subject: "Your login code",
	}

	ctx, cancel := context.WithTimeout(context.Background(), textGenTimeout)
	defer cancel()
	body, err := svc.textGen.Generate(ctx, loginCodePrompt(code, validMins))
	if err != nil {
		// fall back to the static template
		svc.logger.Warn(fmt.Sprintf("drafting login code email: %v", err), err)
		msg.TemplateName = "login-code"
		msg.TemplateData = struct {
			Code      string
			ValidMins int
		}{code, validMins}
	} else {
		msg.BodyStr = body
	}

	svc.mailSvc.SendMessages(msg)
}

func loginCodePrompt(code string, validMins int) string {
	return fmt.Sprintf(
		"You are an automated system that sends verification codes. "+
			"A user has requested a one-time code to log in. The code is: %s. "+
			"Compose a simple, clear and concise email body that provides this code to the user. "+
			"Do not include a subject line, just the body of the email. "+
			"The email should state that the code expires in %d minutes.",
		code, validMins,
	)
}

// generateLoginCode returns a cryptographically sourced 6-digit code
// in [100000, 999999].
func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
