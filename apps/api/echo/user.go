package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/user"
)

type userApi struct {
	svc user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/login-code` & `/login-code-confirm`
	ug.POST("/register", api.create)
	ug.POST("/login", api.login)
	ug.POST("/login-code", api.requestLoginCode)
	ug.POST("/login-code-confirm", api.confirmLoginCode)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.retrieveMe)
	ag.PUT("/me", api.updateMe)
	ag.DELETE("/me", api.destroyMe)
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(core.Validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	claims, err := authenticate(data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) requestLoginCode(ctx echo.Context) error {
	var data LoginCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCodeRequest")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	if err := api.svc.RequestLoginCode(data.Email); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting login code"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "A one-time login code is on its way to your inbox. It expires shortly; request a new one if needed.",
	})
}

func (api *userApi) confirmLoginCode(ctx echo.Context) error {
	var data LoginCodeConfirmRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCodeConfirmRequest")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	ok, err := api.svc.VerifyLoginCode(data.Email, data.Code)
	if err != nil {
		return errors.Wrap(err, "verifying login code")
	}
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "code", Error: "invalid or expired code"})
	}

	usr, err := api.svc.GetOrCreateByEmail(data.Email)
	if err != nil {
		return errors.Wrap(err, "getting or creating user")
	}
	claims, err := loginClaims(usr, api.svc)
	if err != nil {
		return errors.Wrap(err, "building claims")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) retrieveMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	// `IsActive` is not self-service
	data.IsActive = nil

	if err := data.Validate(usr, core.Validate, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// destroyMe deletes the authenticated user's account together with their
// activities and study sessions. The JWT alone is not enough: the caller must
// re-authenticate with their current password, or with a fresh login code for
// password-less accounts.
func (api *userApi) destroyMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data DestroyAccountRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DestroyAccountRequest")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	if usr.HasUsablePassword() {
		if err := usr.CheckPassword(data.Password); err != nil {
			return errAuthenticationFailed
		}
	} else {
		ok, err := api.svc.VerifyLoginCode(usr.Email, data.Code)
		if err != nil {
			return errors.Wrap(err, "verifying login code")
		}
		if !ok {
			return errAuthenticationFailed
		}
	}

	if err := api.svc.Delete(usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	LoginCodeRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	LoginCodeConfirmRequest struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyAccountRequest struct {
		Password string `json:"password" validate:"required_without=Code"`
		Code     string `json:"code" validate:"required_without=Password,omitempty,len=6,numeric"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (lc *LoginCodeRequest) Validate(validate *validator.Validate) error {
	lc.Email = core.CleanString(lc.Email, true /* lower */)
	return validate.Struct(lc)
}

func (lc *LoginCodeConfirmRequest) Validate(validate *validator.Validate) error {
	lc.Email = core.CleanString(lc.Email, true /* lower */)
	lc.Code = core.CleanString(lc.Code)
	return validate.Struct(lc)
}

func (dr *DestroyAccountRequest) Validate(validate *validator.Validate) error {
	dr.Code = core.CleanString(dr.Code)
	return validate.Struct(dr)
}
