package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/study"
	"github.com/matludke/tempocerto/core/user"
)

type studyApi struct {
	svc    study.Service
	actSvc activity.Service
	usrSvc user.Service
}

func registerStudyAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc study.Service, actSvc activity.Service, usrSvc user.Service) {
	api := studyApi{svc: svc, actSvc: actSvc, usrSvc: usrSvc}

	sg := g.Group("", jwt)
	sg.POST("/sessions", api.logSession)
	sg.GET("/sessions", api.querySessions)
	sg.GET("/reports", api.report)
	sg.POST("/reports/summary", api.summary)
}

// Handlers

func (api *studyApi) logSession(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data SessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionRequest")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	act, err := api.actSvc.GetByID(usr, data.ActivityID)
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding activity")
	}

	sess, err := api.svc.Log(usr, act, data.StartTime, data.EndTime, data.Duration)
	if err != nil {
		if errors.Cause(err) == study.ErrActivityDone {
			return core.NewValidationError(nil, core.FieldError{Field: "activity_id", Error: err.Error()})
		}
		return errors.Wrap(err, "logging study session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *studyApi) querySessions(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sessions, err := api.svc.QueryByUser(usr)
	if err != nil {
		return errors.Wrap(err, "querying study sessions")
	}
	if sessions == nil {
		sessions = []study.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *studyApi) report(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	report, err := api.svc.Report(usr)
	if err != nil {
		return errors.Wrap(err, "building study report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *studyApi) summary(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	summary, err := api.svc.Summary(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "generating study summary")
	}
	return ctx.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}

type (
	SessionRequest struct {
		ActivityID string    `json:"activity_id" validate:"required"`
		StartTime  time.Time `json:"start_time" validate:"required"`
		EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
		Duration   int       `json:"duration" validate:"required,gt=0"` // minutes
	}

	SummaryResponse struct {
		Summary string `json:"summary"`
	}
)

func (sr *SessionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
