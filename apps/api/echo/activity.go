package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/user"
)

type activityApi struct {
	svc    activity.Service
	usrSvc user.Service
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc activity.Service, usrSvc user.Service) {
	api := activityApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("/activities", jwt)
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *activityApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	act, err := api.svc.Create(usr, data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *activityApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	acts, err := api.svc.QueryByUser(usr)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if acts == nil {
		acts = []activity.Activity{}
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	act, err := api.svc.GetByID(usr, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	act, err := api.svc.GetByID(usr, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding activity")
	}

	var data activity.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(act, core.Validate); err != nil {
		return err
	}

	act, err = api.svc.Update(usr, act.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(usr, ctx.Param("id")); err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}
