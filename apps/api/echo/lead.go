package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/lead"
)

type leadApi struct {
	opts *Options
}

func registerLeadAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := leadApi{opts: opts}

	lg := g.Group("/leads", jwt, staffMiddleware())
	lg.POST("", api.create)
	lg.GET("", api.query)
	lg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := lg.Group("/:id", leadObjectMiddleware(opts.LeadSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.POST("/assign", api.assign, managerMiddleware())
	dg.POST("/convert", api.convert)
}

// Handlers

func (api *leadApi) create(ctx echo.Context) error {
	var data lead.NewLead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLead")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	l, err := api.opts.LeadSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lead")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *leadApi) query(ctx echo.Context) error {
	filter := lead.QueryFilter{
		Search:     ctx.QueryParam("search"),
		AssigneeID: ctx.QueryParam("assignee_id"),
	}
	if statuses, ok := ctx.QueryParams()["status"]; ok {
		filter.Statuses = statuses
	}
	if from := ctx.QueryParam("created_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = t
		}
	}
	if to := ctx.QueryParam("created_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = t
		}
	}

	leads, err := api.opts.LeadSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying leads")
	}
	if leads == nil {
		leads = []lead.Lead{}
	}
	return ctx.JSON(http.StatusOK, leads)
}

func (api *leadApi) retrieve(ctx echo.Context) error {
	l, ok := ctx.Get("object").(lead.Lead)
	if !ok {
		return errors.New("lead object not found in echo.Context")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *leadApi) update(ctx echo.Context) error {
	l, ok := ctx.Get("object").(lead.Lead)
	if !ok {
		return errors.New("lead object not found in echo.Context")
	}

	var data lead.UpdateLead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLead")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	l, err := api.opts.LeadSvc.Update(ctx.Request().Context(), l.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating lead")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *leadApi) assign(ctx echo.Context) error {
	l, ok := ctx.Get("object").(lead.Lead)
	if !ok {
		return errors.New("lead object not found in echo.Context")
	}

	var data AssignLeadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignLeadRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	l, err := api.opts.LeadSvc.Assign(ctx.Request().Context(), l.ID, data.AssigneeID)
	if err != nil {
		return errors.Wrap(err, "assigning lead")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *leadApi) convert(ctx echo.Context) error {
	l, ok := ctx.Get("object").(lead.Lead)
	if !ok {
		return errors.New("lead object not found in echo.Context")
	}

	var data college.NewCollege
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCollege")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	l, c, err := api.opts.LeadSvc.Convert(ctx.Request().Context(), l.ID, data)
	if err != nil {
		return errors.Wrap(err, "converting lead")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"lead": l, "college": c})
}

func (api *leadApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.opts.LeadSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting leads")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func leadObjectMiddleware(svc lead.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			l, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == lead.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding lead by ID")
			}
			ctx.Set("object", l)
			return next(ctx)
		}
	}
}
