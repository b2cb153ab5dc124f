package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/upskillway/crm/core/college"
)

type collegeApi struct {
	opts *Options
}

func registerCollegeAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := collegeApi{opts: opts}

	cg := g.Group("/colleges", jwt, staffMiddleware())
	cg.POST("", api.create, managerMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, managerMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *collegeApi) create(ctx echo.Context) error {
	var data college.NewCollege
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCollege")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.Reconciler.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating college")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// query lists the locally cached colleges. The upstream platform remains the
// source of truth; this endpoint serves the durable mirror.
func (api *collegeApi) query(ctx echo.Context) error {
	colleges := api.opts.Reconciler.CachedColleges()
	if colleges == nil {
		colleges = []college.College{}
	}
	return ctx.JSON(http.StatusOK, colleges)
}

func (api *collegeApi) retrieve(ctx echo.Context) error {
	c, ok := api.opts.Reconciler.FindByID(ctx.Param("id"))
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *collegeApi) update(ctx echo.Context) error {
	var data college.UpdateCollege
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCollege")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.Reconciler.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating college")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *collegeApi) destroy(ctx echo.Context) error {
	if err := api.opts.Reconciler.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting college")
	}
	return ctx.NoContent(http.StatusNoContent)
}
