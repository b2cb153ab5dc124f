package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/upskillway/crm/core/content"
)

type contentApi struct {
	opts *Options
}

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := contentApi{opts: opts}

	cg := g.Group("/content")

	// public read endpoints for the marketing site
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.GET("/slug/:slug", api.retrieveBySlug)

	// authed write endpoints
	ag := cg.Group("", jwt, managerMiddleware())
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("", api.destroyMultiple)
}

// Handlers

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	it, err := api.opts.ContentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating content item")
	}
	return ctx.JSON(http.StatusCreated, it)
}

func (api *contentApi) query(ctx echo.Context) error {
	filter := content.QueryFilter{
		Kind:   ctx.QueryParam("kind"),
		Search: ctx.QueryParam("search"),
	}
	if published := ctx.QueryParam("published"); published != "" {
		if p, err := strconv.ParseBool(published); err == nil {
			filter.Published = &p
		}
	}

	items, err := api.opts.ContentSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying content items")
	}
	if items == nil {
		items = []content.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	it, err := api.opts.ContentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding content item by ID")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *contentApi) retrieveBySlug(ctx echo.Context) error {
	it, err := api.opts.ContentSvc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding content item by slug")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *contentApi) update(ctx echo.Context) error {
	var data content.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	it, err := api.opts.ContentSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating content item")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *contentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.opts.ContentSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting content items")
	}
	return ctx.NoContent(http.StatusNoContent)
}
