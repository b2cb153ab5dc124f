package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type dashboardApi struct {
	opts *Options
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := dashboardApi{opts: opts}

	dg := g.Group("/dashboard", jwt, staffMiddleware())
	dg.GET("/stats", api.stats)
}

// stats refreshes and returns the dashboard counters. A failing category
// endpoint shows up as zeroes; the response itself never fails on one.
func (api *dashboardApi) stats(ctx echo.Context) error {
	dashboard := api.opts.StatsSvc.Refresh(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, dashboard)
}
