package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/upskillway/crm/core/trainer"
)

type trainerApi struct {
	opts *Options
}

func registerTrainerAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := trainerApi{opts: opts}

	tg := g.Group("/trainers", jwt, staffMiddleware())
	tg.POST("", api.create, managerMiddleware())
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple, adminMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, managerMiddleware())
	tg.GET("/:id/bookings", api.bookings)

	bg := g.Group("/bookings", jwt, staffMiddleware())
	bg.POST("", api.book)
	bg.POST("/:id/confirm", api.confirmBooking, managerMiddleware())
	bg.POST("/:id/complete", api.completeBooking)
	bg.POST("/:id/cancel", api.cancelBooking)
}

// Handlers

func (api *trainerApi) create(ctx echo.Context) error {
	var data trainer.NewTrainer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrainer")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	t, err := api.opts.TrainerSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating trainer")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *trainerApi) query(ctx echo.Context) error {
	trainers, err := api.opts.TrainerSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying trainers")
	}
	if trainers == nil {
		trainers = []trainer.Trainer{}
	}
	return ctx.JSON(http.StatusOK, trainers)
}

func (api *trainerApi) retrieve(ctx echo.Context) error {
	t, err := api.opts.TrainerSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == trainer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding trainer by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trainerApi) update(ctx echo.Context) error {
	var data trainer.UpdateTrainer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTrainer")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	t, err := api.opts.TrainerSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == trainer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating trainer")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trainerApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.opts.TrainerSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting trainers")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trainerApi) bookings(ctx echo.Context) error {
	bookings, err := api.opts.TrainerSvc.Bookings(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying bookings")
	}
	if bookings == nil {
		bookings = []trainer.Booking{}
	}
	return ctx.JSON(http.StatusOK, bookings)
}

func (api *trainerApi) book(ctx echo.Context) error {
	var data trainer.NewBooking
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBooking")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	b, err := api.opts.TrainerSvc.Book(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == trainer.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "booking trainer")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *trainerApi) confirmBooking(ctx echo.Context) error {
	return api.setBookingStatus(ctx, api.opts.TrainerSvc.ConfirmBooking)
}

func (api *trainerApi) completeBooking(ctx echo.Context) error {
	return api.setBookingStatus(ctx, api.opts.TrainerSvc.CompleteBooking)
}

func (api *trainerApi) cancelBooking(ctx echo.Context) error {
	return api.setBookingStatus(ctx, api.opts.TrainerSvc.CancelBooking)
}

func (api *trainerApi) setBookingStatus(
	ctx echo.Context,
	op func(context.Context, string) (trainer.Booking, error),
) error {
	b, err := op(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == trainer.ErrBookingNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating booking")
	}
	return ctx.JSON(http.StatusOK, b)
}
