package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/content"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/stats"
	"github.com/upskillway/crm/core/trainer"
	"github.com/upskillway/crm/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc    user.Service
		LeadSvc    lead.Service
		TrainerSvc trainer.Service
		ContentSvc content.Service
		Reconciler *college.Reconciler
		StatsSvc   *stats.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		// ShutdownSignal is closed when an unrecoverable error asks for a
		// graceful shutdown.
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	initJWTConfig(opts.Conf)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts)
	registerLeadAPI(v1, jwt, s.opts)
	registerCollegeAPI(v1, jwt, s.opts)
	registerTrainerAPI(v1, jwt, s.opts)
	registerContentAPI(v1, jwt, s.opts)
	registerDashboardAPI(v1, jwt, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func (s *server) signalShutdown() {
	close(s.shutdown)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Upskillway CRM API!")
}
