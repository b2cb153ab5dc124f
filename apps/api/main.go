package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof handlers
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/upskillway/crm/apps/api/echo"
	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/content"
	"github.com/upskillway/crm/core/lead"
	"github.com/upskillway/crm/core/stats"
	"github.com/upskillway/crm/core/trainer"
	"github.com/upskillway/crm/core/user"
	emailsvc "github.com/upskillway/crm/services/email"
	logsvc "github.com/upskillway/crm/services/logger"
	"github.com/upskillway/crm/services/upstream"
	"github.com/upskillway/crm/storage/database"
	"github.com/upskillway/crm/storage/database/sqlxrepos"
	"github.com/upskillway/crm/storage/localcache"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	sqlxDB := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sqlxDB), mailSvc, conf)

	cacheStore, err := localcache.NewFileStore(conf.Cache.Dir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up local cache: %v", err), err)
	}
	upstreamClient := upstream.NewClient(conf, logger)
	reconciler := college.NewReconciler(upstreamClient, cacheStore, logger)

	leadRepo := sqlxrepos.NewLeadRepository(sqlxDB)
	leadSvc := lead.NewService(leadRepo, reconciler, usrSvc, mailSvc, logger)
	trainerRepo := sqlxrepos.NewTrainerRepository(sqlxDB)
	trainerSvc := trainer.NewService(trainerRepo, logger)
	contentSvc := content.NewService(sqlxrepos.NewContentRepository(sqlxDB))

	statsSvc := stats.NewService(map[stats.Category]stats.Fetcher{
		stats.CategoryLeads:    localLeadFetcher(leadRepo),
		stats.CategoryUsers:    localUserFetcher(usrSvc),
		stats.CategoryTrainers: localTrainerFetcher(trainerSvc),
		stats.CategoryColleges: upstreamClient.ListFetcher("/colleges"),
	}, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	lead.InitValidators(validate, translator)
	college.InitValidators(validate, translator)
	content.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:    conf.Server.Address(),
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    usrSvc,
		LeadSvc:    leadSvc,
		TrainerSvc: trainerSvc,
		ContentSvc: contentSvc,
		Reconciler: reconciler,
		StatsSvc:   statsSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case <-server.ShutdownSignal():
		logger.Info("shutdown requested, start shutdown...")
		stopServer(server, conf, logger)

	case sig := <-osSignals:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopServer(server, conf, logger)
	}
}

func stopServer(server echoapi.Server, conf *core.Config, logger core.Logger) {
	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// Local category fetchers feed the dashboard the same page shape the upstream
// platform serves, with an authoritative total attached.

func localLeadFetcher(repo lead.Repository) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		leads, err := repo.QueryAllLeads(ctx)
		if err != nil {
			return stats.ListResponse{}, err
		}
		records := make([]stats.Record, 0, len(leads))
		for _, l := range leads {
			if len(records) == limit {
				break
			}
			records = append(records, stats.Record{Status: l.Status})
		}
		return pagedResponse(records, len(leads), page, limit), nil
	}
}

func localUserFetcher(svc user.Service) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		users, err := svc.QueryAll(ctx)
		if err != nil {
			return stats.ListResponse{}, err
		}
		records := make([]stats.Record, 0, len(users))
		for _, usr := range users {
			if len(records) == limit {
				break
			}
			active := usr.IsActive
			records = append(records, stats.Record{IsActive: &active})
		}
		return pagedResponse(records, len(users), page, limit), nil
	}
}

func localTrainerFetcher(svc trainer.Service) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		trainers, err := svc.QueryAll(ctx)
		if err != nil {
			return stats.ListResponse{}, err
		}
		records := make([]stats.Record, 0, len(trainers))
		for _, t := range trainers {
			if len(records) == limit {
				break
			}
			records = append(records, stats.Record{Status: t.Status})
		}
		return pagedResponse(records, len(trainers), page, limit), nil
	}
}

func pagedResponse(records []stats.Record, total, page, limit int) stats.ListResponse {
	return stats.ListResponse{
		Success: true,
		Data:    records,
		Pagination: &stats.Pagination{
			Total:   total,
			Page:    page,
			Limit:   limit,
			HasNext: page*limit < total,
		},
	}
}
