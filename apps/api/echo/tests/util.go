package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

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
	inmemdb "github.com/upskillway/crm/storage/database/inmem"
	"github.com/upskillway/crm/storage/localcache"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	app  echoapi.Server
	conf *core.Config

	usrRepo     user.Repository
	leadRepo    lead.Repository
	trainerRepo trainer.Repository
	contentRepo content.Repository

	usrSvc     user.Service
	leadSvc    lead.Service
	trainerSvc trainer.Service
	contentSvc content.Service
	reconciler *college.Reconciler
	remote     *remoteStub
	cache      *localcache.MemStore
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	lead.InitValidators(validate, translator)
	college.InitValidators(validate, translator)
	content.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	ta := &testApp{
		conf:        conf,
		usrRepo:     inmemdb.NewUserRepository(db),
		leadRepo:    inmemdb.NewLeadRepository(db),
		trainerRepo: inmemdb.NewTrainerRepository(db),
		contentRepo: inmemdb.NewContentRepository(db),
		remote:      &remoteStub{},
		cache:       localcache.NewMemStore(),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	ta.usrSvc = user.NewServiceMock(ta.usrRepo, mailSvc, conf)
	ta.reconciler = college.NewReconciler(ta.remote, ta.cache, logger)
	ta.leadSvc = lead.NewService(ta.leadRepo, ta.reconciler, ta.usrSvc, mailSvc, logger)
	ta.trainerSvc = trainer.NewService(ta.trainerRepo, logger)
	ta.contentSvc = content.NewService(ta.contentRepo)

	statsSvc := stats.NewService(map[stats.Category]stats.Fetcher{
		stats.CategoryLeads:    leadFetcher(ta.leadRepo),
		stats.CategoryUsers:    userFetcher(ta.usrRepo),
		stats.CategoryTrainers: trainerFetcher(ta.trainerRepo),
		stats.CategoryColleges: collegeFetcher(ta.reconciler),
	}, logger)

	ta.app = echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        ta.usrSvc,
		LeadSvc:        ta.leadSvc,
		TrainerSvc:     ta.trainerSvc,
		ContentSvc:     ta.contentSvc,
		Reconciler:     ta.reconciler,
		StatsSvc:       statsSvc,
	})
	return ta
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// remoteStub is an in-memory upstream platform assigning numeric ids.
type remoteStub struct {
	nextID   int
	colleges []college.College

	// when set, all calls fail with this error
	err error
}

func (r *remoteStub) CreateCollege(ctx context.Context, c college.College) (college.College, error) {
	if r.err != nil {
		return college.College{}, r.err
	}
	r.nextID++
	c.ID = strconv.Itoa(r.nextID)
	r.colleges = append(r.colleges, c)
	return c, nil
}

func (r *remoteStub) UpdateCollege(ctx context.Context, id string, fields college.UpdateCollege) (college.College, error) {
	if r.err != nil {
		return college.College{}, r.err
	}
	for i, c := range r.colleges {
		if c.ID == id {
			if fields.Name != "" {
				c.Name = fields.Name
			}
			if fields.Status != "" {
				c.Status = fields.Status
			}
			r.colleges[i] = c
			return c, nil
		}
	}
	return college.College{}, &remoteErr{code: 404, msg: "college not found"}
}

type remoteErr struct {
	code int
	msg  string
}

func (e *remoteErr) Error() string   { return e.msg }
func (e *remoteErr) StatusCode() int { return e.code }
func (e *remoteErr) Message() string { return e.msg }

// Local category fetchers, same page shape as the upstream platform.

func leadFetcher(repo lead.Repository) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		leads, err := repo.QueryAllLeads(ctx)
		if err != nil {
			return stats.ListResponse{}, err
		}
		records := make([]stats.Record, 0, len(leads))
		for _, l := range leads {
			records = append(records, stats.Record{Status: l.Status})
		}
		return pagedResponse(records, page, limit), nil
	}
}

func userFetcher(repo user.Repository) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		users, err := repo.QueryAllUsers(ctx)
		if err != nil {
			return stats.ListResponse{}, err
		}
		records := make([]stats.Record, 0, len(users))
		for _, usr := range users {
			active := usr.IsActive
			records = append(records, stats.Record{IsActive: &active})
		}
		return pagedResponse(records, page, limit), nil
	}
}

func trainerFetcher(repo trainer.Repository) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		trainers, err := repo.QueryAllTrainers(ctx)
		if err != nil {
			return stats.ListResponse{}, err
		}
		records := make([]stats.Record, 0, len(trainers))
		for _, tr := range trainers {
			records = append(records, stats.Record{Status: tr.Status})
		}
		return pagedResponse(records, page, limit), nil
	}
}

func collegeFetcher(rec *college.Reconciler) stats.Fetcher {
	return func(ctx context.Context, page, limit int) (stats.ListResponse, error) {
		colleges := rec.CachedColleges()
		records := make([]stats.Record, 0, len(colleges))
		for _, c := range colleges {
			records = append(records, stats.Record{Status: c.Status})
		}
		return pagedResponse(records, page, limit), nil
	}
}

func pagedResponse(records []stats.Record, page, limit int) stats.ListResponse {
	return stats.ListResponse{
		Success:    true,
		Data:       records,
		Pagination: &stats.Pagination{Total: len(records), Page: page, Limit: limit},
	}
}

// Fixtures

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func createLead(t *testing.T, repo lead.Repository, name, status string) lead.Lead {
	t.Helper()
	now := time.Now().UTC()
	l, err := repo.CreateLead(context.Background(), lead.Lead{
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLead() failed: %v", err)
	}
	return l
}

func createTrainer(t *testing.T, repo trainer.Repository, name, email string) trainer.Trainer {
	t.Helper()
	now := time.Now().UTC()
	tr, err := repo.CreateTrainer(context.Background(), trainer.Trainer{
		Name:      name,
		Email:     email,
		Status:    trainer.StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTrainer() failed: %v", err)
	}
	return tr
}

func reqCtx() context.Context { return context.Background() }

// HTTP helpers

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(conf, usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkCode(t *testing.T, wantCode int, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, wantCode, rec.Body.String())
	}
}
