package lead

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/upskillway/crm/core"
	"github.com/upskillway/crm/core/college"
	"github.com/upskillway/crm/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("lead not found")
	ErrAlreadyClosed = errors.New("lead is already converted or lost")
)

type (
	Repository interface {
		CreateLead(ctx context.Context, l Lead) (Lead, error)
		QueryAllLeads(ctx context.Context) ([]Lead, error)
		GetLeadByID(ctx context.Context, id string) (Lead, error)
		// FilterLeads applies AND operation on available QueryFilter fields.
		FilterLeads(ctx context.Context, filter QueryFilter) ([]Lead, error)
		UpdateLead(ctx context.Context, l Lead) (Lead, error)
		DeleteLeadsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nl NewLead) (Lead, error)
		QueryAll(ctx context.Context) ([]Lead, error)
		GetByID(ctx context.Context, id string) (Lead, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Lead, error)
		Update(ctx context.Context, id string, ul UpdateLead) (Lead, error)
		Assign(ctx context.Context, id, assigneeID string) (Lead, error)
		// Convert marks the lead CONVERTED and creates the corresponding
		// College through the reconciler; a fallback or skipped college
		// write never fails the conversion.
		Convert(ctx context.Context, id string, nc college.NewCollege) (Lead, college.College, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo       Repository
		reconciler *college.Reconciler
		usrSvc     user.Service
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	reconciler *college.Reconciler,
	usrSvc user.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) Service {
	return &service{
		repo:       repo,
		reconciler: reconciler,
		usrSvc:     usrSvc,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func (svc *service) Create(ctx context.Context, nl NewLead) (Lead, error) {
	now := time.Now().UTC()
	l := Lead{
		Name:        nl.Name,
		Email:       nl.Email,
		Phone:       nl.Phone,
		CollegeName: nl.CollegeName,
		Source:      nl.Source,
		Status:      StatusNew,
		AssigneeID:  nl.AssigneeID,
		Notes:       nl.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l, err := svc.repo.CreateLead(ctx, l)
	if err != nil {
		return Lead{}, err
	}
	if l.AssigneeID != "" {
		svc.notifyAssignee(ctx, l)
	}
	return l, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Lead, error) {
	return svc.repo.QueryAllLeads(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Lead, error) {
	return svc.repo.GetLeadByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Lead, error) {
	return svc.repo.FilterLeads(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, ul UpdateLead) (Lead, error) {
	l := Lead{
		ID:          id,
		Name:        ul.Name,
		Email:       ul.Email,
		Phone:       ul.Phone,
		CollegeName: ul.CollegeName,
		Source:      ul.Source,
		Status:      ul.Status,
		AssigneeID:  ul.AssigneeID,
		Notes:       ul.Notes,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateLead(ctx, l)
}

func (svc *service) Assign(ctx context.Context, id, assigneeID string) (Lead, error) {
	l, err := svc.repo.UpdateLead(ctx, Lead{ID: id, AssigneeID: assigneeID, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return Lead{}, err
	}
	svc.notifyAssignee(ctx, l)
	return l, nil
}

func (svc *service) Convert(ctx context.Context, id string, nc college.NewCollege) (Lead, college.College, error) {
	l, err := svc.repo.GetLeadByID(ctx, id)
	if err != nil {
		return Lead{}, college.College{}, err
	}
	if l.IsClosed() {
		return Lead{}, college.College{}, core.NewValidationError(ErrAlreadyClosed)
	}

	if nc.Name == "" {
		nc.Name = l.CollegeName
	}
	if nc.Name == "" {
		nc.Name = l.Name
	}
	nc.SourceLeadID = l.ID

	c, err := svc.reconciler.Create(ctx, nc)
	if err != nil {
		return Lead{}, college.College{}, errors.Wrap(err, "creating college from lead")
	}

	l, err = svc.repo.UpdateLead(ctx, Lead{ID: l.ID, Status: StatusConverted, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return Lead{}, college.College{}, errors.Wrap(err, "marking lead converted")
	}
	return l, c, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteLeadsByID(ctx, ids...)
}

func (svc *service) notifyAssignee(ctx context.Context, l Lead) {
	counselor, err := svc.usrSvc.GetByID(ctx, l.AssigneeID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("lead %s: assignee %s not found, skipping notification", l.ID, l.AssigneeID), err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: counselor.Name, Address: counselor.Email}},
		Subject: "New lead assigned to you",
		BodyStr: fmt.Sprintf("Hi %s,\n\nLead %q (%s) has been assigned to you.", counselor.Name, l.Name, l.Status),
	})
}
