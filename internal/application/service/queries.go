package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/device"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/attrs"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

// checkerStatuses are the applications a checker can see.
var checkerStatuses = []models.Status{models.StatusWithChecker, models.StatusApproved, models.StatusRejected}

// Get returns the full view of any application.
func (s *Service) Get(ctx context.Context, number string) (*models.ApplicationView, error) {
	app, err := s.loadApplication(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, app)
}

// GetForCustomer returns the view only to the owning customer.
func (s *Service) GetForCustomer(ctx context.Context, customerID id.UserID, number string) (*models.ApplicationView, error) {
	app, err := s.loadApplication(ctx, number)
	if err != nil {
		return nil, err
	}
	if !app.OwnedBy(customerID) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "You are not authorized to view this application")
	}
	return s.view(ctx, app)
}

// ListForCustomer lists the customer's applications, newest submission first.
func (s *Service) ListForCustomer(ctx context.Context, customerID id.UserID) ([]models.ApplicationSummary, error) {
	apps, err := s.applications.ListByCustomer(ctx, customerID)
	return summarize(apps, err)
}

func (s *Service) ListAll(ctx context.Context) ([]models.ApplicationSummary, error) {
	apps, err := s.applications.ListAll(ctx)
	return summarize(apps, err)
}

// ListByStatus filters by status. An empty or unrecognised filter lists
// every application.
func (s *Service) ListByStatus(ctx context.Context, filter string) ([]models.ApplicationSummary, error) {
	status, err := models.ParseStatus(filter)
	if filter == "" || err != nil {
		return s.ListAll(ctx)
	}
	apps, err := s.applications.ListByStatuses(ctx, []models.Status{status})
	return summarize(apps, err)
}

// ListForChecker lists applications past the maker stage.
func (s *Service) ListForChecker(ctx context.Context) ([]models.ApplicationSummary, error) {
	apps, err := s.applications.ListByStatuses(ctx, checkerStatuses)
	return summarize(apps, err)
}

// DashboardStats counts applications by status as seen by role. Customers
// only see their own applications.
func (s *Service) DashboardStats(ctx context.Context, role id.Role, userID id.UserID) (*models.DashboardStats, error) {
	var scope *id.UserID
	switch role {
	case id.RoleCustomer:
		scope = &userID
	case id.RoleMaker, id.RoleChecker:
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "Unknown role: "+string(role))
	}

	counts, err := s.applications.CountByStatus(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
	}
	var stats models.DashboardStats
	switch role {
	case id.RoleCustomer:
		stats = counts.CustomerStats()
	case id.RoleMaker:
		stats = counts.MakerStats()
	default:
		stats = counts.CheckerStats()
	}
	return &stats, nil
}

// view loads comments and document metadata concurrently.
func (s *Service) view(ctx context.Context, app *models.Application) (*models.ApplicationView, error) {
	var (
		comments []*models.Comment
		docs     []models.DocumentRef
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = s.comments.ListByApplication(gctx, app.ID)
		return err
	})
	if s.documents != nil {
		g.Go(func() error {
			var err error
			docs, err = s.documents.ListRefs(gctx, app.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application view")
	}
	return models.NewApplicationView(app, comments, docs), nil
}

func summarize(apps []*models.Application, err error) ([]models.ApplicationSummary, error) {
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	out := make([]models.ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		out = append(out, models.NewApplicationSummary(app))
	}
	return out, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	userID, _ := id.ParseUserID(attrs.ExtractString(attributes, "user_id"))
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   attrs.ExtractString(attributes, "application_number"),
		Action:    event,
		Decision:  attrs.ExtractString(attributes, "decision"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
		ActorRole: attrs.ExtractString(attributes, "role"),
		Device:    device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
