package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/idgen"
	"github.com/rakesh-tirumalaparapu/zipp/internal/application/metrics"
	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/events"
	usermodels "github.com/rakesh-tirumalaparapu/zipp/internal/user/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ApplicationStore,CommentStore,UserLookup,Notifier,DocumentLister,NumberGenerator,EventPublisher,AuditPublisher

// maxNumberAttempts bounds inserts retried after an application number collision.
const maxNumberAttempts = 3

var tracer = otel.Tracer("github.com/rakesh-tirumalaparapu/zipp/internal/application/service")

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByNumber(ctx context.Context, number string) (*models.Application, error)
	FindByNumberForUpdate(ctx context.Context, number string) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	SaveDetails(ctx context.Context, app *models.Application) error
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, number string) (bool, error)
	ListByCustomer(ctx context.Context, customerID id.UserID) ([]*models.Application, error)
	ListAll(ctx context.Context) ([]*models.Application, error)
	ListByStatuses(ctx context.Context, statuses []models.Status) ([]*models.Application, error)
	CountByStatus(ctx context.Context, customerID *id.UserID) (models.StatusCounts, error)
}

type CommentStore interface {
	Append(ctx context.Context, comment *models.Comment) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Comment, error)
}

// UserLookup resolves actors. A miss is reported as NotFound.
type UserLookup interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// Notifier fans out inbox entries. Delivery is best effort and never fails
// the calling action.
type Notifier interface {
	NotifyMakers(ctx context.Context, applicationNumber, message string) int
	NotifyCheckers(ctx context.Context, applicationNumber, message string) int
	NotifyCustomer(ctx context.Context, customerID id.UserID, applicationNumber, message string) bool
}

type DocumentLister interface {
	ListRefs(ctx context.Context, applicationID int64) ([]models.DocumentRef, error)
}

type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.WorkflowEvent)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service runs the maker/checker workflow. Every action checks its guards
// before mutating anything and commits comment, status, details and
// notifications as one unit of work.
type Service struct {
	applications   ApplicationStore
	comments       CommentStore
	users          UserLookup
	notifier       Notifier
	tx             txcontext.Runner
	documents      DocumentLister
	numbers        NumberGenerator
	logger         *slog.Logger
	auditPublisher AuditPublisher
	events         EventPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDocuments attaches document metadata to application views.
func WithDocuments(documents DocumentLister) Option {
	return func(s *Service) {
		s.documents = documents
	}
}

// WithNumberGenerator replaces the default store-backed generator.
func WithNumberGenerator(numbers NumberGenerator) Option {
	return func(s *Service) {
		s.numbers = numbers
	}
}

func New(applications ApplicationStore, comments CommentStore, users UserLookup, notifier Notifier, tx txcontext.Runner, opts ...Option) *Service {
	s := &Service{
		applications: applications,
		comments:     comments,
		users:        users,
		notifier:     notifier,
		tx:           tx,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.numbers == nil {
		s.numbers = idgen.New(applications)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (s *Service) observe(action string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveAction(action, start)
	}
}

func (s *Service) transitioned(transition string) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(transition)
	}
}

// rejected records a refused action. Storage failures are not guard rejections.
func (s *Service) rejected(action string, err error) {
	if s.metrics == nil || err == nil {
		return
	}
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
		s.metrics.IncrementGuardRejection(action, string(code))
	}
}

func (s *Service) loadApplication(ctx context.Context, number string) (*models.Application, error) {
	app, err := s.applications.FindByNumber(ctx, number)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

func (s *Service) loadApplicationForUpdate(ctx context.Context, number string) (*models.Application, error) {
	app, err := s.applications.FindByNumberForUpdate(ctx, number)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

func wrapApplicationErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Application not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
}

// findUser resolves an actor, reporting a miss with notFoundMsg.
func (s *Service) findUser(ctx context.Context, userID id.UserID, notFoundMsg string) (*usermodels.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, notFoundMsg)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}
