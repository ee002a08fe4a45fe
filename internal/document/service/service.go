package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	appmodels "github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/document/metrics"
	"github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/events"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/attrs"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,ApplicationLookup,EventPublisher,AuditPublisher

type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	DeleteByApplicationAndType(ctx context.Context, applicationID int64, docType models.DocumentType) (int, error)
	FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error)
}

// ApplicationLookup resolves the application a document belongs to.
type ApplicationLookup interface {
	FindByNumber(ctx context.Context, number string) (*appmodels.Application, error)
	FindByNumberForUpdate(ctx context.Context, number string) (*appmodels.Application, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.WorkflowEvent)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service stores application documents. Uploading a type that already exists
// for the application replaces it.
type Service struct {
	store          Store
	applications   ApplicationLookup
	tx             txcontext.Runner
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

func New(store Store, applications ApplicationLookup, tx txcontext.Runner, opts ...Option) *Service {
	s := &Service{store: store, applications: applications, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload deletes any document of the same type for the application and stores
// the new one in a single unit of work. Application status is not touched.
func (s *Service) Upload(ctx context.Context, req *models.UploadRequest) (*models.Document, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Document file is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		doc      *models.Document
		replaced int
	)
	ctx = txcontext.WithShardKey(ctx, req.ApplicationNumber)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		app, err := s.applications.FindByNumberForUpdate(ctx, req.ApplicationNumber)
		if err != nil {
			return wrapApplicationErr(err)
		}
		replaced, err = s.store.DeleteByApplicationAndType(ctx, app.ID, req.Type)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace document")
		}
		doc = &models.Document{
			ID:            id.DocumentID(uuid.New()),
			ApplicationID: app.ID,
			Type:          req.Type,
			Name:          req.Name,
			ContentType:   req.ContentType,
			Data:          req.Data,
			UploadedAt:    requestcontext.Now(ctx),
		}
		if err := s.store.Create(ctx, doc); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "Document upload conflicted with another upload")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := audit.EventDocumentUploaded
	if replaced > 0 {
		event = audit.EventDocumentReplaced
	}
	if s.metrics != nil {
		s.metrics.IncrementUploaded(string(doc.Type))
		if replaced > 0 {
			s.metrics.IncrementReplaced()
		}
	}
	s.logAudit(ctx, string(event),
		"application_number", req.ApplicationNumber,
		"document_type", string(doc.Type),
		"document_id", doc.ID.String(),
	)
	if s.events != nil {
		s.events.Publish(ctx, events.WorkflowEvent{
			Type:              events.TypeDocumentUploaded,
			ApplicationNumber: req.ApplicationNumber,
			ActorID:           requestcontext.UserID(ctx).String(),
			ActorRole:         string(requestcontext.Role(ctx)),
			DocumentType:      string(doc.Type),
		})
	}
	return doc, nil
}

// Get returns the document with its exact stored bytes and content type.
func (s *Service) Get(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	doc, err := s.store.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}

// ListByApplication returns document metadata for an application.
func (s *Service) ListByApplication(ctx context.Context, applicationNumber string) ([]*models.Document, error) {
	app, err := s.applications.FindByNumber(ctx, applicationNumber)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return s.list(ctx, app.ID)
}

// ListTypes returns the type names of the application's documents.
func (s *Service) ListTypes(ctx context.Context, applicationNumber string) ([]string, error) {
	docs, err := s.ListByApplication(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, string(d.Type))
	}
	return out, nil
}

func (s *Service) ListIDs(ctx context.Context, applicationNumber string) ([]models.IDResponse, error) {
	docs, err := s.ListByApplication(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	out := make([]models.IDResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.IDResponse{ID: d.ID, DocumentType: d.Type})
	}
	return out, nil
}

// ListRefs lists documents by store id for the application read model.
func (s *Service) ListRefs(ctx context.Context, applicationID int64) ([]appmodels.DocumentRef, error) {
	docs, err := s.list(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]appmodels.DocumentRef, 0, len(docs))
	for _, d := range docs {
		out = append(out, appmodels.DocumentRef{
			ID:           d.ID,
			DocumentType: string(d.Type),
			Name:         d.Name,
			ContentType:  d.ContentType,
			UploadedAt:   d.UploadedAt,
		})
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, applicationID int64) ([]*models.Document, error) {
	docs, err := s.store.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

func wrapApplicationErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Application not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
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
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    requestcontext.UserID(ctx),
		Subject:   attrs.ExtractString(attributes, "application_number"),
		Action:    event,
		Reason:    attrs.ExtractString(attributes, "document_type"),
		RequestID: requestID,
		ActorRole: string(requestcontext.Role(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
