package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/metrics"
	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	usermodels "github.com/rakesh-tirumalaparapu/zipp/internal/user/models"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/attrs"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,UserDirectory,UnreadCache,AuditPublisher

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID id.UserID) (int, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID) error
}

// UserDirectory resolves users and answers "who holds role R" for broadcasts.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	ListByRole(ctx context.Context, role id.Role) ([]*usermodels.User, error)
}

// UnreadCache is optional; a nil cache always reads through to the store.
type UnreadCache interface {
	Get(ctx context.Context, userID id.UserID) (int, bool, error)
	Set(ctx context.Context, userID id.UserID, count int) error
	Invalidate(ctx context.Context, userIDs ...id.UserID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service writes inbox entries for workflow transitions and serves the inbox.
// Fan-out is best effort: each recipient is written independently and a
// failure is logged and counted without failing the caller.
type Service struct {
	store          Store
	users          UserDirectory
	cache          UnreadCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithUnreadCache(cache UnreadCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func New(store Store, users UserDirectory, opts ...Option) *Service {
	s := &Service{store: store, users: users}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NotifyMakers writes message to every maker and returns how many were written.
func (s *Service) NotifyMakers(ctx context.Context, applicationNumber, message string) int {
	return s.notifyRole(ctx, id.RoleMaker, models.RecipientMakers, applicationNumber, message)
}

// NotifyCheckers writes message to every checker and returns how many were written.
func (s *Service) NotifyCheckers(ctx context.Context, applicationNumber, message string) int {
	return s.notifyRole(ctx, id.RoleChecker, models.RecipientCheckers, applicationNumber, message)
}

// NotifyCustomer writes message to one customer.
func (s *Service) NotifyCustomer(ctx context.Context, customerID id.UserID, applicationNumber, message string) bool {
	return s.deliver(ctx, models.RecipientCustomer, customerID, applicationNumber, message)
}

func (s *Service) notifyRole(ctx context.Context, role id.Role, recipient models.Recipient, applicationNumber, message string) int {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		s.incrementFailures(recipient)
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "notification fan-out skipped: failed to list recipients",
				"role", string(role),
				"application_number", applicationNumber,
				"error", err,
			)
		}
		return 0
	}

	delivered := 0
	for _, u := range users {
		if s.deliver(ctx, recipient, u.ID, applicationNumber, message) {
			delivered++
		}
	}
	return delivered
}

func (s *Service) deliver(ctx context.Context, recipient models.Recipient, userID id.UserID, applicationNumber, message string) bool {
	n := models.NewNotification(id.NotificationID(uuid.New()), userID, applicationNumber, message, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, n); err != nil {
		s.incrementFailures(recipient)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to write notification",
				"recipient", string(recipient),
				"user_id", userID.String(),
				"application_number", applicationNumber,
				"error", err,
			)
		}
		return false
	}
	if s.metrics != nil {
		s.metrics.IncrementDelivered(string(recipient))
	}
	s.invalidate(ctx, userID)
	return true
}

// List returns the user's notifications newest first.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]*models.Notification, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return list, nil
}

// UnreadCount serves from the cache when present and repopulates it on a miss.
func (s *Service) UnreadCount(ctx context.Context, userID id.UserID) (int, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}
	if s.cache != nil {
		n, ok, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			s.cacheLookup("error")
			if s.logger != nil {
				s.logger.WarnContext(ctx, "unread cache read failed", "user_id", userID.String(), "error", err)
			}
		case ok:
			s.cacheLookup("hit")
			return n, nil
		default:
			s.cacheLookup("miss")
		}
	}

	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count unread notifications")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, count); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "unread cache write failed", "user_id", userID.String(), "error", err)
		}
	}
	return count, nil
}

// MarkRead flags a notification as read. Only the recipient may do so, and
// marking an already read notification succeeds without change.
func (s *Service) MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error {
	n, err := s.store.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if n.UserID != userID {
		s.logAudit(ctx, string(audit.EventNotificationDenied),
			"user_id", userID.String(),
			"notification_id", notificationID.String(),
			"reason", "not_recipient",
		)
		return dErrors.New(dErrors.CodeUnauthorized, "Unauthorized")
	}
	if n.Read {
		return nil
	}

	if err := s.store.MarkRead(ctx, notificationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	s.invalidate(ctx, userID)
	if s.metrics != nil {
		s.metrics.IncrementMarkedRead()
	}
	s.logAudit(ctx, string(audit.EventNotificationRead),
		"user_id", userID.String(),
		"notification_id", notificationID.String(),
	)
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID id.UserID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, userIDs ...id.UserID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "unread cache invalidation failed", "error", err)
	}
}

func (s *Service) incrementFailures(recipient models.Recipient) {
	if s.metrics != nil {
		s.metrics.IncrementDeliveryFailures(string(recipient))
	}
}

func (s *Service) cacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.IncrementCacheLookup(result)
	}
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
	userID := requestcontext.UserID(ctx)
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   attrs.ExtractString(attributes, "notification_id"),
		Action:    event,
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
		ActorRole: string(requestcontext.Role(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
