package audit

import (
	"context"
	"time"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers lending decisions and account creation.
	// These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication failures and access violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// UserID is the acting user.
	UserID id.UserID
	// Subject is the entity acted on, usually an application number.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// ActorRole is the role the user acted under.
	ActorRole string
	// Device is a short "<Browser> on <OS>" label derived from the User-Agent.
	Device   string
	ClientIP string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

type AuditEvent string

const (
	// User events
	EventUserCreated AuditEvent = "user_created"
	EventLoginFailed AuditEvent = "login_failed"
	EventLoggedIn    AuditEvent = "logged_in"

	// Application workflow events
	EventApplicationSubmitted   AuditEvent = "application_submitted"
	EventApplicationResubmitted AuditEvent = "application_resubmitted"
	EventMakerApproved          AuditEvent = "application_maker_approved"
	EventMakerRejected          AuditEvent = "application_maker_rejected"
	EventCheckerApproved        AuditEvent = "application_checker_approved"
	EventCheckerRejected        AuditEvent = "application_checker_rejected"
	EventReviewDenied           AuditEvent = "application_review_denied"

	// Document events
	EventDocumentUploaded AuditEvent = "document_uploaded"
	EventDocumentReplaced AuditEvent = "document_replaced"

	// Notification events
	EventNotificationRead   AuditEvent = "notification_read"
	EventNotificationDenied AuditEvent = "notification_access_denied"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:            CategoryCompliance,
	EventApplicationSubmitted:   CategoryCompliance,
	EventApplicationResubmitted: CategoryCompliance,
	EventMakerApproved:          CategoryCompliance,
	EventMakerRejected:          CategoryCompliance,
	EventCheckerApproved:        CategoryCompliance,
	EventCheckerRejected:        CategoryCompliance,

	EventLoginFailed:        CategorySecurity,
	EventReviewDenied:       CategorySecurity,
	EventNotificationDenied: CategorySecurity,

	EventLoggedIn:         CategoryOperations,
	EventDocumentUploaded: CategoryOperations,
	EventDocumentReplaced: CategoryOperations,
	EventNotificationRead: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
