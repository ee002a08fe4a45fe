package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/events"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

func submittedMessage(number, customerName string) string {
	return fmt.Sprintf("New loan application %s submitted by %s", number, customerName)
}

// Submit creates an application in WITH_MAKER under a fresh number and
// notifies every maker.
func (s *Service) Submit(ctx context.Context, customerID id.UserID, payload *models.ApplicationPayload) (view *models.ApplicationView, err error) {
	const action = "submit"
	start := time.Now()
	ctx, span := s.startSpan(ctx, "application.Submit", attribute.String("customer_id", customerID.String()))
	defer func() {
		s.rejected(action, err)
		s.observe(action, start)
		endSpan(span, err)
	}()

	customer, err := s.findUser(ctx, customerID, "Customer not found")
	if err != nil {
		return nil, err
	}
	if customer.Role != id.RoleCustomer {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Only customers can submit applications")
	}
	now := requestcontext.Now(ctx)
	details, err := payload.ToDetails(now)
	if err != nil {
		return nil, err
	}

	var app *models.Application
	for attempt := 1; ; attempt++ {
		number, err := s.numbers.Next(ctx)
		if err != nil {
			return nil, err
		}
		app, err = models.NewApplication(number, customer.ID, customer.Name, details, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build application")
		}
		err = s.tx.RunInTx(txcontext.WithShardKey(ctx, number), func(ctx context.Context) error {
			if err := s.applications.Create(ctx, app); err != nil {
				return err
			}
			s.notifier.NotifyMakers(ctx, number, submittedMessage(number, customer.Name))
			return nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, wrapTxErr(err, "failed to create application")
		}
		if attempt >= maxNumberAttempts {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "could not allocate an application number")
		}
		if s.metrics != nil {
			s.metrics.IncrementIDRetries()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "application number taken, retrying",
				"application_number", number,
				"attempt", attempt,
			)
		}
	}
	span.SetAttributes(attribute.String("application_number", app.Number))

	s.transitioned("submitted")
	s.logAudit(ctx, string(audit.EventApplicationSubmitted),
		"application_number", app.Number,
		"user_id", customer.ID.String(),
		"role", string(customer.Role),
	)
	s.publish(ctx, events.TypeApplicationSubmitted, app, customer.ID, customer.Role, "")
	return s.view(ctx, app)
}

// Resubmit replaces the details of a REJECTED application owned by the
// customer and returns it to WITH_MAKER under the same number.
func (s *Service) Resubmit(ctx context.Context, customerID id.UserID, number string, payload *models.ApplicationPayload) (view *models.ApplicationView, err error) {
	const action = "resubmit"
	start := time.Now()
	ctx, span := s.startSpan(ctx, "application.Resubmit",
		attribute.String("customer_id", customerID.String()),
		attribute.String("application_number", number),
	)
	defer func() {
		s.rejected(action, err)
		s.observe(action, start)
		endSpan(span, err)
	}()

	customer, err := s.findUser(ctx, customerID, "Customer not found")
	if err != nil {
		return nil, err
	}

	var app *models.Application
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, number), func(ctx context.Context) error {
		var err error
		app, err = s.loadApplicationForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if err := app.CanResubmit(); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		details, err := payload.ToDetails(now)
		if err != nil {
			return err
		}
		if !app.OwnedBy(customer.ID) {
			s.logAudit(ctx, string(audit.EventReviewDenied),
				"application_number", number,
				"user_id", customer.ID.String(),
				"role", string(customer.Role),
				"reason", "not_owner",
			)
			return dErrors.New(dErrors.CodeUnauthorized, "You are not authorized to edit this application")
		}

		app.ApplyResubmission(details, now)
		if err := s.applications.Update(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}
		if err := s.applications.SaveDetails(ctx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application details")
		}
		s.notifier.NotifyMakers(ctx, number, submittedMessage(number, customer.Name))
		return nil
	})
	if err != nil {
		return nil, wrapTxErr(err, "failed to resubmit application")
	}

	s.transitioned("resubmitted")
	s.logAudit(ctx, string(audit.EventApplicationResubmitted),
		"application_number", number,
		"user_id", customer.ID.String(),
		"role", string(customer.Role),
	)
	s.publish(ctx, events.TypeApplicationResubmitted, app, customer.ID, customer.Role, "")
	return s.view(ctx, app)
}

// MakerReview approves (to WITH_CHECKER) or rejects a WITH_MAKER application.
func (s *Service) MakerReview(ctx context.Context, number string, makerID id.UserID, action models.Action, comment string) (*models.ApplicationView, error) {
	return s.Review(ctx, models.StageMaker, number, makerID, action, comment)
}

// CheckerReview approves or rejects a WITH_CHECKER application.
func (s *Service) CheckerReview(ctx context.Context, number string, checkerID id.UserID, action models.Action, comment string) (*models.ApplicationView, error) {
	return s.Review(ctx, models.StageChecker, number, checkerID, action, comment)
}

// Review applies a maker or checker decision. Guards run in order: actor,
// application, state, comment. A concurrent reviewer that loses the race sees
// the new status and fails the state guard.
func (s *Service) Review(ctx context.Context, stage models.Stage, number string, actorID id.UserID, action models.Action, comment string) (view *models.ApplicationView, err error) {
	metricAction := string(stage) + "_review"
	start := time.Now()
	ctx, span := s.startSpan(ctx, "application.Review",
		attribute.String("stage", string(stage)),
		attribute.String("application_number", number),
		attribute.String("action", action.String()),
	)
	defer func() {
		s.rejected(metricAction, err)
		s.observe(metricAction, start)
		endSpan(span, err)
	}()

	actor, err := s.findUser(ctx, actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if actor.Role != stage.Role() {
		s.logAudit(ctx, string(audit.EventReviewDenied),
			"application_number", number,
			"user_id", actor.ID.String(),
			"role", string(actor.Role),
			"reason", "role_mismatch",
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Only "+strings.ToLower(string(stage.Role()))+"s can review at this stage")
	}
	if !action.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid action. Use APPROVE or REJECT")
	}

	var app *models.Application
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, number), func(ctx context.Context) error {
		var err error
		app, err = s.loadApplicationForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if err := app.CanReview(stage); err != nil {
			return err
		}
		text := strings.TrimSpace(comment)
		if text == "" {
			return dErrors.New(dErrors.CodeBadRequest, "Comment is mandatory")
		}

		now := requestcontext.Now(ctx)
		if err := s.comments.Append(ctx, &models.Comment{
			ID:            id.CommentID(uuid.New()),
			ApplicationID: app.ID,
			UserID:        actor.ID,
			UserName:      actor.Name,
			Text:          text,
			Type:          stage.CommentType(action),
			CreatedAt:     now,
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record comment")
		}
		app.ApplyReview(stage, action, now)
		if err := s.applications.Update(ctx, app); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Application not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}
		s.notifyReview(ctx, stage, action, app)
		return nil
	})
	if err != nil {
		return nil, wrapTxErr(err, "failed to review application")
	}

	event, transition := reviewOutcome(stage, action)
	s.transitioned(transition)
	s.logAudit(ctx, string(event),
		"application_number", number,
		"user_id", actor.ID.String(),
		"role", string(actor.Role),
		"decision", action.String(),
	)
	eventType := events.TypeMakerReviewed
	if stage == models.StageChecker {
		eventType = events.TypeCheckerReviewed
	}
	s.publish(ctx, eventType, app, actor.ID, actor.Role, action.String())
	return s.view(ctx, app)
}

// notifyReview sends the fan-out for a review outcome.
func (s *Service) notifyReview(ctx context.Context, stage models.Stage, action models.Action, app *models.Application) {
	number := app.Number
	switch {
	case stage == models.StageMaker && action == models.ActionApprove:
		s.notifier.NotifyCheckers(ctx, number, fmt.Sprintf("Application %s approved by maker and sent for checker review", number))
	case stage == models.StageMaker:
		s.notifier.NotifyCustomer(ctx, app.CustomerID, number, "Application rejected by maker")
	case action == models.ActionApprove:
		s.notifier.NotifyCustomer(ctx, app.CustomerID, number, fmt.Sprintf("Your loan application %s has been approved", number))
		s.notifier.NotifyMakers(ctx, number, fmt.Sprintf("Application %s has been approved by checker", number))
	default:
		s.notifier.NotifyCustomer(ctx, app.CustomerID, number, fmt.Sprintf("Your loan application %s has been rejected by checker", number))
		s.notifier.NotifyMakers(ctx, number, fmt.Sprintf("Application %s has been rejected by checker", number))
	}
}

// wrapTxErr keeps domain errors raised inside the unit of work and wraps
// transaction failures as internal.
func wrapTxErr(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func reviewOutcome(stage models.Stage, action models.Action) (audit.AuditEvent, string) {
	switch {
	case stage == models.StageMaker && action == models.ActionApprove:
		return audit.EventMakerApproved, "maker_approved"
	case stage == models.StageMaker:
		return audit.EventMakerRejected, "maker_rejected"
	case action == models.ActionApprove:
		return audit.EventCheckerApproved, "checker_approved"
	default:
		return audit.EventCheckerRejected, "checker_rejected"
	}
}

func (s *Service) publish(ctx context.Context, eventType events.Type, app *models.Application, actorID id.UserID, role id.Role, action string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.WorkflowEvent{
		Type:              eventType,
		ApplicationNumber: app.Number,
		ActorID:           actorID.String(),
		ActorRole:         string(role),
		Status:            string(app.Status.Normalize()),
		Action:            action,
	})
}
