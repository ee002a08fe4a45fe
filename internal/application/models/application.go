package models

import (
	"fmt"
	"time"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

// Application is the aggregate moved through the maker/checker workflow.
// Status only changes through the Apply* methods below.
type Application struct {
	ID            int64
	Number        string
	CustomerID    id.UserID
	CustomerName  string
	Status        Status
	SubmittedDate Date
	UpdatedAt     time.Time
	Details
}

// NewApplication builds a freshly submitted application in WITH_MAKER.
func NewApplication(number string, customerID id.UserID, customerName string, details Details, now time.Time) (*Application, error) {
	if number == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application number is required")
	}
	if customerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer id is required")
	}
	return &Application{
		Number:        number,
		CustomerID:    customerID,
		CustomerName:  customerName,
		Status:        StatusWithMaker,
		SubmittedDate: NewDate(now),
		UpdatedAt:     now,
		Details:       details,
	}, nil
}

// OwnedBy reports whether customerID submitted the application.
func (a *Application) OwnedBy(customerID id.UserID) bool {
	return a.CustomerID == customerID
}

func (a *Application) CanMakerReview() error {
	if a.Status.Normalize() != StatusWithMaker {
		return dErrors.New(dErrors.CodeInvalidState, "Application is not in a valid state for maker review")
	}
	return nil
}

// ApplyMakerReview moves the application to WITH_CHECKER or REJECTED.
func (a *Application) ApplyMakerReview(action Action, now time.Time) {
	if action == ActionApprove {
		a.Status = StatusWithChecker
	} else {
		a.Status = StatusRejected
	}
	a.UpdatedAt = now
}

func (a *Application) CanCheckerReview() error {
	if a.Status.Normalize() != StatusWithChecker {
		return dErrors.New(dErrors.CodeInvalidState, "Application is not in a valid state for checker review")
	}
	return nil
}

// ApplyCheckerReview moves the application to APPROVED or REJECTED.
func (a *Application) ApplyCheckerReview(action Action, now time.Time) {
	if action == ActionApprove {
		a.Status = StatusApproved
	} else {
		a.Status = StatusRejected
	}
	a.UpdatedAt = now
}

// CanReview dispatches to the stage's guard.
func (a *Application) CanReview(stage Stage) error {
	switch stage {
	case StageMaker:
		return a.CanMakerReview()
	case StageChecker:
		return a.CanCheckerReview()
	}
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown review stage %q", stage))
}

// ApplyReview dispatches to the stage's transition.
func (a *Application) ApplyReview(stage Stage, action Action, now time.Time) {
	if stage == StageChecker {
		a.ApplyCheckerReview(action, now)
		return
	}
	a.ApplyMakerReview(action, now)
}

func (a *Application) CanResubmit() error {
	if a.Status.Normalize() != StatusRejected {
		return dErrors.New(dErrors.CodeInvalidState, "Only rejected applications can be edited and resubmitted")
	}
	return nil
}

// ApplyResubmission replaces the details, resets the submitted date and
// returns the application to WITH_MAKER. The number is kept.
func (a *Application) ApplyResubmission(details Details, now time.Time) {
	a.Details = details
	a.Status = StatusWithMaker
	a.SubmittedDate = NewDate(now)
	a.UpdatedAt = now
}

// Comment is an immutable review note.
type Comment struct {
	ID            id.CommentID
	ApplicationID int64
	UserID        id.UserID
	UserName      string
	Text          string
	Type          CommentType
	CreatedAt     time.Time
}
