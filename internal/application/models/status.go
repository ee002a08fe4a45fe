package models

import (
	"strings"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

// Status is the workflow position of an application.
type Status string

const (
	StatusWithMaker   Status = "WITH_MAKER"
	StatusWithChecker Status = "WITH_CHECKER"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	// StatusPending is a legacy alias of WITH_MAKER. It is never written.
	StatusPending Status = "PENDING"
)

// ParseStatus reads a stored or user-supplied status, case-insensitively,
// normalising PENDING to WITH_MAKER.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusWithMaker, StatusWithChecker, StatusApproved, StatusRejected, StatusPending:
		return st.Normalize(), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid status: "+s)
}

// Normalize maps the legacy PENDING status to WITH_MAKER.
func (s Status) Normalize() Status {
	if s == StatusPending {
		return StatusWithMaker
	}
	return s
}

func (s Status) String() string {
	return string(s)
}

// Action is a reviewer's decision. The zero value is not a valid action.
type Action int

const (
	actionUnknown Action = iota
	ActionApprove
	ActionReject
)

// ParseAction accepts APPROVE or REJECT in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "APPROVE":
		return ActionApprove, nil
	case "REJECT":
		return ActionReject, nil
	}
	return actionUnknown, dErrors.New(dErrors.CodeBadRequest, "Invalid action. Use APPROVE or REJECT")
}

func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "APPROVE"
	case ActionReject:
		return "REJECT"
	}
	return "UNKNOWN"
}

// Stage identifies which reviewer acts on an application.
type Stage string

const (
	StageMaker   Stage = "maker"
	StageChecker Stage = "checker"
)

// Role is the user role required to review at this stage.
func (s Stage) Role() id.Role {
	if s == StageChecker {
		return id.RoleChecker
	}
	return id.RoleMaker
}

// CommentType is the comment recorded for a review at this stage.
func (s Stage) CommentType(a Action) CommentType {
	switch {
	case s == StageMaker && a == ActionApprove:
		return CommentMakerApproval
	case s == StageMaker:
		return CommentMakerRejection
	case a == ActionApprove:
		return CommentCheckerApproval
	default:
		return CommentCheckerRejection
	}
}

// CommentType labels the review that produced a comment.
type CommentType string

const (
	CommentMakerApproval    CommentType = "MAKER_APPROVAL"
	CommentMakerRejection   CommentType = "MAKER_REJECTION"
	CommentCheckerApproval  CommentType = "CHECKER_APPROVAL"
	CommentCheckerRejection CommentType = "CHECKER_REJECTION"
)
