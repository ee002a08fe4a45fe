package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
)

// CommentView is a comment as shown alongside an application.
type CommentView struct {
	CommentText string      `json:"commentText"`
	CommentType CommentType `json:"commentType"`
	UserName    string      `json:"userName"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// DocumentRef is the metadata of a document attached to an application.
type DocumentRef struct {
	ID           id.DocumentID `json:"id"`
	DocumentType string        `json:"documentType"`
	Name         string        `json:"name"`
	ContentType  string        `json:"contentType"`
	UploadedAt   time.Time     `json:"uploadedAt"`
}

// ApplicationView is the full read model returned by workflow operations.
type ApplicationView struct {
	ID            int64         `json:"id"`
	ApplicationID string        `json:"applicationId"`
	CustomerName  string        `json:"customerName"`
	Status        Status        `json:"status"`
	SubmittedDate Date          `json:"submittedDate"`
	Details
	Comments  []CommentView `json:"comments"`
	Documents []DocumentRef `json:"documents"`
}

// NewApplicationView assembles the view. Status is normalised.
func NewApplicationView(app *Application, comments []*Comment, docs []DocumentRef) *ApplicationView {
	view := &ApplicationView{
		ID:            app.ID,
		ApplicationID: app.Number,
		CustomerName:  app.CustomerName,
		Status:        app.Status.Normalize(),
		SubmittedDate: app.SubmittedDate,
		Details:       app.Details,
		Comments:      make([]CommentView, 0, len(comments)),
		Documents:     docs,
	}
	if view.References == nil {
		view.References = []Reference{}
	}
	if view.Documents == nil {
		view.Documents = []DocumentRef{}
	}
	for _, c := range comments {
		view.Comments = append(view.Comments, CommentView{
			CommentText: c.Text,
			CommentType: c.Type,
			UserName:    c.UserName,
			CreatedAt:   c.CreatedAt,
		})
	}
	return view
}

// ApplicationSummary is one row in an application listing.
type ApplicationSummary struct {
	ID                 int64           `json:"id"`
	ApplicationID      string          `json:"applicationId"`
	CustomerName       string          `json:"customerName"`
	LoanType           LoanType        `json:"loanType"`
	LoanAmount         decimal.Decimal `json:"loanAmount"`
	LoanDurationMonths int             `json:"loanDurationMonths"`
	Status             Status          `json:"status"`
	SubmittedDate      Date            `json:"submittedDate"`
}

func NewApplicationSummary(app *Application) ApplicationSummary {
	return ApplicationSummary{
		ID:                 app.ID,
		ApplicationID:      app.Number,
		CustomerName:       app.CustomerName,
		LoanType:           app.Loan.LoanType,
		LoanAmount:         app.Loan.LoanAmount,
		LoanDurationMonths: app.Loan.LoanDurationMonths,
		Status:             app.Status.Normalize(),
		SubmittedDate:      app.SubmittedDate,
	}
}

// DashboardStats holds per-role application counts.
type DashboardStats struct {
	TotalApplications       int `json:"totalApplications"`
	PendingApplications     int `json:"pendingApplications"`
	WithCheckerApplications int `json:"withCheckerApplications"`
	ApprovedApplications    int `json:"approvedApplications"`
	RejectedApplications    int `json:"rejectedApplications"`
}

// StatusCounts maps normalised statuses to application counts.
type StatusCounts map[Status]int

// Add merges a raw count, folding PENDING into WITH_MAKER.
func (c StatusCounts) Add(s Status, n int) {
	c[s.Normalize()] += n
}

// MakerStats: pending is WITH_MAKER and total covers every status.
func (c StatusCounts) MakerStats() DashboardStats {
	return DashboardStats{
		TotalApplications:       c[StatusWithMaker] + c[StatusWithChecker] + c[StatusApproved] + c[StatusRejected],
		PendingApplications:     c[StatusWithMaker],
		WithCheckerApplications: c[StatusWithChecker],
		ApprovedApplications:    c[StatusApproved],
		RejectedApplications:    c[StatusRejected],
	}
}

// CheckerStats: the checker's queue is WITH_CHECKER and total excludes
// applications still with the maker.
func (c StatusCounts) CheckerStats() DashboardStats {
	return DashboardStats{
		TotalApplications:       c[StatusWithChecker] + c[StatusApproved] + c[StatusRejected],
		PendingApplications:     c[StatusWithChecker],
		WithCheckerApplications: c[StatusWithChecker],
		ApprovedApplications:    c[StatusApproved],
		RejectedApplications:    c[StatusRejected],
	}
}

// CustomerStats: pending is anything still under review.
func (c StatusCounts) CustomerStats() DashboardStats {
	return DashboardStats{
		TotalApplications:       c[StatusWithMaker] + c[StatusWithChecker] + c[StatusApproved] + c[StatusRejected],
		PendingApplications:     c[StatusWithMaker] + c[StatusWithChecker],
		WithCheckerApplications: c[StatusWithChecker],
		ApprovedApplications:    c[StatusApproved],
		RejectedApplications:    c[StatusRejected],
	}
}

// ReviewRequest is the maker or checker review body.
type ReviewRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`

	ParsedAction Action `json:"-"`
}

// Validate parses the action only. The comment is checked by the workflow
// after the state guard.
func (r *ReviewRequest) Validate() error {
	action, err := ParseAction(r.Action)
	if err != nil {
		return err
	}
	r.ParsedAction = action
	return nil
}
