package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	appstore "github.com/rakesh-tirumalaparapu/zipp/internal/application/store"
	docmodels "github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	docservice "github.com/rakesh-tirumalaparapu/zipp/internal/document/service"
	docstore "github.com/rakesh-tirumalaparapu/zipp/internal/document/store"
	notifservice "github.com/rakesh-tirumalaparapu/zipp/internal/notification/service"
	notifstore "github.com/rakesh-tirumalaparapu/zipp/internal/notification/store"
	usermodels "github.com/rakesh-tirumalaparapu/zipp/internal/user/models"
	userstore "github.com/rakesh-tirumalaparapu/zipp/internal/user/store"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

// workflowFixture wires the in-memory stores the way the server does
// without a database.
type workflowFixture struct {
	apps          *appstore.InMemoryApplicationStore
	notifications *notifservice.Service
	documents     *docservice.Service
	service       *Service

	customer *usermodels.User
	makers   []*usermodels.User
	checker  *usermodels.User
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := userstore.NewInMemoryUserStore()
	newUser := func(name, email string, role id.Role) *usermodels.User {
		u, err := usermodels.NewUser(id.UserID(uuid.New()), name, email, "9000000000", "Pune", "hash", role, testNow)
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, u))
		return u
	}

	f := &workflowFixture{apps: appstore.NewInMemoryApplicationStore()}
	f.customer = newUser("Asha Rao", "asha@example.com", id.RoleCustomer)
	f.makers = []*usermodels.User{
		newUser("Maker One", "maker1@example.com", id.RoleMaker),
		newUser("Maker Two", "maker2@example.com", id.RoleMaker),
	}
	f.checker = newUser("Checker", "checker@example.com", id.RoleChecker)

	tx := txcontext.NewShardedMemoryTx()
	f.notifications = notifservice.New(notifstore.NewInMemoryNotificationStore(), users, notifservice.WithLogger(logger))
	f.documents = docservice.New(docstore.NewInMemoryDocumentStore(), f.apps, tx, docservice.WithLogger(logger))
	f.service = New(f.apps, appstore.NewInMemoryCommentStore(), users, f.notifications, tx,
		WithLogger(logger),
		WithDocuments(f.documents),
	)
	return f
}

func (f *workflowFixture) inbox(t *testing.T, userID id.UserID) []string {
	t.Helper()
	list, err := f.notifications.List(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Message)
	}
	return out
}

func TestWorkflowApprovalPath(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := requestcontext.WithTime(context.Background(), testNow)

	view, err := f.service.Submit(ctx, f.customer.ID, testPayload())
	require.NoError(t, err)
	require.Equal(t, "LA202600001", view.ApplicationID)
	assert.Equal(t, models.StatusWithMaker, view.Status)
	for _, m := range f.makers {
		assert.Equal(t, []string{"New loan application LA202600001 submitted by Asha Rao"}, f.inbox(t, m.ID))
	}

	_, err = f.documents.Upload(ctx, &docmodels.UploadRequest{
		ApplicationNumber: "LA202600001",
		Type:              docmodels.TypePhotograph,
		Data:              []byte{0xFF, 0xD8},
	})
	require.NoError(t, err)

	_, err = f.service.CheckerReview(ctx, "LA202600001", f.checker.ID, models.ActionApprove, "too early")
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	later := requestcontext.WithTime(ctx, testNow.Add(time.Hour))
	view, err = f.service.MakerReview(later, "LA202600001", f.makers[0].ID, models.ActionApprove, "KYC ok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithChecker, view.Status)
	assert.Equal(t, []string{"Application LA202600001 approved by maker and sent for checker review"}, f.inbox(t, f.checker.ID))

	view, err = f.service.CheckerReview(later, "LA202600001", f.checker.ID, models.ActionApprove, "Sanctioned")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, view.Status)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, models.CommentMakerApproval, view.Comments[0].CommentType)
	assert.Equal(t, "Maker One", view.Comments[0].UserName)
	assert.Equal(t, models.CommentCheckerApproval, view.Comments[1].CommentType)
	require.Len(t, view.Documents, 1)
	assert.Equal(t, string(docmodels.TypePhotograph), view.Documents[0].DocumentType)

	assert.Equal(t, []string{"Your loan application LA202600001 has been approved"}, f.inbox(t, f.customer.ID))
	assert.Len(t, f.inbox(t, f.makers[1].ID), 2)

	_, err = f.service.MakerReview(later, "LA202600001", f.makers[1].ID, models.ActionReject, "late")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	stats, err := f.service.DashboardStats(ctx, id.RoleCustomer, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{TotalApplications: 1, ApprovedApplications: 1}, *stats)
}

func TestWorkflowRejectAndResubmit(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := requestcontext.WithTime(context.Background(), testNow)

	_, err := f.service.Submit(ctx, f.customer.ID, testPayload())
	require.NoError(t, err)
	_, err = f.service.MakerReview(ctx, "LA202600001", f.makers[1].ID, models.ActionReject, "Address proof missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"Application rejected by maker"}, f.inbox(t, f.customer.ID))

	next := requestcontext.WithTime(ctx, testNow.AddDate(0, 0, 3))
	payload := testPayload()
	payload.PersonalDetails.CurrentAddress = "Mumbai"
	view, err := f.service.Resubmit(next, f.customer.ID, "LA202600001", payload)
	require.NoError(t, err)
	assert.Equal(t, "LA202600001", view.ApplicationID)
	assert.Equal(t, models.StatusWithMaker, view.Status)
	assert.Equal(t, "2026-03-21", view.SubmittedDate.String())
	assert.Equal(t, "Mumbai", view.Personal.CurrentAddress)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, models.CommentMakerRejection, view.Comments[0].CommentType)

	for _, m := range f.makers {
		assert.Len(t, f.inbox(t, m.ID), 2)
	}

	_, err = f.service.Resubmit(next, f.customer.ID, "LA202600001", payload)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	count, err := f.apps.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWorkflowCheckerRejectThenResubmit(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := requestcontext.WithTime(context.Background(), testNow)

	view, err := f.service.Submit(ctx, f.customer.ID, testPayload())
	require.NoError(t, err)
	require.Equal(t, "LA202600001", view.ApplicationID)

	_, err = f.service.MakerReview(ctx, "LA202600001", f.makers[0].ID, models.ActionApprove, "ok")
	require.NoError(t, err)
	view, err = f.service.CheckerReview(ctx, "LA202600001", f.checker.ID, models.ActionReject, "insufficient income")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, view.Status)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, models.CommentCheckerRejection, view.Comments[1].CommentType)
	assert.Equal(t, "insufficient income", view.Comments[1].CommentText)
	assert.Equal(t, []string{"Your loan application LA202600001 has been rejected by checker"}, f.inbox(t, f.customer.ID))
	for _, m := range f.makers {
		assert.Contains(t, f.inbox(t, m.ID), "Application LA202600001 has been rejected by checker")
	}

	payload := testPayload()
	payload.EmploymentDetails.EmployerOrBusinessName = "Globex"
	payload.EmploymentDetails.Designation = "Lead"
	payload.References = []models.ReferenceInput{
		{Name: "Meera", ContactNumber: "9000000003"},
		{Name: "Kiran", ContactNumber: "9000000004"},
	}
	view, err = f.service.Resubmit(ctx, f.customer.ID, "LA202600001", payload)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithMaker, view.Status)
	assert.Equal(t, "Globex", view.Employment.EmployerOrBusinessName)
	assert.Equal(t, "Lead", view.Employment.Designation)
	require.Len(t, view.References, 2)
	assert.Equal(t, "Meera", view.References[0].Name)
	assert.Equal(t, "Kiran", view.References[1].Name)
	assert.Len(t, view.Comments, 2)
	for _, m := range f.makers {
		assert.Len(t, f.inbox(t, m.ID), 3)
	}
}

func TestConcurrentMakerReviewsHaveOneWinner(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := requestcontext.WithTime(context.Background(), testNow)
	_, err := f.service.Submit(ctx, f.customer.ID, testPayload())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, len(f.makers))
	for i, m := range f.makers {
		wg.Add(1)
		go func(i int, makerID id.UserID) {
			defer wg.Done()
			action := models.ActionApprove
			if i%2 == 1 {
				action = models.ActionReject
			}
			_, errs[i] = f.service.MakerReview(ctx, "LA202600001", makerID, action, "decision")
		}(i, m.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	view, err := f.service.Get(ctx, "LA202600001")
	require.NoError(t, err)
	assert.Len(t, view.Comments, 1)
}

func TestLegacyPendingIsTreatedAsWithMaker(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := requestcontext.WithTime(context.Background(), testNow)

	details, err := testPayload().ToDetails(testNow)
	require.NoError(t, err)
	app, err := models.NewApplication("LA202500042", f.customer.ID, f.customer.Name, details, testNow)
	require.NoError(t, err)
	app.Status = models.StatusPending
	require.NoError(t, f.apps.Create(ctx, app))

	view, err := f.service.Get(ctx, "LA202500042")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithMaker, view.Status)

	list, err := f.service.ListByStatus(ctx, "WITH_MAKER")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusWithMaker, list[0].Status)

	stats, err := f.service.DashboardStats(ctx, id.RoleMaker, f.makers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingApplications)

	view, err = f.service.MakerReview(ctx, "LA202500042", f.makers[0].ID, models.ActionApprove, "ok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithChecker, view.Status)
}

func TestCustomerCannotSeeOthersApplications(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := requestcontext.WithTime(context.Background(), testNow)
	_, err := f.service.Submit(ctx, f.customer.ID, testPayload())
	require.NoError(t, err)

	_, err = f.service.GetForCustomer(ctx, id.UserID(uuid.New()), "LA202600001")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	list, err := f.service.ListForCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.service.ListForChecker(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
