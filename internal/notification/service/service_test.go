package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/service/mocks"
	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/store"
	usermodels "github.com/rakesh-tirumalaparapu/zipp/internal/user/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

type NotificationServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	users     *mocks.MockUserDirectory
	publisher *mocks.MockAuditPublisher
	store     *store.InMemoryNotificationStore
	service   *Service
	ctx       context.Context
	makers    []*usermodels.User
	customer  *usermodels.User
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserDirectory(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.store = store.NewInMemoryNotificationStore()
	s.service = New(s.store, s.users,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
	)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	s.makers = []*usermodels.User{s.user(id.RoleMaker), s.user(id.RoleMaker), s.user(id.RoleMaker)}
	s.customer = s.user(id.RoleCustomer)
}

func (s *NotificationServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *NotificationServiceSuite) user(role id.Role) *usermodels.User {
	return &usermodels.User{ID: id.UserID(uuid.New()), Name: "User", Role: role}
}

func (s *NotificationServiceSuite) expectUserExists(u *usermodels.User) {
	s.users.EXPECT().FindByID(gomock.Any(), u.ID).Return(u, nil)
}

func (s *NotificationServiceSuite) TestNotifyMakersWritesOnePerMaker() {
	s.users.EXPECT().ListByRole(gomock.Any(), id.RoleMaker).Return(s.makers, nil)

	delivered := s.service.NotifyMakers(s.ctx, "LA202600001", "New loan application LA202600001 submitted by Asha Rao")
	s.Equal(3, delivered)

	for _, m := range s.makers {
		list, err := s.store.ListByUser(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal("LA202600001", list[0].ApplicationNumber)
		s.False(list[0].Read)
	}
}

func (s *NotificationServiceSuite) TestNotifyRoleWithNoHoldersWritesNothing() {
	s.users.EXPECT().ListByRole(gomock.Any(), id.RoleChecker).Return(nil, nil)
	s.Zero(s.service.NotifyCheckers(s.ctx, "LA202600001", "msg"))
}

func (s *NotificationServiceSuite) TestListFailureDoesNotPanicOrFail() {
	s.users.EXPECT().ListByRole(gomock.Any(), id.RoleMaker).Return(nil, errors.New("db down"))
	s.Zero(s.service.NotifyMakers(s.ctx, "LA202600001", "msg"))
}

func (s *NotificationServiceSuite) TestFanOutIsBestEffortPerRecipient() {
	failing := mocks.NewMockStore(s.ctrl)
	svc := New(failing, s.users)

	s.users.EXPECT().ListByRole(gomock.Any(), id.RoleMaker).Return(s.makers, nil)
	gomock.InOrder(
		failing.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		failing.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed")),
		failing.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)

	s.Equal(2, svc.NotifyMakers(s.ctx, "LA202600001", "msg"))
}

func (s *NotificationServiceSuite) TestNotifyCustomer() {
	s.True(s.service.NotifyCustomer(s.ctx, s.customer.ID, "LA202600001", "Application rejected by maker"))

	s.expectUserExists(s.customer)
	list, err := s.service.List(s.ctx, s.customer.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Application rejected by maker", list[0].Message)
}

func (s *NotificationServiceSuite) TestListAndCountUnknownUser() {
	ghost := id.UserID(uuid.New())
	s.users.EXPECT().FindByID(gomock.Any(), ghost).Return(nil, dErrors.New(dErrors.CodeNotFound, "User not found")).Times(2)

	_, err := s.service.List(s.ctx, ghost)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.UnreadCount(s.ctx, ghost)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *NotificationServiceSuite) TestMarkRead() {
	s.True(s.service.NotifyCustomer(s.ctx, s.customer.ID, "LA202600001", "first"))
	s.True(s.service.NotifyCustomer(s.ctx, s.customer.ID, "LA202600001", "second"))
	list, err := s.store.ListByUser(s.ctx, s.customer.ID)
	s.Require().NoError(err)
	target := list[0].ID

	s.Run("unknown notification", func() {
		err := s.service.MarkRead(s.ctx, id.NotificationID(uuid.New()), s.customer.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("someone else's notification", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventNotificationDenied), e.Action)
			return nil
		})
		err := s.service.MarkRead(s.ctx, target, s.makers[0].ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		n, err := s.store.FindByID(s.ctx, target)
		s.Require().NoError(err)
		s.False(n.Read)
	})

	s.Run("recipient marks read once and is idempotent", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		s.Require().NoError(s.service.MarkRead(s.ctx, target, s.customer.ID))
		s.Require().NoError(s.service.MarkRead(s.ctx, target, s.customer.ID))

		s.expectUserExists(s.customer)
		count, err := s.service.UnreadCount(s.ctx, s.customer.ID)
		s.Require().NoError(err)
		s.Equal(1, count)
	})
}

func (s *NotificationServiceSuite) TestUnreadCountUsesCache() {
	cache := mocks.NewMockUnreadCache(s.ctrl)
	svc := New(s.store, s.users, WithUnreadCache(cache))

	s.Run("hit skips the store", func() {
		s.expectUserExists(s.customer)
		cache.EXPECT().Get(gomock.Any(), s.customer.ID).Return(7, true, nil)

		n, err := svc.UnreadCount(s.ctx, s.customer.ID)
		s.Require().NoError(err)
		s.Equal(7, n)
	})

	s.Run("miss reads through and repopulates", func() {
		cache.EXPECT().Invalidate(gomock.Any(), s.customer.ID).Return(nil)
		s.True(svc.NotifyCustomer(s.ctx, s.customer.ID, "LA202600001", "msg"))

		s.expectUserExists(s.customer)
		cache.EXPECT().Get(gomock.Any(), s.customer.ID).Return(0, false, nil)
		cache.EXPECT().Set(gomock.Any(), s.customer.ID, 1).Return(nil)

		n, err := svc.UnreadCount(s.ctx, s.customer.ID)
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("cache errors fall back to the store", func() {
		s.expectUserExists(s.customer)
		cache.EXPECT().Get(gomock.Any(), s.customer.ID).Return(0, false, errors.New("redis down"))
		cache.EXPECT().Set(gomock.Any(), s.customer.ID, 1).Return(errors.New("redis down"))

		n, err := svc.UnreadCount(s.ctx, s.customer.ID)
		s.Require().NoError(err)
		s.Equal(1, n)
	})
}

func (s *NotificationServiceSuite) TestResponseShape() {
	n := models.NewNotification(id.NotificationID(uuid.New()), s.customer.ID, "", "hello", time.Now())
	resp := models.ToResponse(n)
	s.Empty(resp.ApplicationID)
	s.False(resp.IsRead)
}
