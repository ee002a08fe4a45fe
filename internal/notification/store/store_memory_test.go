package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
)

type NotificationStoreSuite struct {
	suite.Suite
	store *InMemoryNotificationStore
	ctx   context.Context
	user  id.UserID
}

func TestNotificationStoreSuite(t *testing.T) {
	suite.Run(t, new(NotificationStoreSuite))
}

func (s *NotificationStoreSuite) SetupTest() {
	s.store = NewInMemoryNotificationStore()
	s.ctx = context.Background()
	s.user = id.UserID(uuid.New())
}

func (s *NotificationStoreSuite) add(userID id.UserID, msg string, at time.Time) *models.Notification {
	n := models.NewNotification(id.NotificationID(uuid.New()), userID, "LA202600001", msg, at)
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *NotificationStoreSuite) TestListNewestFirst() {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.add(s.user, "first", base)
	s.add(s.user, "third", base.Add(2*time.Minute))
	s.add(s.user, "second", base.Add(time.Minute))
	s.add(id.UserID(uuid.New()), "someone else", base.Add(3*time.Minute))

	list, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"third", "second", "first"}, []string{list[0].Message, list[1].Message, list[2].Message})
}

func (s *NotificationStoreSuite) TestSameTimestampKeepsLatestInsertFirst() {
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.add(s.user, "older", at)
	s.add(s.user, "newer", at)

	list, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Equal("newer", list[0].Message)
}

func (s *NotificationStoreSuite) TestUnreadAndMarkRead() {
	n := s.add(s.user, "one", time.Now())
	s.add(s.user, "two", time.Now())

	count, err := s.store.CountUnread(s.ctx, s.user)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.Require().NoError(s.store.MarkRead(s.ctx, n.ID))
	s.Require().NoError(s.store.MarkRead(s.ctx, n.ID))

	count, err = s.store.CountUnread(s.ctx, s.user)
	s.Require().NoError(err)
	s.Equal(1, count)

	found, err := s.store.FindByID(s.ctx, n.ID)
	s.Require().NoError(err)
	s.True(found.Read)

	s.ErrorIs(s.store.MarkRead(s.ctx, id.NotificationID(uuid.New())), sentinel.ErrNotFound)
	_, err = s.store.FindByID(s.ctx, id.NotificationID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *NotificationStoreSuite) TestDuplicateID() {
	n := s.add(s.user, "one", time.Now())
	s.ErrorIs(s.store.Create(s.ctx, n), sentinel.ErrAlreadyUsed)
}
