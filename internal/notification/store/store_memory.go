package store

import (
	"context"
	"slices"
	"sync"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
)

// InMemoryNotificationStore keeps notifications by id with a per-user index.
type InMemoryNotificationStore struct {
	mu     sync.RWMutex
	byID   map[id.NotificationID]*models.Notification
	byUser map[id.UserID][]id.NotificationID
}

func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{
		byID:   make(map[id.NotificationID]*models.Notification),
		byUser: make(map[id.UserID][]id.NotificationID),
	}
}

func (s *InMemoryNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *n
	s.byID[n.ID] = &cp
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *InMemoryNotificationStore) FindByID(_ context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// ListByUser returns the user's notifications newest first.
func (s *InMemoryNotificationStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]*models.Notification, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		cp := *s.byID[ids[i]]
		out = append(out, &cp)
	}
	// insertion order breaks ties between equal timestamps
	slices.SortStableFunc(out, func(a, b *models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *InMemoryNotificationStore) CountUnread(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, nid := range s.byUser[userID] {
		if !s.byID[nid].Read {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryNotificationStore) MarkRead(_ context.Context, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[notificationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Read = true
	return nil
}
