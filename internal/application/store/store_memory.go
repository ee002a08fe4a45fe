package store

import (
	"context"
	"slices"
	"sync"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
)

// InMemoryApplicationStore keeps applications keyed by number.
type InMemoryApplicationStore struct {
	mu       sync.RWMutex
	nextID   int64
	byNumber map[string]*models.Application
}

func NewInMemoryApplicationStore() *InMemoryApplicationStore {
	return &InMemoryApplicationStore{byNumber: make(map[string]*models.Application)}
}

// Create assigns the store id. A taken number returns sentinel.ErrAlreadyUsed.
func (s *InMemoryApplicationStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byNumber[app.Number]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.nextID++
	app.ID = s.nextID
	s.byNumber[app.Number] = cloneApplication(app)
	return nil
}

func (s *InMemoryApplicationStore) FindByNumber(_ context.Context, number string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.byNumber[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(app), nil
}

// FindByNumberForUpdate is FindByNumber; callers serialise through RunInTx.
func (s *InMemoryApplicationStore) FindByNumberForUpdate(ctx context.Context, number string) (*models.Application, error) {
	return s.FindByNumber(ctx, number)
}

// Update persists status, submitted date and update time.
func (s *InMemoryApplicationStore) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byNumber[app.Number]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Status = app.Status
	stored.SubmittedDate = app.SubmittedDate
	stored.UpdatedAt = app.UpdatedAt
	return nil
}

// SaveDetails replaces the detail records and references.
func (s *InMemoryApplicationStore) SaveDetails(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byNumber[app.Number]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Details = cloneDetails(app.Details)
	return nil
}

func (s *InMemoryApplicationStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byNumber), nil
}

func (s *InMemoryApplicationStore) Exists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byNumber[number]
	return ok, nil
}

func (s *InMemoryApplicationStore) ListByCustomer(_ context.Context, customerID id.UserID) ([]*models.Application, error) {
	return s.list(func(a *models.Application) bool { return a.CustomerID == customerID }), nil
}

func (s *InMemoryApplicationStore) ListAll(_ context.Context) ([]*models.Application, error) {
	return s.list(func(*models.Application) bool { return true }), nil
}

// ListByStatuses matches on normalised status, so WITH_MAKER includes legacy PENDING rows.
func (s *InMemoryApplicationStore) ListByStatuses(_ context.Context, statuses []models.Status) ([]*models.Application, error) {
	want := make(map[models.Status]bool, len(statuses))
	for _, st := range statuses {
		want[st.Normalize()] = true
	}
	return s.list(func(a *models.Application) bool { return want[a.Status.Normalize()] }), nil
}

// CountByStatus groups applications by raw status, optionally for one customer.
func (s *InMemoryApplicationStore) CountByStatus(_ context.Context, customerID *id.UserID) (models.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := models.StatusCounts{}
	for _, a := range s.byNumber {
		if customerID != nil && a.CustomerID != *customerID {
			continue
		}
		counts.Add(a.Status, 1)
	}
	return counts, nil
}

// list returns matches newest submission first, then by descending id.
func (s *InMemoryApplicationStore) list(match func(*models.Application) bool) []*models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Application, 0)
	for _, a := range s.byNumber {
		if match(a) {
			out = append(out, cloneApplication(a))
		}
	}
	slices.SortFunc(out, func(a, b *models.Application) int {
		if c := b.SubmittedDate.Compare(a.SubmittedDate.Time); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out
}

func cloneApplication(a *models.Application) *models.Application {
	cp := *a
	cp.Details = cloneDetails(a.Details)
	return &cp
}

func cloneDetails(d models.Details) models.Details {
	d.References = slices.Clone(d.References)
	return d
}

// InMemoryCommentStore keeps the append-only comment trail per application.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[int64][]*models.Comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[int64][]*models.Comment)}
}

func (s *InMemoryCommentStore) Append(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *comment
	s.comments[comment.ApplicationID] = append(s.comments[comment.ApplicationID], &cp)
	return nil
}

// ListByApplication returns comments oldest first.
func (s *InMemoryCommentStore) ListByApplication(_ context.Context, applicationID int64) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.comments[applicationID]
	out := make([]*models.Comment, 0, len(src))
	for _, c := range src {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}
