package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit/store/memory"
)

type PublisherSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.InMemoryStore
	maker id.UserID
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewInMemoryStore()
	s.maker = id.UserID(uuid.New())
}

func (s *PublisherSuite) review(number string, action audit.AuditEvent) audit.Event {
	return audit.Event{UserID: s.maker, Subject: number, Action: string(action), ActorRole: "MAKER"}
}

func (s *PublisherSuite) TestSyncEmitWritesBeforeReturning() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, s.review("LA202600001", audit.EventMakerApproved)))

	events, err := s.store.ListBySubject(s.ctx, "LA202600001")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventMakerApproved), events[0].Action)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.False(events[0].Timestamp.IsZero())
}

func (s *PublisherSuite) TestKeepsCallerTimestampAndCategory() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	at := time.Date(2026, 3, 18, 10, 30, 0, 0, time.UTC)
	event := s.review("LA202600002", audit.EventDocumentUploaded)
	event.Timestamp = at
	event.Category = audit.CategorySecurity
	s.Require().NoError(pub.Emit(s.ctx, event))

	events, err := s.store.ListByUser(s.ctx, s.maker)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(at, events[0].Timestamp)
	s.Equal(audit.CategorySecurity, events[0].Category)
}

func (s *PublisherSuite) TestCategoriseByAction() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	for _, action := range []audit.AuditEvent{
		audit.EventCheckerRejected,
		audit.EventDocumentReplaced,
		audit.EventLoginFailed,
	} {
		s.Require().NoError(pub.Emit(s.ctx, s.review("LA202600003", action)))
	}

	events, err := s.store.ListBySubject(s.ctx, "LA202600003")
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal(audit.CategoryOperations, events[1].Category)
	s.Equal(audit.CategorySecurity, events[2].Category)
}

func (s *PublisherSuite) TestAsyncCloseDrainsBuffer() {
	pub := NewPublisher(s.store, WithAsyncBuffer(32))
	for range 20 {
		s.Require().NoError(pub.Emit(s.ctx, s.review("LA202600004", audit.EventApplicationSubmitted)))
	}
	pub.Close()

	events, err := s.store.ListBySubject(s.ctx, "LA202600004")
	s.Require().NoError(err)
	s.Len(events, 20)
}

func (s *PublisherSuite) TestEmitAfterCloseWritesInline() {
	pub := NewPublisher(s.store, WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, s.review("LA202600005", audit.EventCheckerApproved)))
	events, err := s.store.ListBySubject(s.ctx, "LA202600005")
	s.Require().NoError(err)
	s.Len(events, 1)
}

func TestAsyncEmitUnderPressureNeverBlocks(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		dropped int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventApplicationSubmitted), Subject: "LA202600006"})
			if err != nil {
				require.True(t, errors.Is(err, ErrBufferFull), "unexpected error: %v", err)
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "LA202600006")
	require.NoError(t, err)
	assert.Equal(t, 50, len(events)+dropped)
}
