package store

import (
	"context"
	"slices"
	"sync"

	"github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
)

type appType struct {
	applicationID int64
	docType       models.DocumentType
}

// InMemoryDocumentStore enforces one document per (application, type) the
// same way the unique index does in postgres.
type InMemoryDocumentStore struct {
	mu     sync.RWMutex
	byID   map[id.DocumentID]*models.Document
	byType map[appType]id.DocumentID
	order  []id.DocumentID
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		byID:   make(map[id.DocumentID]*models.Document),
		byType: make(map[appType]id.DocumentID),
	}
}

func (s *InMemoryDocumentStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := appType{doc.ApplicationID, doc.Type}
	if _, taken := s.byType[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byID[doc.ID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *doc
	cp.Data = slices.Clone(doc.Data)
	s.byID[doc.ID] = &cp
	s.byType[key] = doc.ID
	s.order = append(s.order, doc.ID)
	return nil
}

// DeleteByApplicationAndType removes the document of that type, if any, and
// reports how many were removed.
func (s *InMemoryDocumentStore) DeleteByApplicationAndType(_ context.Context, applicationID int64, docType models.DocumentType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := appType{applicationID, docType}
	docID, ok := s.byType[key]
	if !ok {
		return 0, nil
	}
	delete(s.byType, key)
	delete(s.byID, docID)
	s.order = slices.DeleteFunc(s.order, func(d id.DocumentID) bool { return d == docID })
	return 1, nil
}

func (s *InMemoryDocumentStore) FindByID(_ context.Context, documentID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.byID[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *doc
	cp.Data = slices.Clone(doc.Data)
	return &cp, nil
}

// ListByApplication returns metadata in upload order. Data is left nil.
func (s *InMemoryDocumentStore) ListByApplication(_ context.Context, applicationID int64) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Document, 0)
	for _, docID := range s.order {
		doc := s.byID[docID]
		if doc.ApplicationID != applicationID {
			continue
		}
		cp := *doc
		cp.Data = nil
		out = append(out, &cp)
	}
	return out, nil
}
