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

	appmodels "github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	appstore "github.com/rakesh-tirumalaparapu/zipp/internal/application/store"
	"github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/document/service/mocks"
	"github.com/rakesh-tirumalaparapu/zipp/internal/document/store"
	"github.com/rakesh-tirumalaparapu/zipp/internal/events"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

type DocumentServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	events    *mocks.MockEventPublisher
	publisher *mocks.MockAuditPublisher
	apps      *appstore.InMemoryApplicationStore
	docs      *store.InMemoryDocumentStore
	service   *Service
	ctx       context.Context
	app       *appmodels.Application
}

func TestDocumentServiceSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.events = mocks.NewMockEventPublisher(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.apps = appstore.NewInMemoryApplicationStore()
	s.docs = store.NewInMemoryDocumentStore()
	s.service = New(s.docs, s.apps, txcontext.NewShardedMemoryTx(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
		WithEventPublisher(s.events),
	)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.ctx = requestcontext.WithUserID(s.ctx, id.UserID(uuid.New()))

	app, err := appmodels.NewApplication("LA202600001", id.UserID(uuid.New()), "Asha Rao", appmodels.Details{}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.apps.Create(s.ctx, app))
	s.app = app
}

func (s *DocumentServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DocumentServiceSuite) upload(docType models.DocumentType, data, contentType string) (*models.Document, error) {
	return s.service.Upload(s.ctx, &models.UploadRequest{
		ApplicationNumber: s.app.Number,
		Type:              docType,
		Name:              "upload.bin",
		ContentType:       contentType,
		Data:              []byte(data),
	})
}

func (s *DocumentServiceSuite) TestUploadThenDownloadReturnsExactBytes() {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
		s.Equal(string(audit.EventDocumentUploaded), ev.Action)
		s.Equal(s.app.Number, ev.Subject)
		return nil
	})
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(func(_ context.Context, ev events.WorkflowEvent) {
		s.Equal(events.TypeDocumentUploaded, ev.Type)
		s.Equal("PHOTOGRAPH", ev.DocumentType)
	})

	doc, err := s.upload(models.TypePhotograph, "\x89PNG\r\n", "image/png")
	s.Require().NoError(err)

	got, err := s.service.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal([]byte("\x89PNG\r\n"), got.Data)
	s.Equal("image/png", got.ContentType)
	s.Equal("upload.bin", got.Name)
}

func (s *DocumentServiceSuite) TestUploadReplacesSameType() {
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(3)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
		s.Equal(string(audit.EventDocumentReplaced), ev.Action)
		return nil
	})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	first, err := s.upload(models.TypeSalarySlips, "v1", "application/pdf")
	s.Require().NoError(err)
	second, err := s.upload(models.TypeSalarySlips, "v2", "text/plain")
	s.Require().NoError(err)
	_, err = s.upload(models.TypePhotograph, "photo", "image/jpeg")
	s.Require().NoError(err)

	_, err = s.service.Get(s.ctx, first.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	got, err := s.service.Get(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal([]byte("v2"), got.Data)
	s.Equal("text/plain", got.ContentType)

	types, err := s.service.ListTypes(s.ctx, s.app.Number)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"SALARY_SLIPS", "PHOTOGRAPH"}, types)

	ids, err := s.service.ListIDs(s.ctx, s.app.Number)
	s.Require().NoError(err)
	s.Len(ids, 2)

	refs, err := s.service.ListRefs(s.ctx, s.app.ID)
	s.Require().NoError(err)
	s.Len(refs, 2)
}

func (s *DocumentServiceSuite) TestUploadDoesNotTouchStatus() {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any())

	_, err := s.upload(models.TypeCIBILReport, "report", "application/pdf")
	s.Require().NoError(err)

	app, err := s.apps.FindByNumber(s.ctx, s.app.Number)
	s.Require().NoError(err)
	s.Equal(appmodels.StatusWithMaker, app.Status)
}

func (s *DocumentServiceSuite) TestUploadGuards() {
	s.Run("empty payload", func() {
		_, err := s.upload(models.TypePhotograph, "", "image/png")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown type", func() {
		_, err := s.upload("SELFIE", "x", "image/png")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown application", func() {
		_, err := s.service.Upload(s.ctx, &models.UploadRequest{
			ApplicationNumber: "LA209900001", Type: models.TypePhotograph, Data: []byte("x"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DocumentServiceSuite) TestUnknownIdentifiers() {
	_, err := s.service.Get(s.ctx, id.DocumentID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.ListTypes(s.ctx, "LA209900001")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.ListIDs(s.ctx, "LA209900001")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DocumentServiceSuite) TestStoreFailureIsInternal() {
	docs := mocks.NewMockStore(s.ctrl)
	svc := New(docs, s.apps, txcontext.NewShardedMemoryTx())
	docs.EXPECT().DeleteByApplicationAndType(gomock.Any(), s.app.ID, models.TypePhotograph).Return(0, errors.New("disk full"))

	_, err := svc.Upload(s.ctx, &models.UploadRequest{ApplicationNumber: s.app.Number, Type: models.TypePhotograph, Data: []byte("x")})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
