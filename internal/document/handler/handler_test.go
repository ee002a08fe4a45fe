package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rakesh-tirumalaparapu/zipp/internal/document/handler/mocks"
	"github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/middleware"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/testutil"
)

type staticValidator struct{ userID id.UserID }

func (v staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "valid" {
		return nil, errors.New("invalid token")
	}
	return &middleware.JWTClaims{UserID: v.userID.String(), Role: string(id.RoleCustomer)}, nil
}

type DocumentHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestDocumentHandlerSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlerSuite))
}

func (s *DocumentHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, staticValidator{id.UserID(uuid.New())}, 16).Register(r)
	s.router = r
}

func (s *DocumentHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DocumentHandlerSuite) multipartRequest(number, docType, filename, contentType string, data []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("applicationId", number))
	s.Require().NoError(mw.WriteField("documentType", docType))
	if data != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		s.Require().NoError(err)
		_, err = part.Write(data)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testutil.WithBearer(req, "valid")
}

func (s *DocumentHandlerSuite) authed(method, path string) *http.Request {
	return testutil.WithBearer(testutil.NewRequest(s.T(), method, path), "valid")
}

func (s *DocumentHandlerSuite) TestUpload() {
	s.Run("passes the file through", func() {
		docID := id.DocumentID(uuid.New())
		s.service.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req *models.UploadRequest) (*models.Document, error) {
				s.Equal("LA202600001", req.ApplicationNumber)
				s.Equal(models.TypeIdentityProof, req.Type)
				s.Equal("pan.pdf", req.Name)
				s.Equal("application/pdf", req.ContentType)
				s.Equal([]byte("%PDF-1.7"), req.Data)
				return &models.Document{ID: docID, Type: req.Type}, nil
			})

		rr := testutil.DoRequest(s.router, s.multipartRequest("LA202600001", "identity_proof", "pan.pdf", "application/pdf", []byte("%PDF-1.7")))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "id", docID.String())
		testutil.AssertJSONContains(s.T(), rr, "documentType", "IDENTITY_PROOF")
	})

	s.Run("unknown type never reaches the service", func() {
		rr := testutil.DoRequest(s.router, s.multipartRequest("LA202600001", "SELFIE", "me.png", "image/png", []byte("png")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("missing file", func() {
		rr := testutil.DoRequest(s.router, s.multipartRequest("LA202600001", "PHOTOGRAPH", "", "", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("oversized file", func() {
		rr := testutil.DoRequest(s.router, s.multipartRequest("LA202600001", "PHOTOGRAPH", "big.png", "image/png", bytes.Repeat([]byte("x"), 17)))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("unknown application", func() {
		s.service.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeNotFound, "Application not found"))
		rr := testutil.DoRequest(s.router, s.multipartRequest("LA209900001", "PHOTOGRAPH", "me.png", "image/png", []byte("png")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *DocumentHandlerSuite) TestDownloadWritesRawBytes() {
	docID := id.DocumentID(uuid.New())
	payload := []byte{0x00, 0xff, 0x10, 'a'}
	s.service.EXPECT().Get(gomock.Any(), docID).Return(&models.Document{
		ID: docID, Type: models.TypePhotograph, Name: "me.png", ContentType: "image/png", Data: payload,
	}, nil)

	rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/documents/"+docID.String()))
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("image/png", rr.Header().Get("Content-Type"))
	s.Equal(`attachment; filename=me.png`, rr.Header().Get("Content-Disposition"))
	s.Equal(payload, rr.Body.Bytes())
}

func (s *DocumentHandlerSuite) TestDownloadUnknownDocument() {
	docID := id.DocumentID(uuid.New())
	s.service.EXPECT().Get(gomock.Any(), docID).Return(nil, dErrors.New(dErrors.CodeNotFound, "Document not found"))

	rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/documents/"+docID.String()))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *DocumentHandlerSuite) TestListings() {
	s.service.EXPECT().ListTypes(gomock.Any(), "LA202600001").Return([]string{"PHOTOGRAPH", "CIBIL_REPORT"}, nil)
	rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/documents/application/LA202600001"))
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`["PHOTOGRAPH","CIBIL_REPORT"]`, rr.Body.String())

	docID := id.DocumentID(uuid.New())
	s.service.EXPECT().ListIDs(gomock.Any(), "LA202600001").Return([]models.IDResponse{{ID: docID, DocumentType: models.TypePhotograph}}, nil)
	rr = testutil.DoRequest(s.router, s.authed(http.MethodGet, "/documents/application/LA202600001/ids"))
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`[{"id":"`+docID.String()+`","documentType":"PHOTOGRAPH"}]`, rr.Body.String())
}

func (s *DocumentHandlerSuite) TestRequiresToken() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/documents/application/LA202600001"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}
