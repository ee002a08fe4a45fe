package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/handler/mocks"
	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/middleware"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/testutil"
)

// tokenValidator accepts a single token and returns fixed claims for it.
type tokenValidator struct {
	token  string
	claims *middleware.JWTClaims
}

func (v tokenValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != v.token {
		return nil, errors.New("unknown token")
	}
	return v.claims, nil
}

type InboxHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
	userID  id.UserID
}

func TestInboxHandlerSuite(t *testing.T) {
	suite.Run(t, new(InboxHandlerSuite))
}

func (s *InboxHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.userID = id.UserID(uuid.New())
	validator := tokenValidator{
		token:  "maker-token",
		claims: &middleware.JWTClaims{UserID: s.userID.String(), Role: string(id.RoleMaker)},
	}
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, validator).Register(r)
	s.router = r
}

func (s *InboxHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *InboxHandlerSuite) authed(method, path string) *http.Request {
	return testutil.WithBearer(testutil.NewRequest(s.T(), method, path), "maker-token")
}

func (s *InboxHandlerSuite) TestList() {
	s.Run("returns the caller's inbox", func() {
		createdAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		nid := id.NotificationID(uuid.New())
		s.service.EXPECT().List(gomock.Any(), s.userID).Return([]*models.Notification{
			{ID: nid, UserID: s.userID, ApplicationNumber: "LA202500001", Message: "New loan application LA202500001 submitted by Asha Rao", CreatedAt: createdAt},
		}, nil)

		rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/notifications"))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[[]models.Response](s.T(), rr)
		s.Require().Len(*body, 1)
		s.Equal(nid, (*body)[0].ID)
		s.Equal("LA202500001", (*body)[0].ApplicationID)
		s.False((*body)[0].IsRead)
	})

	s.Run("empty inbox is an empty array", func() {
		s.service.EXPECT().List(gomock.Any(), s.userID).Return(nil, nil)
		rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/notifications"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`[]`, rr.Body.String())
	})

	s.Run("missing token never reaches the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/notifications"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *InboxHandlerSuite) TestUnreadCount() {
	s.service.EXPECT().UnreadCount(gomock.Any(), s.userID).Return(3, nil)
	rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, "/notifications/unread-count"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "count", float64(3))
}

func (s *InboxHandlerSuite) TestMarkRead() {
	s.Run("marks the notification", func() {
		nid := id.NotificationID(uuid.New())
		s.service.EXPECT().MarkRead(gomock.Any(), nid, s.userID).Return(nil)
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/notifications/"+nid.String()+"/read"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("foreign notification is unauthorized", func() {
		nid := id.NotificationID(uuid.New())
		s.service.EXPECT().MarkRead(gomock.Any(), nid, s.userID).Return(dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/notifications/"+nid.String()+"/read"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("unknown notification is not found", func() {
		nid := id.NotificationID(uuid.New())
		s.service.EXPECT().MarkRead(gomock.Any(), nid, s.userID).Return(dErrors.New(dErrors.CodeNotFound, "Notification not found"))
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/notifications/"+nid.String()+"/read"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id is a bad request", func() {
		rr := testutil.DoRequest(s.router, s.authed(http.MethodPost, "/notifications/not-a-uuid/read"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}
