package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rakesh-tirumalaparapu/zipp/internal/user/handler/mocks"
	"github.com/rakesh-tirumalaparapu/zipp/internal/user/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil).Register(r)
	s.router = r
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("returns token on success", func() {
		userID := id.UserID(uuid.New())
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req *models.LoginRequest) (*models.LoginResult, error) {
				s.Equal("sameer.maker@example.com", req.Email)
				s.Equal("MAKER", req.Role)
				return &models.LoginResult{Token: "tok", ID: userID, Name: "Sameer Maker", Email: req.Email, Role: id.RoleMaker}, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
			"email": " Sameer.Maker@example.com", "password": "maker123", "role": "MAKER",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[models.LoginResult](s.T(), rr)
		s.Equal("tok", body.Token)
		s.Equal(userID, body.ID)
	})

	s.Run("missing password never reaches the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.c"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("service errors map to status", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid password"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
			"email": "a@b.c", "password": "x", "role": "CUSTOMER",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *AuthHandlerSuite) TestSignup() {
	s.Run("creates customer", func() {
		s.service.EXPECT().Signup(gomock.Any(), gomock.Any()).Return(&models.User{
			ID: id.UserID(uuid.New()), Name: "Asha Rao", Email: "asha@example.com", Role: id.RoleCustomer, PasswordHash: "secret-hash",
		}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/signup", models.SignupRequest{
			FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", PhoneNumber: "9000000001", Password: "secret1",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		s.NotContains(rr.Body.String(), "secret-hash")
	})

	s.Run("malformed json is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/auth/signup", "{"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}
