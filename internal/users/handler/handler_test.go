package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"projecthub/internal/platform/logger"
	"projecthub/internal/users/handler/mocks"
	"projecthub/internal/users/models"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/testutil"
)

type UserHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestUserHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, logger.Discard()).Register(s.router)
}

func validCreateBody() map[string]string {
	return map[string]string{
		"nom":       "Durand",
		"prenom":    "Alice",
		"telephone": "0600000000",
		"mail":      "alice@example.com",
		"password":  "s3cret-password",
		"role":      "manager",
	}
}

func (s *UserHandlerSuite) TestCreate() {
	s.Run("returns 201 without password material", func() {
		s.service.EXPECT().Create(gomock.Any(), models.NewUser{
			Nom: "Durand", Prenom: "Alice", Telephone: "0600000000",
			Mail: "alice@example.com", Password: "s3cret-password", Role: "manager",
		}).Return(&models.User{ID: 1, Nom: "Durand", Mail: "alice@example.com", PasswordHash: "$2a$hash"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/add", validCreateBody()))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		body := rr.Body.String()
		s.NotContains(body, "password")
		s.NotContains(body, "$2a$hash")

		var resp struct {
			Message string      `json:"message"`
			Data    models.User `json:"data"`
		}
		s.Require().NoError(json.Unmarshal([]byte(body), &resp))
		s.Equal(int64(1), resp.Data.ID)
	})

	s.Run("missing field is rejected before the service", func() {
		body := validCreateBody()
		body["role"] = "  "
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/add", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("invalid mail is rejected", func() {
		body := validCreateBody()
		body["mail"] = "not-an-email"
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/add", body))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("short password is rejected", func() {
		body := validCreateBody()
		body["password"] = "short"
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/add", body))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("malformed body", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/users/add", "{"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorMessage(s.T(), rr, "invalid request body")
	})

	s.Run("duplicate mail", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/add", validCreateBody()))
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})
}

func (s *UserHandlerSuite) TestChangePassword() {
	s.Run("wrong old password is 401", func() {
		s.service.EXPECT().ChangePassword(gomock.Any(), models.PasswordChange{UserID: 2, OldPassword: "wrong", NewPassword: "new-password"}).
			Return(dErrors.New(dErrors.CodeUnauthorized, "current password is incorrect"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/changePass",
			map[string]any{"id": 2, "oldPassword": "wrong", "newPassword": "new-password"}))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("success", func() {
		s.service.EXPECT().ChangePassword(gomock.Any(), gomock.Any()).Return(nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/changePass",
			map[string]any{"id": 2, "oldPassword": "old-password", "newPassword": "new-password"}))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("missing id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/changePass",
			map[string]any{"oldPassword": "old-password", "newPassword": "new-password"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *UserHandlerSuite) TestGet() {
	s.Run("non numeric id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users/abc"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("unknown id", func() {
		s.service.EXPECT().Get(gomock.Any(), int64(42)).Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users/42"))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}

func (s *UserHandlerSuite) TestListUsesStaticRouteBeforeID() {
	s.service.EXPECT().List(gomock.Any()).Return([]*models.User{{ID: 1}, {ID: 2}}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users/all"))
	testutil.AssertStatusOK(s.T(), rr)
	users := testutil.DecodeData[[]models.User](s.T(), rr)
	s.Len(users, 2)
}

func (s *UserHandlerSuite) TestProbe() {
	s.Run("ok", func() {
		s.service.EXPECT().Ping(gomock.Any()).Return(nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONHasKey(s.T(), rr, "message")
	})

	s.Run("database down hides detail", func() {
		s.service.EXPECT().Ping(gomock.Any()).Return(dErrors.Wrap(errors.New("dial tcp 10.0.0.5:5432"), dErrors.CodeInternal, "database unreachable"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/users"))
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "10.0.0.5")
	})
}
