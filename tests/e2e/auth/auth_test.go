//go:build e2e

package auth_test

import (
	"context"
	"net/http"
	stdhttptest "net/http/httptest"
	"testing"

	reqdto "staybook/internal/handler/dto/request"
	resdto "staybook/internal/handler/dto/response"
	"staybook/internal/pkg/cookie"
	"staybook/internal/usecase/queries"
	"staybook/tests/common/authtest"
	"staybook/tests/common/dbtest"
	"staybook/tests/common/httptest"
	"staybook/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	registerURL = "/api/auth/register"
	loginURL    = "/api/auth/login"
	refreshURL  = "/api/auth/refresh"
	logoutURL   = "/api/auth/logout"
	meURL       = "/api/auth/me"
)

type AuthSuite struct {
	e2e.SharedSuite
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) login(email, password string) *stdhttptest.ResponseRecorder {
	return httptest.PerformRequest(s.T(), s.Env.Router, http.MethodPost, loginURL,
		reqdto.LoginRequest{Email: email, Password: password}, "")
}

// =============================================================================
// TestRegister
// =============================================================================

func (s *AuthSuite) TestRegister() {
	s.Run("creates a guest account and signs it in", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, registerURL,
			reqdto.RegisterRequest{Email: "new@example.com", Password: "password123"}, "")

		var body resdto.LoginResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &body)
		require.NotEmpty(t, body.AccessToken)
		require.Equal(t, "new@example.com", body.User.Email)
		require.Equal(t, "guest", body.User.Role)
		require.NotNil(t, httptest.ExtractCookie(w, cookie.AccessTokenCookieName))
		require.NotNil(t, httptest.ExtractCookie(w, cookie.RefreshTokenCookieName))

		loginResp := s.login("new@example.com", "password123")
		require.Equal(t, http.StatusOK, loginResp.Code, loginResp.Body.String())
	})

	s.Run("rejects an email that is already registered", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.Env.DB, "taken@example.com", "guest")

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, registerURL,
			reqdto.RegisterRequest{Email: "taken@example.com", Password: "password123"}, "")
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "Email is already registered")
	})

	s.Run("rejects a short password", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, registerURL,
			reqdto.RegisterRequest{Email: "new@example.com", Password: "short"}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	s.Run("rejects a malformed email", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, registerURL,
			reqdto.RegisterRequest{Email: "not-an-email", Password: "password123"}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// TestLogin
// =============================================================================

func (s *AuthSuite) TestLogin() {
	s.Run("valid credentials return a token pair", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")

		w := s.login("guest@example.com", "password123")

		var body resdto.LoginResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &body)
		require.NotEmpty(t, body.AccessToken)
		require.Equal(t, "guest@example.com", body.User.Email)
		require.Equal(t, "guest", body.User.Role)

		require.NotNil(t, httptest.ExtractCookie(w, cookie.AccessTokenCookieName))
		require.NotNil(t, httptest.ExtractCookie(w, cookie.RefreshTokenCookieName))
	})

	s.Run("wrong password is rejected", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")

		w := s.login("guest@example.com", "wrong-password")
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid email or password")
	})

	s.Run("unknown email is rejected with the same message", func() {
		t := s.T()

		w := s.login("nobody@example.com", "password123")
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid email or password")
	})

	s.Run("inactive account cannot log in", func() {
		t := s.T()
		userID := dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")

		_, err := s.Env.DB.Exec(context.Background(),
			"UPDATE users SET is_active = false WHERE id = $1", userID)
		require.NoError(t, err)

		w := s.login("guest@example.com", "password123")
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Account is inactive")
	})
}

// =============================================================================
// TestMe
// =============================================================================

func (s *AuthSuite) TestMe() {
	s.Run("returns the authenticated user", func() {
		t := s.T()
		userID := dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodGet, meURL, nil, token)

		var body queries.AuthorizedUserView
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &body)
		require.Equal(t, userID, body.ID)
		require.Equal(t, "guest@example.com", body.Email)
	})

	s.Run("rejects requests without a token", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodGet, meURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// TestRefresh
// =============================================================================

func (s *AuthSuite) TestRefresh() {
	s.Run("refresh cookie yields a new access token", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")

		loginResp := s.login("guest@example.com", "password123")
		require.Equal(t, http.StatusOK, loginResp.Code)
		refresh := httptest.ExtractCookie(loginResp, cookie.RefreshTokenCookieName)
		require.NotNil(t, refresh)

		w := httptest.PerformRequestWithCookies(t, s.Env.Router, http.MethodPost, refreshURL,
			nil, []*http.Cookie{refresh}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
		require.NotEmpty(t, body.AccessToken)
	})

	s.Run("refresh token in the body works without cookies", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")

		loginResp := s.login("guest@example.com", "password123")
		require.Equal(t, http.StatusOK, loginResp.Code)
		refresh := httptest.ExtractCookie(loginResp, cookie.RefreshTokenCookieName)
		require.NotNil(t, refresh)

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, refreshURL,
			reqdto.RefreshRequest{RefreshToken: refresh.Value}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	s.Run("garbage refresh token is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, refreshURL,
			reqdto.RefreshRequest{RefreshToken: "not-a-jwt"}, "")
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid or expired refresh token")
	})
}

// =============================================================================
// TestLogout
// =============================================================================

func (s *AuthSuite) TestLogout() {
	s.Run("logout clears the token cookies", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.Env.DB, "guest@example.com", "guest")
		token := authtest.LoginUser(t, s.Env.Router, "guest@example.com", "password123")

		w := httptest.PerformRequest(t, s.Env.Router, http.MethodPost, logoutURL, nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		access := httptest.ExtractCookie(w, cookie.AccessTokenCookieName)
		require.NotNil(t, access)
		require.Empty(t, access.Value)
	})
}
