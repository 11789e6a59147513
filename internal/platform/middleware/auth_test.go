package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/platform/middleware"
	id "meridian/pkg/domain"
	"meridian/pkg/testutil"
)

const signingKey = "test-signing-key"

type AuthSuite struct {
	suite.Suite
	handler    http.Handler
	seenTenant id.TenantID
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.seenTenant = id.TenantID{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.seenTenant = middleware.GetTenantID(r)
		w.WriteHeader(http.StatusOK)
	})
	s.handler = middleware.RequireTenant(signingKey, logger)(inner)
}

func (s *AuthSuite) token(key, tenantID string) string {
	claims := middleware.TenantClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	s.Require().NoError(err)
	return raw
}

func (s *AuthSuite) do(authorization string) *httptest.ResponseRecorder {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/residency/rules")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return testutil.DoRequest(s.handler, req)
}

func (s *AuthSuite) TestValidTokenInjectsTenant() {
	tenantID := uuid.NewString()
	rr := s.do("Bearer " + s.token(signingKey, tenantID))

	s.Equal(http.StatusOK, rr.Code)
	s.Equal(tenantID, s.seenTenant.String())
}

func (s *AuthSuite) TestMissingHeader() {
	rr := s.do("")
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *AuthSuite) TestWrongSigningKey() {
	rr := s.do("Bearer " + s.token("other-key", uuid.NewString()))
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *AuthSuite) TestExpiredToken() {
	claims := middleware.TenantClaims{
		TenantID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	s.Require().NoError(err)

	rr := s.do("Bearer " + raw)
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *AuthSuite) TestTokenWithoutTenantClaim() {
	rr := s.do("Bearer " + s.token(signingKey, ""))
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *AuthSuite) TestMalformedBearer() {
	rr := s.do("Token abc123")
	s.Equal(http.StatusUnauthorized, rr.Code)
}
