package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "meridian/pkg/domain"
	"meridian/pkg/requestcontext"
)

// TenantClaims is the expected JWT payload. The platform gateway mints these;
// this service only verifies the signature and extracts the tenant.
type TenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// RequireTenant verifies the bearer token and injects the tenant ID into the
// request context. Every data-plane route is tenant-scoped; requests without a
// valid tenant are rejected before any store access.
func RequireTenant(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(signingKey), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims := &TenantClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "token rejected",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			tenantID, err := id.ParseTenantID(claims.TenantID)
			if err != nil || tenantID.IsNil() {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := requestcontext.WithTenantID(r.Context(), tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantID retrieves the tenant set by RequireTenant.
func GetTenantID(r *http.Request) id.TenantID {
	return requestcontext.TenantID(r.Context())
}
