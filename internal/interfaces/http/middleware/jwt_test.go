package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Issuer:     "storefront-test",
		Expiration: expiration,
	})
}

func newToken(t *testing.T, svc *auth.JWTService, role auth.Role) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, _, err := svc.GenerateToken(userID, role)
	require.NoError(t, err)
	return token, userID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token, userID := newToken(t, svc, auth.RoleCustomer)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) {
		id, ok := GetUserID(c)
		assert.True(t, ok)
		assert.Equal(t, userID, id)

		role, ok := GetRole(c)
		assert.True(t, ok)
		assert.Equal(t, auth.RoleCustomer, role)
		assert.False(t, IsStaff(c))
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Issuer: "storefront-test"})
	foreignToken, _ := newToken(t, other, auth.RoleAdmin)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing header", header: "", code: "UNAUTHORIZED"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", code: "UNAUTHORIZED"},
		{name: "empty bearer", header: "Bearer ", code: "UNAUTHORIZED"},
		{name: "garbage token", header: "Bearer not-a-jwt", code: "UNAUTHORIZED"},
		{name: "signed with another secret", header: "Bearer " + foreignToken, code: "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JWTAuthMiddleware(svc))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := serve(router, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(time.Nanosecond)
	token, _ := newToken(t, svc, auth.RoleCustomer)
	time.Sleep(2 * time.Second)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := serve(router, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeError(t, w)["code"])
}

func TestRequireStaff(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	tests := []struct {
		name       string
		role       auth.Role
		wantStatus int
	}{
		{name: "admin allowed", role: auth.RoleAdmin, wantStatus: http.StatusOK},
		{name: "support allowed", role: auth.RoleSupport, wantStatus: http.StatusOK},
		{name: "customer forbidden", role: auth.RoleCustomer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _ := newToken(t, svc, tt.role)

			router := gin.New()
			router.Use(JWTAuthMiddleware(svc))
			router.GET("/staff", RequireStaff(), func(c *gin.Context) {
				assert.True(t, IsStaff(c))
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+token)
			w := serve(router, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decodeError(t, w)["code"])
			}
		})
	}
}

func TestRequireRoles_WithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.GET("/staff", RequireRoles(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/staff", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID_Invalid(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(UserIDKey, "not-a-uuid")
	_, ok = GetUserID(c)
	assert.False(t, ok)
}
