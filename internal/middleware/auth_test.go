package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]*model.Identity

func (s stubVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, util.ErrUnauthenticated
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{
		"kid":   {UserID: "u1", Email: "kid@example.com", Role: model.RoleUser},
		"admin": {UserID: "a1", Email: "admin@example.com", Role: model.RoleAdmin},
	}
	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetIdentityFromContext(c).UserID)
	})
	r.DELETE("/admin", AuthMiddleware(verifier), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.DELETE("/unguarded", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	w := serve(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "No authorization token provided")

	w = serve(r, http.MethodGet, "/me", "Basic kid")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "Bearer unknown")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "bearer kid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAdminOnly(t *testing.T) {
	r := newRouter()

	w := serve(r, http.MethodDelete, "/admin", "Bearer kid")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")

	w = serve(r, http.MethodDelete, "/admin", "Bearer admin")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodDelete, "/unguarded", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
