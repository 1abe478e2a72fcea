package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stem-for-society/enquiry-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionTestRouter(tm *jwt.TokenManager) *gin.Engine {
	router := gin.New()
	router.GET("/admin/ping",
		AdminSessionMiddleware(tm, "", false),
		func(c *gin.Context) {
			claims, err := GetAdminSession(c)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"email": claims.Email})
		})
	return router
}

func TestAdminSessionMiddleware_MissingToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "enquiry-api", 24)
	router := newSessionTestRouter(tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/ping", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminSessionMiddleware_ValidCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "enquiry-api", 24)
	token, err := tm.GenerateToken("admin-1", "ops@stemforsociety.in", "Ops", "admin")
	require.NoError(t, err)

	router := newSessionTestRouter(tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/ping", http.NoBody)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ops@stemforsociety.in")
}

func TestAdminSessionMiddleware_BearerHeader(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "enquiry-api", 24)
	token, err := tm.GenerateToken("admin-1", "ops@stemforsociety.in", "Ops", "admin")
	require.NoError(t, err)

	router := newSessionTestRouter(tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/ping", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminSessionMiddleware_GarbageToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "enquiry-api", 24)
	router := newSessionTestRouter(tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/ping", http.NoBody)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookieName, Value: "not-a-jwt"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminSessionMiddleware_WrongSecret(t *testing.T) {
	issuer := jwt.NewTokenManager("other-secret", "enquiry-api", 24)
	token, err := issuer.GenerateToken("admin-1", "ops@stemforsociety.in", "Ops", "admin")
	require.NoError(t, err)

	tm := jwt.NewTokenManager("test-secret", "enquiry-api", 24)
	router := newSessionTestRouter(tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/ping", http.NoBody)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
