package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sanctuary-app/config"
	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/domain/users"
	"sanctuary-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	prev := config.JWT_SECRET
	config.JWT_SECRET = "test-secret"
	t.Cleanup(func() { config.JWT_SECRET = prev })

	db := testutil.OpenDB(t)
	h := NewHandler(db, nil)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/google", h.GoogleStart)
	return r, db
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterThenLogin(t *testing.T) {
	r, db := newRouter(t)

	rec := postJSON(r, "/register", gin.H{"first_name": "Sam", "email": "Sam@Example.com", "password": "journal123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg struct {
		Token string  `json:"token"`
		User  userDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "sam@example.com", reg.User.Email)
	assert.False(t, reg.User.IsPremium)

	uid, err := middleware.ParseToken(reg.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)

	var stored users.User
	require.NoError(t, db.First(&stored, reg.User.ID).Error)
	require.NotNil(t, stored.Password)
	assert.NotEqual(t, "journal123", *stored.Password)

	rec = postJSON(r, "/register", gin.H{"first_name": "Sam", "email": "sam@example.com", "password": "journal123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(r, "/login", gin.H{"email": "sam@example.com", "password": "journal123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(r, "/login", gin.H{"email": "sam@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(r, "/login", gin.H{"email": "nobody@example.com", "password": "journal123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/register", gin.H{"email": "a@example.com", "password": "journal123"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/register", gin.H{"first_name": "A", "email": "not-an-email", "password": "journal123"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/register", gin.H{"first_name": "A", "email": "a@example.com", "password": "short"}).Code)
}

func TestGoogleSignInAccountsRejectPasswordLogin(t *testing.T) {
	r, db := newRouter(t)

	u, err := findOrCreateGoogleUser(db, &googleIDClaims{Sub: "g-1", Email: "G@example.com", GivenName: "Gia", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, users.ProviderGoogle, u.AuthProvider)

	again, err := findOrCreateGoogleUser(db, &googleIDClaims{Sub: "g-1", Email: "g@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	rec := postJSON(r, "/login", gin.H{"email": "g@example.com", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google sign-in")
}

func TestGoogleDisabled(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/google", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
