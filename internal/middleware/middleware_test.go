package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/response"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type stubTokens struct {
	valid map[string]*service.AccessClaims
}

func (s stubTokens) Authenticate(_ context.Context, token string) (*service.AccessClaims, error) {
	if claims, ok := s.valid[token]; ok {
		return claims, nil
	}
	return nil, apperror.Auth("invalid access token")
}

type stubUsers map[primitive.ObjectID]*models.User

func (s stubUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func newAuthRouter(t *testing.T) (*gin.Engine, *models.User) {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	claims := &service.AccessClaims{
		UserID:           user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	ghost := &service.AccessClaims{UserID: primitive.NewObjectID().Hex()}

	auth := NewAuthenticator(
		stubTokens{valid: map[string]*service.AccessClaims{"good": claims, "ghost": ghost}},
		stubUsers{user.ID: user},
		quietLogger(),
	)

	r := gin.New()
	r.Use(ErrorHandler(quietLogger()))
	r.GET("/private", auth.Required(), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		response.OK(c, gin.H{"username": actor.Username, "tokenId": actor.TokenID}, "ok")
	})
	r.GET("/public", auth.Optional(), func(c *gin.Context) {
		_, ok := ActorFrom(c)
		response.OK(c, gin.H{"authenticated": ok}, "ok")
	})
	return r, user
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()
	var body response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticatorRequired(t *testing.T) {
	router, _ := newAuthRouter(t)

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{name: "missing token", prepare: func(*http.Request) {}, wantStatus: http.StatusUnauthorized},
		{name: "bearer header", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, wantStatus: http.StatusOK},
		{name: "cookie", prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"}) }, wantStatus: http.StatusOK},
		{name: "cookie wins over header", prepare: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
			r.Header.Set("Authorization", "Bearer bad")
		}, wantStatus: http.StatusOK},
		{name: "invalid token", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, wantStatus: http.StatusUnauthorized},
		{name: "user no longer exists", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer ghost") }, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				body := decodeError(t, w)
				assert.False(t, body.Success)
				assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
				assert.NotNil(t, body.Errors)
			}
		})
	}
}

func TestAuthenticatorOptional(t *testing.T) {
	router, _ := newAuthRouter(t)

	for token, want := range map[string]bool{"": false, "good": true, "bad": false} {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":`+map[bool]string{true: "true", false: "false"}[want])
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(quietLogger()))
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperror.Conflict("user with email or username already exists"))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("driver exploded"))
	})
	r.GET("/silent", func(c *gin.Context) {})
	r.GET("/written", func(c *gin.Context) {
		response.OK(c, nil, "fine")
		_ = c.Error(errors.New("late"))
	})

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := serve("/conflict")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user with email or username already exists", decodeError(t, w).Message)

	w = serve("/plain")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "something went wrong", decodeError(t, w).Message)
	assert.NotContains(t, w.Body.String(), "driver exploded")

	w = serve("/silent")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = serve("/written")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"fine"`)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(quietLogger()), ErrorHandler(quietLogger()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, []string{}, body.Errors)
}

func TestNotFoundRoute(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFound())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "route not found", decodeError(t, w).Message)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "limits are per client")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, 1)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { response.OK(c, nil, "ok") })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8, 1024))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"far too long"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
