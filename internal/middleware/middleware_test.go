package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propostas/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func token(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func rotaProtegida(secret string, roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/p", JWTAuth(secret), RequireRole(roles...), func(c *gin.Context) {
		p := GetClaims(c).Principal()
		c.JSON(http.StatusOK, gin.H{"usuario": p.UsuarioID, "elevado": p.Elevado()})
	})
	return r
}

func get(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := rotaProtegida("s3cr3t", model.RoleSuperadmin, model.RoleUnidade)
	valido := token(t, "s3cr3t", jwt.MapClaims{
		"usuario_id": 10, "nome": "Ana", "role": "unidade", "unidade_id": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := get(r, "/p", valido)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"usuario":10,"elevado":false}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", "").Code)

	outroSegredo := token(t, "outro", jwt.MapClaims{"usuario_id": 10, "role": "unidade", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", outroSegredo).Code)

	expirado := token(t, "s3cr3t", jwt.MapClaims{"usuario_id": 10, "role": "unidade", "exp": time.Now().Add(-time.Hour).Unix()})
	w = get(r, "/p", expirado)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"detail"`)

	semExp := token(t, "s3cr3t", jwt.MapClaims{"usuario_id": 10, "role": "unidade"})
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", semExp).Code)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"usuario_id": 10, "role": "unidade", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cr3t"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/p", hs512).Code)
}

func TestRequireRole(t *testing.T) {
	r := rotaProtegida("s3cr3t", model.RoleSuperadmin)
	tok := token(t, "s3cr3t", jwt.MapClaims{"usuario_id": 10, "role": "unidade", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, http.StatusForbidden, get(r, "/p", tok).Code)

	tok = token(t, "s3cr3t", jwt.MapClaims{"usuario_id": 30, "role": "superadmin", "exp": time.Now().Add(time.Hour).Unix()})
	w := get(r, "/p", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"usuario":30,"elevado":true}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/x", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.POST("/v1/propostas", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/propostas", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/v1/propostas", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryEErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/panico", func(c *gin.Context) { panic("boom") })
	r.GET("/erro", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := get(r, "/panico", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Erro interno do servidor"}`, w.Body.String())

	w = get(r, "/erro", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestJanela(t *testing.T) {
	agora := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	j := novaJanela(2, time.Minute)
	j.now = func() time.Time { return agora }

	ok, _ := j.permitir("1.1.1.1")
	assert.True(t, ok)
	ok, _ = j.permitir("1.1.1.1")
	assert.True(t, ok)
	ok, _ = j.permitir("1.1.1.1")
	assert.False(t, ok)
	ok, _ = j.permitir("2.2.2.2")
	assert.True(t, ok)

	agora = agora.Add(61 * time.Second)
	ok, _ = j.permitir("1.1.1.1")
	assert.True(t, ok)

	agora = agora.Add(10 * time.Minute)
	j.permitir("3.3.3.3")
	assert.Len(t, j.entries, 1)
}

func TestRateLimiter_429(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimiter(1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
	w := get(r, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
