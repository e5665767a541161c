package middleware

import (
	"net/http"
	"strings"

	"propostas/internal/apierror"
	"propostas/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is the gin context key holding *JWTClaims.
const ClaimsKey = "claims"

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UsuarioID int64  `json:"usuario_id"`
	Nome      string `json:"nome"`
	Role      string `json:"role"`
	UnidadeID *int64 `json:"unidade_id"`
	jwt.RegisteredClaims
}

// Principal converts the verified claims into the service-level caller.
func (c *JWTClaims) Principal() *model.Principal {
	if c == nil {
		return nil
	}
	return &model.Principal{UsuarioID: c.UsuarioID, Nome: c.Nome, Role: c.Role, UnidadeID: c.UnidadeID}
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(c *gin.Context) (string, bool) {
	tok, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return strings.TrimSpace(tok), ok && strings.TrimSpace(tok) != ""
}

// JWTAuth verifies the HS256 access token and stores its claims under
// ClaimsKey. Tokens without a user id are rejected.
func JWTAuth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	key := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação requerida"))
			return
		}
		claims := &JWTClaims{}
		if _, err := parser.ParseWithClaims(tok, claims, key); err != nil || claims.UsuarioID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permissões insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified claims, or nil outside JWTAuth.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
