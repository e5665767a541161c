package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS applies rs/cors to gin. An origin list of "*" allows any origin
// without credentials; explicit origins allow credentials.
func CORS(origins []string) gin.HandlerFunc {
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	}
	if wildcard {
		opts.AllowedOrigins = []string{"*"}
	}
	h := cors.New(opts)

	return func(c *gin.Context) {
		h.HandlerFunc(c.Writer, c.Request)
		// preflight already answered by rs/cors
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Abort()
			return
		}
		c.Next()
	}
}
