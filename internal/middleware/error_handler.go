package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"propostas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const msgErroInterno = "Erro interno do servidor"

// requestLog tags ev with the request id and, once JWTAuth ran, the caller.
func requestLog(c *gin.Context, ev *zerolog.Event) *zerolog.Event {
	ev = ev.Str("request_id", c.GetString(RequestIDKey))
	if cl := GetClaims(c); cl != nil {
		ev = ev.Int64("usuario_id", cl.UsuarioID)
		if cl.UnidadeID != nil {
			ev = ev.Int64("unidade_id", *cl.UnidadeID)
		}
	}
	return ev
}

// ErrorHandler answers errors handlers pushed with c.Error but did not
// write. Details stay in the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		requestLog(c, log.Error()).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Err(c.Errors.Last().Err).
			Msg("unhandled error")
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msgErroInterno))
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestLog(c, log.Error()).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msgErroInterno))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request; 5xx are logged at error level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		requestLog(c, ev).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
