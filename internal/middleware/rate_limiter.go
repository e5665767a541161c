package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"propostas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed window per IP ───────────────────────────────────────────────────────

// ipEntry tracks requests from one IP within the current window.
type ipEntry struct {
	count     int
	windowEnd time.Time
}

// janela counts requests per IP. Expired entries are purged lazily every
// purgeInterval so IPs that never return do not accumulate.
type janela struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	entries   map[string]*ipEntry
	nextPurge time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func novaJanela(limit int, window time.Duration) *janela {
	return &janela{limit: limit, window: window, entries: make(map[string]*ipEntry), now: time.Now}
}

// permitir registers one request and reports whether it is within the limit,
// plus the end of the current window.
func (j *janela) permitir(ip string) (bool, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if now.After(j.nextPurge) {
		j.purgar(now)
		j.nextPurge = now.Add(purgeInterval)
	}

	e, ok := j.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &ipEntry{windowEnd: now.Add(j.window)}
		j.entries[ip] = e
	}
	e.count++
	return e.count <= j.limit, e.windowEnd
}

func (j *janela) purgar(now time.Time) {
	purged := 0
	for ip, e := range j.entries {
		if now.After(e.windowEnd) {
			delete(j.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(j.entries)).Msg("rate limiter entries purged")
	}
}

func (j *janela) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fim := j.permitir(c.ClientIP())
		if !ok {
			secs := int(time.Until(fim).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return novaJanela(20, time.Minute).handler("Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter is the general API limiter: limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return novaJanela(limit, window).handler("Muitas requisições. Tente novamente em instantes.")
}
