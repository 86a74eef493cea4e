package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RecoveryMiddleware recovers from panics.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}

// LoggerMiddleware logs one line per request through logrus.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Warn("request failed")
		default:
			entry.Info("request")
		}
	}
}

// RateLimitMiddleware allows each client IP requestsPerMinute requests per
// minute with a burst of the same size. Excess requests get 429.
func RateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	limiters := newIPLimiters(rate.Limit(float64(requestsPerMinute)/60), requestsPerMinute)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limited",
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}

// maxTrackedClients forces a sweep before the next sweep interval is due.
const maxTrackedClients = 10000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters hands out one token bucket per client. A bucket left idle for
// idleTTL has refilled completely, so dropping it loses no state.
type ipLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	clients   map[string]*clientLimiter
}

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	if burst < 1 {
		burst = 1
	}
	ttl := 10 * time.Minute
	if limit > 0 {
		ttl = max(time.Minute, time.Duration(float64(burst)/float64(limit)*float64(time.Second)))
	}
	return &ipLimiters{
		limit:     limit,
		burst:     burst,
		idleTTL:   ttl,
		now:       time.Now,
		lastSweep: time.Now(),
		clients:   make(map[string]*clientLimiter),
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL || len(l.clients) >= maxTrackedClients {
		l.sweep(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// sweep drops clients idle for at least idleTTL. Callers hold mu.
func (l *ipLimiters) sweep(now time.Time) {
	before := len(l.clients)
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
	if evicted := before - len(l.clients); evicted > 0 {
		log.WithFields(log.Fields{"evicted": evicted, "tracked": len(l.clients)}).Debug("swept idle rate limiters")
	}
}
