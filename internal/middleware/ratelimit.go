package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP. Buckets idle for longer
// than idleTTL are dropped on the next request that sweeps.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	const idleTTL = 10 * time.Minute

	var (
		mu        sync.Mutex
		visitors  = make(map[string]*visitor)
		lastSweep = time.Now()
	)

	getVisitor := func(ip string, now time.Time) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(lastSweep) > idleTTL {
			for k, v := range visitors {
				if now.Sub(v.lastSeen) > idleTTL {
					delete(visitors, k)
				}
			}
			lastSweep = now
		}

		v, exists := visitors[ip]
		if !exists {
			v = &visitor{limiter: rate.NewLimiter(r, b)}
			visitors[ip] = v
		}
		v.lastSeen = now
		return v.limiter
	}

	return func(c *gin.Context) {
		if !getVisitor(c.ClientIP(), time.Now()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, serializer.Err(http.StatusTooManyRequests, "rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
