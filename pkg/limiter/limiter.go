// Package limiter throttles requests per client IP with a token bucket.
package limiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func newVisitors(rps int, burst int, ttl time.Duration) *visitors {
	return &visitors{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	vis, ok := v.visitors[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.rps, v.burst)}
		v.visitors[ip] = vis
	}
	vis.lastSeen = now

	return vis.limiter
}

func (v *visitors) cleanup() {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	for ip, vis := range v.visitors {
		if now.Sub(vis.lastSeen) > v.ttl {
			delete(v.visitors, ip)
		}
	}
}

// Limit returns a middleware answering 429 once a client exceeds rps with the given burst.
// Idle clients are forgotten after ttl.
func Limit(rps int, burst int, ttl time.Duration) gin.HandlerFunc {
	v := newVisitors(rps, burst, ttl)

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for range ticker.C {
			v.cleanup()
		}
	}()

	return v.handle
}

func (v *visitors) handle(c *gin.Context) {
	if !v.get(c.ClientIP()).Allow() {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	c.Next()
}
