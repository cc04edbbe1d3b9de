package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"toolboard/config"
	"toolboard/utils"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clickLimMu sync.Mutex
	clickLims  = make(map[string]*ipLimiter)
)

// ClickRateLimit throttles click recording per client IP so a single
// visitor cannot inflate the counters. The limit comes from configuration.
func ClickRateLimit() gin.HandlerFunc {
	perMinute := config.Get().ClickRatePerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := max(perMinute/6, 1)

	go func() {
		for range time.Tick(10 * time.Minute) {
			clickLimMu.Lock()
			for ip, l := range clickLims {
				if time.Since(l.lastSeen) > 30*time.Minute {
					delete(clickLims, ip)
				}
			}
			clickLimMu.Unlock()
		}
	}()

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()

		clickLimMu.Lock()
		l, ok := clickLims[ip]
		if !ok {
			l = &ipLimiter{limiter: rate.NewLimiter(limit, burst)}
			clickLims[ip] = l
		}
		l.lastSeen = time.Now()
		clickLimMu.Unlock()

		if !l.limiter.Allow() {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "too many clicks, slow down")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
