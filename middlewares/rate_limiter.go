package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	redisclient "github.com/courtbook/courtbook/config/redis"
	"github.com/courtbook/courtbook/logger"
)

// rateLimitKey prefers the authenticated user; anonymous traffic is limited
// per client IP.
func rateLimitKey(c *gin.Context) string {
	if sub, exists := c.Get("sub"); exists {
		if s, ok := sub.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}

func createRedisStore(routeID string, period time.Duration) (limiter.Store, error) {
	rdb, err := redisclient.GetRedisClient(context.Background())
	if err != nil {
		return nil, err
	}
	return redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	})
}

// ParseCustomRate parses rates like "10-2m", "30-1h", or "5-30s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	unit := durationStr[len(durationStr)-1:]
	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	var period time.Duration
	switch unit {
	case "s":
		period = time.Duration(n) * time.Second
	case "m":
		period = time.Duration(n) * time.Minute
	case "h":
		period = time.Duration(n) * time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	return limiter.Rate{Period: period, Limit: int64(limit)}, nil
}

// NewRateLimiter limits a route with a custom rate like "10-1m", keyed by
// user or client IP. When Redis is unavailable the middleware passes traffic
// through rather than taking the API down.
func NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid rate %q for route %s: %v", rateStr, routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := createRedisStore(routeID, rate.Period)
	if err != nil {
		logger.WarnLogger.Warnf("Rate limiting disabled for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	instance := limiter.New(store, rate)
	return ginmiddleware.NewMiddleware(instance, ginmiddleware.WithKeyGetter(rateLimitKey))
}

// CombinedRateLimiter stacks several rates on one route, e.g. a burst limit
// and a sustained limit. The request aborts as soon as any limit trips.
func CombinedRateLimiter(routeID string, rateStrings ...string) gin.HandlerFunc {
	limiters := make([]gin.HandlerFunc, len(rateStrings))
	for i, rateStr := range rateStrings {
		limiters[i] = NewRateLimiter(rateStr, fmt.Sprintf("%s_%d", routeID, i))
	}

	return func(c *gin.Context) {
		for _, handler := range limiters {
			handler(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
