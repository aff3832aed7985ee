package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/telemetry"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const defaultRateLimitRoute = "default"

type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]config.RateLimitConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(configs map[string]config.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	copied := make(map[string]config.RateLimitConfig, len(configs)+1)
	for route, rule := range configs {
		copied[route] = rule
	}

	if _, ok := copied[defaultRateLimitRoute]; !ok {
		copied[defaultRateLimitRoute] = config.RateLimitConfig{Requests: 60, Window: time.Minute, KeyBy: config.KeyByIP}
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  copied,
		logger:  logger,
		metrics: metrics,
	}
}

// RateLimitMiddleware counts requests per "METHOD /route" and client key in
// fixed windows. It must run after Authentication so that user keyed routes
// see the caller id.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		methodRoute := c.Request.Method + " " + route
		rule := rl.rule(methodRoute)
		key, keyType := rl.key(c, methodRoute, rule)

		allowed, remaining, resetTime := rl.check(key, rule)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), route, keyType)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("route", methodRoute),
				zap.Int("limit", rule.Requests),
				zap.Duration("window", rule.Window))

			retryAfter := int(time.Until(resetTime).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			helper.SendError(c, http.StatusTooManyRequests, "RATE_LIMITED", []response.ValidationError{
				{
					Field:   "request",
					Message: fmt.Sprintf("Too many requests. Limit: %d per %v", rule.Requests, rule.Window),
				},
			}, gin.H{"retry_after": retryAfter})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), route, keyType)
		}

		c.Next()
	}
}

func (rl *RateLimiter) SetConfig(route string, rule config.RateLimitConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.config[route] = rule
}

func (rl *RateLimiter) ActiveEntries() int {
	return rl.cache.ItemCount()
}

func (rl *RateLimiter) rule(methodRoute string) config.RateLimitConfig {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if rule, ok := rl.config[methodRoute]; ok {
		return rule
	}

	return rl.config[defaultRateLimitRoute]
}

// key falls back to the client ip for anonymous callers of user keyed routes.
func (rl *RateLimiter) key(c *gin.Context, methodRoute string, rule config.RateLimitConfig) (string, string) {
	if rule.KeyBy == config.KeyByUser {
		if userID := CurrentUserID(c); userID != "" {
			return "rate_limit:" + methodRoute + ":user_" + userID, config.KeyByUser
		}
	}

	return "rate_limit:" + methodRoute + ":ip_" + GetClientIP(c), config.KeyByIP
}

func (rl *RateLimiter) check(key string, rule config.RateLimitConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if value, found := rl.cache.Get(key); found {
		entry := value.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= rule.Requests {
				return false, 0, entry.ResetTime
			}

			entry.Count++
			rl.cache.Set(key, entry, time.Until(entry.ResetTime))

			return true, rule.Requests - entry.Count, entry.ResetTime
		}
	}

	resetTime := now.Add(rule.Window)
	rl.cache.Set(key, rateLimitEntry{Count: 1, ResetTime: resetTime}, rule.Window)

	return true, rule.Requests - 1, resetTime
}

func GetClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	return "unknown"
}
