package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the id of a request. A valid id sent by the client is kept.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key of the request id.
const requestIDKey = "request_id"

// requestID assigns an id to every request and returns it in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs every request with its status and duration once it is handled.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "request handled",
			logging.KeyMethod, c.Request.Method,
			logging.KeyRoute, c.FullPath(),
			logging.KeyStatus, c.Writer.Status(),
			logging.KeyRequestID, c.GetString(requestIDKey),
			logging.KeyRemote, c.ClientIP(),
			logging.KeyDuration, time.Since(start).Milliseconds())
	}
}

// rateLimit rejects requests beyond rps requests per second, allowing bursts of burst requests.
func rateLimit(rps int, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = 10
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.WarnContext(c.Request.Context(), "rate limit exceeded",
				logging.KeyRoute, c.Request.URL.Path,
				logging.KeyRemote, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
			return
		}
		c.Next()
	}
}

// WithCORS wraps handler so that browsers on the given comma separated origins may call the API.
func WithCORS(handler http.Handler, allowedOrigins string) http.Handler {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	}).Handler(handler)
}
