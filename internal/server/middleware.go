package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ginjaninja78/survey-xml-converter/internal/logger"
)

const requestIDKey = "request_id"

// requestIDMiddleware tags every request with an id, reusing X-Request-ID
// when the client sends one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// loggerMiddleware logs one line per request.
func loggerMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		line := "%s %s %d %s [%s]"
		args := []interface{}{c.Request.Method, path, status, time.Since(start).Round(time.Microsecond), requestID(c)}
		if err := c.Errors.Last(); err != nil {
			line += " %v"
			args = append(args, err.Err)
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error(line, args...)
		case status >= http.StatusBadRequest:
			log.Warn(line, args...)
		default:
			log.Debug(line, args...)
		}
	}
}

// recoveryMiddleware turns a handler panic into a 500 JSON response.
func recoveryMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic in %s %s [%s]: %v\n%s", c.Request.Method, c.Request.URL.Path, requestID(c), r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Erro interno do servidor",
					"request_id": requestID(c),
				})
			}
		}()
		c.Next()
	}
}

// uploadBurst is the number of uploads accepted back to back.
const uploadBurst = 5

// uploadLimiter answers 429 once uploads exceed perMinute. The limit is
// shared by every route it is attached to.
func uploadLimiter(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), uploadBurst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			sendError(c, http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// sendError writes a JSON error and attaches it to the request log line.
func sendError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		c.Error(err)
	}
	c.JSON(status, gin.H{"error": message})
}
