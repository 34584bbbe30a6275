package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"

	contextLogger = "logger"
)

// RequestID tags the request with the caller's X-Request-ID, or a fresh uuid,
// and stores a log entry carrying it for Logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextRequestID, requestID)
		c.Set(contextLogger, log.WithField("request_id", requestID))
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// Logger returns the request-scoped log entry, falling back to the standard
// logger when RequestID is not installed.
func Logger(c *gin.Context) *log.Entry {
	if v, ok := c.Get(contextLogger); ok {
		if entry, ok := v.(*log.Entry); ok {
			return entry
		}
	}
	return log.NewEntry(log.StandardLogger())
}
