package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, or assigns a new one, and
// logs failed requests with it.
func RequestID(logger usecasecontract.IAppLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		for _, e := range c.Errors {
			logger.Errorf("request %s %s %s: %v", id, c.Request.Method, c.FullPath(), e.Err)
		}
	}
}
