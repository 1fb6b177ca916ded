package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-auth-service/pkg/utils"
)

const DefaultMaxRequestSize = 1 << 20

const bodyTooLargeMessage = "Request body too large"

// RequestSizeLimitMiddleware caps request bodies at maxSize bytes. Bodies
// that declare a larger Content-Length are refused before any read; chunked
// bodies hit the cap while being decoded, see IsBodyTooLarge.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, bodyTooLargeMessage)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsBodyTooLarge reports whether a bind error came from the size cap.
func IsBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// RespondBindError writes 413 for bodies over the cap and 400 for anything
// else that failed to decode.
func RespondBindError(c *gin.Context, err error) {
	if IsBodyTooLarge(err) {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, bodyTooLargeMessage)
		return
	}
	utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
}
