package middlewares

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects writes whose Content-Type is not application/json (parameters allowed).
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || mediaType != "application/json" {
				abortWithError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}

		c.Next()
	}
}

// MaxBodyBytes refuses declared oversize bodies up front and caps the rest while they are read.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			abortWithError(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				"Request body must not exceed "+strconv.FormatInt(max, 10)+" bytes")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)

		c.Next()
	}
}
