package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// IdentityMiddleware trusts the X-User-ID header set by the authentication
// gateway in front of this service and rejects requests without it.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing X-User-ID header",
			})
			return
		}

		userID, err := strconv.ParseUint(header, 10, 32)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid X-User-ID header",
			})
			return
		}

		c.Set("user_id", uint(userID))
		c.Next()
	}
}
