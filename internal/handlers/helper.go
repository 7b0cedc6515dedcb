package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseUintParam parses a numeric path parameter, responding 400 itself on
// failure. Callers check the second return before proceeding.
func ParseUintParam(c *gin.Context, param string) (uint, bool) {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// CurrentUserID reads the authenticated user set by the identity middleware.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Missing user identity",
		})
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid user identity",
		})
		return 0, false
	}
	return userID, true
}
