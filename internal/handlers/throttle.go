package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/matelog-ae/course-service/internal/utils"
)

const (
	answerThrottleLimit  = 100
	answerThrottleWindow = time.Minute
)

// AnswerThrottle caps answer submissions per user with a fixed window counter
// in Redis. Redis being down fails open; grading must not depend on it.
func AnswerThrottle(client *redis.Client, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}

		window := time.Now().Unix() / int64(answerThrottleWindow.Seconds())
		key := fmt.Sprintf("throttle:validate:%v:%d", userID, window)

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("throttle counter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, answerThrottleWindow)
		}
		if count > answerThrottleLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Message: "Too many answer submissions, slow down",
			})
			return
		}

		c.Next()
	}
}
