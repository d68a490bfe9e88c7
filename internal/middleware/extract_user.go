package middleware

import (
	"github.com/gin-gonic/gin"
)

// ExtractUserID re-exposes the authenticated user id as user_id_validated.
func ExtractUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			abortWithError(c, ErrInvalidToken.WithDetails("user is not authenticated"))
			return
		}

		c.Set("user_id_validated", userID)
		c.Next()
	}
}
