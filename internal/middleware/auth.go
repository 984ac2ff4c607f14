package middleware

import (
	"github.com/gin-gonic/gin"

	"jobboard/internal/apperr"
	"jobboard/internal/service"
)

const currentUserKey = "current_user"

// Auth validates the Authorization credential on every request and stores
// the authenticated user in the context.
func Auth(auth *service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{"error": apperr.MessageOf(err)})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// AuthRefresh is Auth against the refresh secret pair, for the token
// refresh endpoint only.
func AuthRefresh(auth *service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.AuthenticateRefresh(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{"error": apperr.MessageOf(err)})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}
