package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"taskhub/model"
	"taskhub/services"
)

const userCtxKey = "user"

// AccessTokenMiddleware resolves the bearer token to a user loaded fresh
// from the store and puts it on the context.
func AccessTokenMiddleware(creds *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if header == "" || !ok {
			AbortWithError(c, services.ErrMissingSession)
			return
		}

		user, err := creds.VerifySession(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(userCtxKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by AccessTokenMiddleware.
func CurrentUser(c *gin.Context) *model.User {
	return c.MustGet(userCtxKey).(*model.User)
}

// RoleMiddleware lets only the listed roles through.
func RoleMiddleware(message string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(userCtxKey)
		if !exists {
			AbortWithError(c, services.ErrMissingSession)
			return
		}
		user := value.(*model.User)
		if !slices.Contains(roles, user.Role) {
			AbortWithMessage(c, http.StatusForbidden, message)
			return
		}
		c.Next()
	}
}

func ManagerMiddleware() gin.HandlerFunc {
	return RoleMiddleware("Access denied. Managers only.", model.RoleManager)
}
