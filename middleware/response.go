package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/services"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes err as {"success": false, "message": ...} and stops
// the handler chain. Causes stay in the server log.
func AbortWithError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": services.Message(err),
	})
}

func AbortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
