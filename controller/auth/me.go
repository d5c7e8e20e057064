package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/services"
)

func MeController(router gin.IRouter, creds *services.CredentialService) {
	router.GET("/me", middleware.AccessTokenMiddleware(creds), Me)
}

// Me needs no store access: the middleware already loaded the caller.
func Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
