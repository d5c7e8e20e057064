package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/services"
)

func SignInController(router gin.IRouter, creds *services.CredentialService) {
	router.POST("/login", func(c *gin.Context) {
		Signin(c, creds)
	})
}

func Signin(c *gin.Context, creds *services.CredentialService) {
	var request dto.SigninRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := creds.Login(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(session))
}
