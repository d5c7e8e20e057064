package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/services"
)

func SignUpController(router gin.IRouter, creds *services.CredentialService) {
	router.POST("/register", func(c *gin.Context) {
		Signup(c, creds)
	})
}

func Signup(c *gin.Context, creds *services.CredentialService) {
	var request dto.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Name, a valid email and a password of at least 6 characters are required")
		return
	}

	session, err := creds.Register(c.Request.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(session))
}

func newAuthResponse(session *services.Session) dto.AuthResponse {
	return dto.AuthResponse{
		ID:    session.User.UserID,
		Name:  session.User.Name,
		Email: session.User.Email,
		Role:  session.User.Role,
		Token: session.Token,
	}
}
