package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/services"
)

func CaptchaController(router gin.IRouter, verifier services.CaptchaVerifier) {
	router.POST("/captcha", func(c *gin.Context) {
		VerifyCaptcha(c, verifier)
	})
}

func VerifyCaptcha(c *gin.Context, verifier services.CaptchaVerifier) {
	var req dto.CaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Token is required")
		return
	}

	result, err := verifier.Verify(c.Request.Context(), req.Token, req.Action, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	if result == nil {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "reCAPTCHA verification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"score":   result.Score,
		"action":  result.Action,
		"reasons": result.Reasons,
		"message": "Captcha verified successfully",
	})
}
