package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/model"
	"taskhub/services"
)

func UserController(router gin.IRouter, creds *services.CredentialService, users services.UserStore) {
	routes := router.Group("", middleware.AccessTokenMiddleware(creds))
	{
		routes.GET("/", middleware.ManagerMiddleware(), func(c *gin.Context) {
			GetAllUsers(c, users)
		})
		routes.GET("/staff", middleware.ManagerMiddleware(), func(c *gin.Context) {
			GetStaffUsers(c, users)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetSingleUser(c, users)
		})
	}
}

func GetAllUsers(c *gin.Context, users services.UserStore) {
	all, err := users.List(c.Request.Context(), "")
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.NewUserResponses(all)})
}

func GetStaffUsers(c *gin.Context, users services.UserStore) {
	staff, err := users.List(c.Request.Context(), model.RoleStaff)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": dto.NewUserResponses(staff)})
}

func GetSingleUser(c *gin.Context, users services.UserStore) {
	id := c.Param("id")
	if !services.ValidID(id) {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	found, err := users.FindByID(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.NewUserResponse(found)})
}
