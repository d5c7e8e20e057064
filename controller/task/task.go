package task

import (
	"github.com/gin-gonic/gin"

	"taskhub/middleware"
	"taskhub/model"
	"taskhub/services"
)

// TaskController mounts the task routes. Every route needs a session;
// creating also needs a non-student role.
func TaskController(router gin.IRouter, creds *services.CredentialService, tasks *services.TaskService) {
	routes := router.Group("", middleware.AccessTokenMiddleware(creds))
	{
		routes.POST("/create",
			middleware.RoleMiddleware("Students cannot create tasks", model.RoleStaff, model.RoleManager),
			func(c *gin.Context) {
				CreateTask(c, tasks)
			})
		routes.GET("/get", func(c *gin.Context) {
			GetTasks(c, tasks)
		})
		routes.PUT("/:id/status", func(c *gin.Context) {
			UpdateTaskStatus(c, tasks)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTask(c, tasks)
		})
		routes.POST("/:id/images", func(c *gin.Context) {
			AddAttachment(c, tasks, services.AttachmentImage)
		})
		routes.POST("/:id/files", func(c *gin.Context) {
			AddAttachment(c, tasks, services.AttachmentFile)
		})
		routes.DELETE("/:id/images/:attachmentId", func(c *gin.Context) {
			RemoveAttachment(c, tasks, services.AttachmentImage)
		})
		routes.DELETE("/:id/files/:attachmentId", func(c *gin.Context) {
			RemoveAttachment(c, tasks, services.AttachmentFile)
		})
	}
}
