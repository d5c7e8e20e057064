package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/services"
)

func CreateTask(c *gin.Context, tasks *services.TaskService) {
	actor := middleware.CurrentUser(c)

	var form dto.CreateTaskForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Invalid input")
		return
	}

	uploads, err := readMultipartUploads(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	created, err := tasks.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.DueDate,
		AssignedTo:  form.AssignedTo,
		Priority:    form.Priority,
		Uploads:     uploads,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	message := "Task created successfully + email sent successfully"
	if !created.Notified {
		message = "Task created successfully, but the notification email could not be sent"
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"task":    dto.NewTaskViewResponse(created.TaskView),
	})
}

func GetTasks(c *gin.Context, tasks *services.TaskService) {
	views, err := tasks.ListTasks(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(views),
		"tasks":   dto.NewTaskViewResponses(views),
	})
}

func UpdateTaskStatus(c *gin.Context, tasks *services.TaskService) {
	var request dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Invalid status value")
		return
	}

	task, err := tasks.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), request.Status)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task status updated",
		"task":    dto.NewTaskResponse(task),
	})
}

func DeleteTask(c *gin.Context, tasks *services.TaskService) {
	if err := tasks.DeleteTask(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}
