package dto

import (
	"time"

	"taskhub/model"
	"taskhub/services"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateTaskForm is the non-file part of the create request. It binds from
// multipart, urlencoded or JSON bodies.
type CreateTaskForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	DueDate     string `form:"dueDate" json:"dueDate"`
	AssignedTo  string `form:"assignedTo" json:"assignedTo"`
	Priority    string `form:"priority" json:"priority"`
}

type ImageResponse struct {
	ID         string    `json:"_id"`
	URL        string    `json:"url"`
	PublicID   string    `json:"publicId"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type FileResponse struct {
	ID         string    `json:"_id"`
	URL        string    `json:"url"`
	PublicID   string    `json:"publicId"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// TaskResponse renders a task. CreatedBy and AssignedTo are always the
// referenced ids; Creator and Assignee are filled when the users were
// resolved.
type TaskResponse struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	DueDate     time.Time       `json:"dueDate"`
	AssignedTo  string          `json:"assignedTo"`
	CreatedBy   string          `json:"createdBy"`
	Assignee    *UserSummary    `json:"assignee,omitempty"`
	Creator     *UserSummary    `json:"creator,omitempty"`
	Images      []ImageResponse `json:"images"`
	Files       []FileResponse  `json:"files"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func NewTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.TaskID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		Images:      make([]ImageResponse, 0, len(task.Images)),
		Files:       make([]FileResponse, 0, len(task.Files)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	for _, img := range task.Images {
		resp.Images = append(resp.Images, ImageResponse{
			ID:         img.ID,
			URL:        img.URL,
			PublicID:   img.PublicID,
			UploadedAt: img.UploadedAt,
		})
	}
	for _, f := range task.Files {
		resp.Files = append(resp.Files, FileResponse{
			ID:         f.ID,
			URL:        f.URL,
			PublicID:   f.PublicID,
			FileName:   f.FileName,
			FileType:   f.FileType,
			FileSize:   f.FileSize,
			UploadedAt: f.UploadedAt,
		})
	}
	return resp
}

func NewTaskViewResponse(view services.TaskView) TaskResponse {
	resp := NewTaskResponse(view.Task)
	resp.Creator = NewUserSummary(view.Creator)
	resp.Assignee = NewUserSummary(view.Assignee)
	return resp
}

func NewTaskViewResponses(views []services.TaskView) []TaskResponse {
	out := make([]TaskResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewTaskViewResponse(v))
	}
	return out
}
