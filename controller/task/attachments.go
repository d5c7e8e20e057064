package task

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/dto"
	"taskhub/middleware"
	"taskhub/services"
)

var (
	addedMessages = map[services.AttachmentKind]string{
		services.AttachmentImage: "Image uploaded successfully",
		services.AttachmentFile:  "file added successfully",
	}
	removedMessages = map[services.AttachmentKind]string{
		services.AttachmentImage: "Image deleted successfully",
		services.AttachmentFile:  "File deleted successfully",
	}
	// single-upload form field per kind
	formFields = map[services.AttachmentKind]string{
		services.AttachmentImage: "image",
		services.AttachmentFile:  "file",
	}
)

func AddAttachment(c *gin.Context, tasks *services.TaskService, kind services.AttachmentKind) {
	fh, err := c.FormFile(formFields[kind])
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			middleware.AbortWithMessage(c, http.StatusBadRequest, "No "+string(kind)+" uploaded")
			return
		}
		middleware.AbortWithMessage(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	upload, err := readUpload(fh, kind)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	task, err := tasks.AddAttachment(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), upload)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": addedMessages[kind],
		"task":    dto.NewTaskResponse(task),
	})
}

func RemoveAttachment(c *gin.Context, tasks *services.TaskService, kind services.AttachmentKind) {
	task, err := tasks.RemoveAttachment(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), kind, c.Param("attachmentId"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": removedMessages[kind],
		"task":    dto.NewTaskResponse(task),
	})
}

// readMultipartUploads collects the "images" and "files" parts of a create
// request. A request that is not multipart simply has no uploads.
func readMultipartUploads(c *gin.Context) ([]services.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, &services.Error{Kind: services.KindValidation, Msg: "Invalid multipart form", Err: err}
	}

	images, files := form.File["images"], form.File["files"]
	if len(images) > services.MaxUploadsPerKind || len(files) > services.MaxUploadsPerKind {
		return nil, &services.Error{Kind: services.KindValidation, Msg: "At most 5 images and 5 files are allowed"}
	}

	uploads := make([]services.Upload, 0, len(images)+len(files))
	for _, fh := range images {
		u, err := readUpload(fh, services.AttachmentImage)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	for _, fh := range files {
		u, err := readUpload(fh, services.AttachmentFile)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader, kind services.AttachmentKind) (services.Upload, error) {
	limit := services.MaxFileSize
	if kind == services.AttachmentImage {
		limit = services.MaxImageSize
	}
	if fh.Size > limit {
		return services.Upload{}, &services.Error{
			Kind: services.KindValidation,
			Msg:  "File too large: " + fh.Filename,
		}
	}

	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, &services.Error{Kind: services.KindValidation, Msg: "Failed to read upload", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return services.Upload{}, &services.Error{Kind: services.KindValidation, Msg: "Failed to read upload", Err: err}
	}

	return services.Upload{
		Kind:        kind,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
