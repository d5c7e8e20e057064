package services

import (
	"context"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskhub/model"
)

const (
	MaxImageSize int64 = 5 << 20
	MaxFileSize  int64 = 10 << 20

	// MaxUploadsPerKind bounds images and files accepted by task creation.
	MaxUploadsPerKind = 5

	imageFolder = "task-images"
	fileFolder  = "task-files"
)

// Upload is one attachment payload as received from a client.
type Upload struct {
	Kind        AttachmentKind
	FileName    string
	ContentType string
	Data        []byte
}

// uploaded pairs an Upload with the remote object it produced.
type uploaded struct {
	Upload
	object *StoredObject
}

type AttachmentService struct {
	logger  zerolog.Logger
	objects ObjectStore
	tasks   TaskStore
	now     func() time.Time
}

func NewAttachmentService(logger zerolog.Logger, objects ObjectStore, tasks TaskStore) *AttachmentService {
	return &AttachmentService{
		logger:  logger,
		objects: objects,
		tasks:   tasks,
		now:     time.Now,
	}
}

// Validate checks size and type limits. For files without a usable
// declared content type it fills one in by sniffing the payload.
func (s *AttachmentService) Validate(u *Upload) error {
	switch u.Kind {
	case AttachmentImage:
		if len(u.Data) == 0 {
			return invalid("No image uploaded")
		}
		if int64(len(u.Data)) > MaxImageSize {
			return invalid("Image %q exceeds the 5MB limit", u.FileName)
		}
		detected := mimetype.Detect(u.Data)
		if !strings.HasPrefix(detected.String(), "image/") {
			return invalid("Only image files are allowed!")
		}
		if !strings.HasPrefix(u.ContentType, "image/") {
			u.ContentType = detected.String()
		}
	case AttachmentFile:
		if len(u.Data) == 0 {
			return invalid("No file uploaded")
		}
		if int64(len(u.Data)) > MaxFileSize {
			return invalid("File %q exceeds the 10MB limit", u.FileName)
		}
		if u.ContentType == "" || u.ContentType == "application/octet-stream" {
			u.ContentType = mimetype.Detect(u.Data).String()
		}
	default:
		return invalid("Unknown attachment kind %q", u.Kind)
	}
	return nil
}

// Attach uploads u and records it on task. The task is only changed and
// saved after the upload is confirmed.
func (s *AttachmentService) Attach(ctx context.Context, task *model.Task, u Upload) error {
	if err := s.Validate(&u); err != nil {
		return err
	}

	obj, err := s.put(ctx, u)
	if err != nil {
		return err
	}

	s.record(task, uploaded{Upload: u, object: obj})
	task.UpdatedAt = s.now()
	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.TaskID).
			Str("public_id", obj.PublicID).
			Msg("uploaded object could not be recorded on task")
		return err
	}

	s.logger.Info().
		Str("task_id", task.TaskID).
		Str("kind", string(u.Kind)).
		Str("public_id", obj.PublicID).
		Msg("attached object to task")
	return nil
}

// Detach removes an attachment record. The remote delete is best-effort;
// the record is dropped even when it fails.
func (s *AttachmentService) Detach(ctx context.Context, task *model.Task, kind AttachmentKind, attachmentID string) error {
	var publicID string
	switch kind {
	case AttachmentImage:
		i := slices.IndexFunc(task.Images, func(img model.Image) bool { return img.ID == attachmentID })
		if i < 0 {
			return ErrAttachmentNotFound
		}
		publicID = task.Images[i].PublicID
		task.Images = slices.Delete(task.Images, i, i+1)
	case AttachmentFile:
		i := slices.IndexFunc(task.Files, func(f model.File) bool { return f.ID == attachmentID })
		if i < 0 {
			return ErrAttachmentNotFound
		}
		publicID = task.Files[i].PublicID
		task.Files = slices.Delete(task.Files, i, i+1)
	default:
		return invalid("Unknown attachment kind %q", kind)
	}

	s.deleteRemote(ctx, publicID, kind)

	task.UpdatedAt = s.now()
	if err := s.tasks.Save(ctx, task); err != nil {
		return err
	}

	s.logger.Info().
		Str("task_id", task.TaskID).
		Str("kind", string(kind)).
		Str("attachment_id", attachmentID).
		Msg("detached object from task")
	return nil
}

// UploadAll validates every upload and then uploads them one by one. The
// first failure stops the rest, and objects already uploaded for this call
// are deleted again.
func (s *AttachmentService) UploadAll(ctx context.Context, uploads []Upload) ([]model.Image, []model.File, error) {
	for i := range uploads {
		if err := s.Validate(&uploads[i]); err != nil {
			return nil, nil, err
		}
	}

	done := make([]uploaded, 0, len(uploads))
	for _, u := range uploads {
		obj, err := s.put(ctx, u)
		if err != nil {
			s.discard(ctx, done)
			return nil, nil, err
		}
		done = append(done, uploaded{Upload: u, object: obj})
	}

	var scratch model.Task
	for _, u := range done {
		s.record(&scratch, u)
	}
	return scratch.Images, scratch.Files, nil
}

// Purge deletes the remote objects of every file and image on task, each
// once. Failures are logged and do not stop the purge.
func (s *AttachmentService) Purge(ctx context.Context, task *model.Task) {
	for _, f := range task.Files {
		s.deleteRemote(ctx, f.PublicID, AttachmentFile)
	}
	for _, img := range task.Images {
		s.deleteRemote(ctx, img.PublicID, AttachmentImage)
	}
}

// Discard removes the remote objects behind records that never made it
// into a saved task.
func (s *AttachmentService) Discard(ctx context.Context, images []model.Image, files []model.File) {
	s.Purge(ctx, &model.Task{Images: images, Files: files})
}

func (s *AttachmentService) put(ctx context.Context, u Upload) (*StoredObject, error) {
	key := path.Join(folderFor(u.Kind), uuid.New().String()+strings.ToLower(path.Ext(u.FileName)))
	obj, err := s.objects.Upload(ctx, key, u.ContentType, u.Data)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key", key).
			Msg("failed to upload object")
		return nil, withCause(ErrUploadFailed, err)
	}
	return obj, nil
}

func (s *AttachmentService) record(task *model.Task, u uploaded) {
	now := s.now()
	switch u.Kind {
	case AttachmentImage:
		task.Images = append(task.Images, model.Image{
			ID:         uuid.New().String(),
			URL:        u.object.URL,
			PublicID:   u.object.PublicID,
			UploadedAt: now,
		})
	case AttachmentFile:
		task.Files = append(task.Files, model.File{
			ID:         uuid.New().String(),
			URL:        u.object.URL,
			PublicID:   u.object.PublicID,
			FileName:   u.FileName,
			FileType:   u.ContentType,
			FileSize:   int64(len(u.Data)),
			UploadedAt: now,
		})
	}
}

func (s *AttachmentService) discard(ctx context.Context, done []uploaded) {
	for _, u := range done {
		s.deleteRemote(ctx, u.object.PublicID, u.Kind)
	}
}

func (s *AttachmentService) deleteRemote(ctx context.Context, publicID string, kind AttachmentKind) {
	if publicID == "" {
		return
	}
	if err := s.objects.Delete(ctx, publicID, kind); err != nil {
		s.logger.Warn().
			Err(err).
			Str("public_id", publicID).
			Str("kind", string(kind)).
			Msg("failed to delete remote object")
	}
}

func folderFor(kind AttachmentKind) string {
	if kind == AttachmentImage {
		return imageFolder
	}
	return fileFolder
}
