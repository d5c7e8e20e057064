package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"taskhub/memstore"
	"taskhub/model"
	"taskhub/services"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fixture struct {
	users   *memstore.UserStore
	tasks   *memstore.TaskStore
	objects *memstore.ObjectStore
	mailer  *memstore.Mailer

	creds       *services.CredentialService
	attachments *services.AttachmentService
	taskService *services.TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	f := &fixture{
		users:   memstore.NewUserStore(),
		tasks:   memstore.NewTaskStore(),
		objects: memstore.NewObjectStore("https://objects.test"),
		mailer:  memstore.NewMailer(),
	}
	tokens := services.NewTokenIssuer("test-secret", "taskhub", time.Hour)
	f.creds = services.NewCredentialService(logger, f.users, tokens).WithHashCost(bcrypt.MinCost)
	f.attachments = services.NewAttachmentService(logger, f.objects, f.tasks)
	f.taskService = services.NewTaskService(logger, f.tasks, f.users, f.attachments, services.NewNotifier(logger, f.mailer))
	return f
}

func (f *fixture) addUser(t *testing.T, name, role string) *model.User {
	t.Helper()
	u := model.User{
		UserID:    uuid.New().String(),
		Name:      name,
		Email:     name + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
	}
	f.users.Put(u)
	return &u
}

// addTask stores a task directly, bypassing creation rules.
func (f *fixture) addTask(t *testing.T, creator, assignee *model.User) *model.Task {
	t.Helper()
	now := time.Now()
	task := &model.Task{
		TaskID:      uuid.New().String(),
		Title:       "Read chapter 3",
		Description: "Take notes",
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
		DueDate:     now.Add(24 * time.Hour),
		AssignedTo:  assignee.UserID,
		CreatedBy:   creator.UserID,
		Images:      []model.Image{},
		Files:       []model.File{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func (f *fixture) reload(t *testing.T, taskID string) *model.Task {
	t.Helper()
	task, err := f.tasks.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("reload task %s: %v", taskID, err)
	}
	return task
}

func imageUpload(name string) services.Upload {
	return services.Upload{Kind: services.AttachmentImage, FileName: name, ContentType: "image/png", Data: pngHeader}
}

func fileUpload(name string) services.Upload {
	return services.Upload{Kind: services.AttachmentFile, FileName: name, ContentType: "text/plain", Data: []byte("hello " + name)}
}

func assertKind(t *testing.T, err error, want services.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := services.KindOf(err); got != want {
		t.Fatalf("kind: got %v, want %v (err: %v)", got, want, err)
	}
}
