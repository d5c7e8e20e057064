package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskhub/model"
)

type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     string
	AssignedTo  string
	Priority    string
	Uploads     []Upload
}

// TaskView is a task with its creator and assignee resolved. Either user
// may be nil when the referenced account no longer exists.
type TaskView struct {
	Task     *model.Task
	Creator  *model.User
	Assignee *model.User
}

// CreatedTask reports whether the assignment email went out alongside the
// created task.
type CreatedTask struct {
	TaskView
	Notified bool
}

type TaskService struct {
	logger      zerolog.Logger
	tasks       TaskStore
	users       UserStore
	attachments *AttachmentService
	notifier    *Notifier
	now         func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	tasks TaskStore,
	users UserStore,
	attachments *AttachmentService,
	notifier *Notifier,
) *TaskService {
	return &TaskService{
		logger:      logger,
		tasks:       tasks,
		users:       users,
		attachments: attachments,
		notifier:    notifier,
		now:         time.Now,
	}
}

// CreateTask validates and authorizes before touching remote storage. The
// assignment email is sent after the task is saved; a failed email does not
// undo the task.
func (s *TaskService) CreateTask(ctx context.Context, actor *model.User, in CreateTaskInput) (*CreatedTask, error) {
	if d := Authorize(actor, ActionCreate, Target{}); !d.Allowed {
		return nil, denied(d.Reason)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)
	if in.Title == "" || in.Description == "" || in.DueDate == "" || in.AssignedTo == "" {
		return nil, invalid("All fields are required")
	}
	if !ValidID(in.AssignedTo) {
		return nil, invalid("Invalid assignedTo id")
	}

	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = model.PriorityLow
	}
	if !model.ValidPriority(priority) {
		return nil, invalid("Invalid priority value")
	}

	dueDate, err := ParseDueDate(in.DueDate)
	if err != nil {
		return nil, invalid("Invalid dueDate")
	}

	var imageCount, fileCount int
	for _, u := range in.Uploads {
		if u.Kind == AttachmentImage {
			imageCount++
		} else {
			fileCount++
		}
	}
	if imageCount > MaxUploadsPerKind || fileCount > MaxUploadsPerKind {
		return nil, invalid("At most %d images and %d files are allowed", MaxUploadsPerKind, MaxUploadsPerKind)
	}

	assignee, err := s.users.FindByID(ctx, in.AssignedTo)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, err
	}

	if d := Authorize(actor, ActionCreate, Target{AssigneeRole: assignee.Role}); !d.Allowed {
		s.logger.Info().
			Str("actor_id", actor.UserID).
			Str("assignee_id", assignee.UserID).
			Msg(d.Reason)
		return nil, denied(d.Reason)
	}

	images, files, err := s.attachments.UploadAll(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := &model.Task{
		TaskID:      uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusPending,
		Priority:    priority,
		DueDate:     dueDate,
		AssignedTo:  assignee.UserID,
		CreatedBy:   actor.UserID,
		Images:      nonNil(images),
		Files:       nonNil(files),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.attachments.Discard(ctx, images, files)
		return nil, err
	}
	s.logger.Info().
		Str("task_id", task.TaskID).
		Str("created_by", actor.UserID).
		Str("assigned_to", assignee.UserID).
		Int("images", len(images)).
		Int("files", len(files)).
		Msg("created task")

	created := &CreatedTask{
		TaskView: TaskView{Task: task, Creator: actor, Assignee: assignee},
	}
	if err := s.notifier.TaskAssigned(ctx, assignee, task); err != nil {
		s.logger.Warn().
			Err(err).
			Str("task_id", task.TaskID).
			Msg("task created but assignment email failed")
	} else {
		created.Notified = true
	}
	return created, nil
}

// ListTasks returns the tasks actor may see, oldest first.
func (s *TaskService) ListTasks(ctx context.Context, actor *model.User) ([]TaskView, error) {
	var (
		tasks []model.Task
		err   error
	)
	switch actor.Role {
	case model.RoleManager:
		tasks, err = s.tasks.ListAll(ctx)
	case model.RoleStaff:
		tasks, err = s.tasks.ListInvolving(ctx, actor.UserID)
	case model.RoleStudent:
		tasks, err = s.tasks.ListAssignedTo(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	users := make(map[string]*model.User)
	lookup := func(userID string) (*model.User, error) {
		if u, ok := users[userID]; ok {
			return u, nil
		}
		u, err := s.users.FindByID(ctx, userID)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		users[userID] = u
		return u, nil
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		if !Authorize(actor, ActionReadList, TaskTarget(task)).Allowed {
			continue
		}
		creator, err := lookup(task.CreatedBy)
		if err != nil {
			return nil, err
		}
		assignee, err := lookup(task.AssignedTo)
		if err != nil {
			return nil, err
		}
		views = append(views, TaskView{Task: task, Creator: creator, Assignee: assignee})
	}
	return views, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, actor *model.User, taskID, status string) (*model.Task, error) {
	if !ValidID(taskID) {
		return nil, invalid("Invalid task ID")
	}
	if !model.ValidStatus(status) {
		return nil, invalid("Invalid status value")
	}

	task, err := s.authorizedTask(ctx, actor, taskID, ActionUpdateStatus)
	if err != nil {
		return nil, err
	}

	task.Status = status
	task.UpdatedAt = s.now()
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("task_id", taskID).
		Str("status", status).
		Msg("updated task status")
	return task, nil
}

// DeleteTask removes the remote objects of every attachment and then the
// task record.
func (s *TaskService) DeleteTask(ctx context.Context, actor *model.User, taskID string) error {
	if !ValidID(taskID) {
		return invalid("Invalid task ID")
	}

	task, err := s.authorizedTask(ctx, actor, taskID, ActionDelete)
	if err != nil {
		return err
	}

	s.attachments.Purge(ctx, task)
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.logger.Info().
		Str("task_id", taskID).
		Str("actor_id", actor.UserID).
		Msg("deleted task")
	return nil
}

func (s *TaskService) AddAttachment(ctx context.Context, actor *model.User, taskID string, u Upload) (*model.Task, error) {
	if !ValidID(taskID) {
		return nil, invalid("Invalid task ID")
	}

	task, err := s.authorizedTask(ctx, actor, taskID, ActionAddAttachment)
	if err != nil {
		return nil, err
	}

	if err := s.attachments.Attach(ctx, task, u); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) RemoveAttachment(ctx context.Context, actor *model.User, taskID string, kind AttachmentKind, attachmentID string) (*model.Task, error) {
	if !ValidID(taskID) {
		return nil, invalid("Invalid task ID")
	}

	task, err := s.authorizedTask(ctx, actor, taskID, ActionRemoveAttachment)
	if err != nil {
		return nil, err
	}

	if err := s.attachments.Detach(ctx, task, kind, attachmentID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) authorizedTask(ctx context.Context, actor *model.User, taskID string, action Action) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, action, TaskTarget(task)); !d.Allowed {
		s.logger.Info().
			Str("actor_id", actor.UserID).
			Str("task_id", taskID).
			Str("action", string(action)).
			Msg("denied")
		return nil, denied(d.Reason)
	}
	return task, nil
}

var dueDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDueDate accepts a calendar date or a timestamp.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var err error
	for _, layout := range dueDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// ValidID reports whether id is a canonical lowercase uuid, the only form
// ids are stored in.
func ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
