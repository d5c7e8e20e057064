package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taskhub/model"
	"taskhub/services"
)

func createInput(assignee *model.User) services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:       "Lab report",
		Description: "Write up experiment 4",
		DueDate:     "2025-01-01",
		AssignedTo:  assignee.UserID,
		Priority:    model.PriorityHigh,
	}
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)

	created, err := f.taskService.CreateTask(context.Background(), manager, createInput(student))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	task := created.Task
	if task.Status != model.StatusPending {
		t.Fatalf("status: got %q, want pending", task.Status)
	}
	if task.CreatedBy != manager.UserID || task.AssignedTo != student.UserID {
		t.Fatalf("unexpected participants: %+v", task)
	}
	if !task.DueDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("due date: got %v", task.DueDate)
	}
	if created.Creator.UserID != manager.UserID || created.Assignee.UserID != student.UserID {
		t.Fatal("view users not resolved")
	}
	if !created.Notified {
		t.Fatal("expected notification to be sent")
	}

	msgs := f.mailer.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages: got %d, want 1", len(msgs))
	}
	if msgs[0].To != student.Email || msgs[0].Subject != "New Task Assigned" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}
	if !strings.Contains(msgs[0].Body, "Lab report") || !strings.Contains(msgs[0].Body, "1/1/2025") {
		t.Fatalf("body missing task details: %s", msgs[0].Body)
	}

	stored := f.reload(t, task.TaskID)
	if stored.Title != "Lab report" || stored.Priority != model.PriorityHigh {
		t.Fatalf("stored task differs: %+v", stored)
	}
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	f := newFixture(t)
	staff := f.addUser(t, "staff", model.RoleStaff)
	student := f.addUser(t, "student", model.RoleStudent)

	in := createInput(student)
	in.Priority = ""
	created, err := f.taskService.CreateTask(context.Background(), staff, in)
	if err != nil {
		t.Fatal(err)
	}
	if created.Task.Priority != model.PriorityLow {
		t.Fatalf("priority: got %q, want low", created.Task.Priority)
	}
}

func TestCreateTaskStudentDenied(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, "student", model.RoleStudent)
	other := f.addUser(t, "other", model.RoleStudent)

	inputs := map[string]services.CreateTaskInput{
		"valid":            createInput(other),
		"empty":            {},
		"unknown assignee": {Title: "t", Description: "d", DueDate: "2025-01-01", AssignedTo: "not-an-id"},
		"with uploads":     {Uploads: []services.Upload{imageUpload("a.png")}},
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := f.taskService.CreateTask(context.Background(), student, in)
			assertKind(t, err, services.KindForbidden)
			if services.Message(err) != "Students cannot create tasks" {
				t.Fatalf("message: got %q", services.Message(err))
			}
		})
	}
	if f.tasks.Count() != 0 || f.objects.Len() != 0 || len(f.mailer.Messages()) != 0 {
		t.Fatal("denied create left side effects")
	}
}

func TestCreateTaskStaffRules(t *testing.T) {
	f := newFixture(t)
	staff := f.addUser(t, "staff", model.RoleStaff)
	manager := f.addUser(t, "manager", model.RoleManager)
	peer := f.addUser(t, "peer", model.RoleStaff)

	for _, assignee := range []*model.User{manager, peer} {
		in := createInput(assignee)
		in.Uploads = []services.Upload{imageUpload("a.png")}
		_, err := f.taskService.CreateTask(context.Background(), staff, in)
		assertKind(t, err, services.KindForbidden)
		if services.Message(err) != "Staff can only assign tasks to students" {
			t.Fatalf("message: got %q", services.Message(err))
		}
	}
	if f.tasks.Count() != 0 || f.objects.Len() != 0 {
		t.Fatal("denied create left side effects")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)

	tests := []struct {
		name   string
		mutate func(*services.CreateTaskInput)
		kind   services.Kind
	}{
		{"missing title", func(in *services.CreateTaskInput) { in.Title = "  " }, services.KindValidation},
		{"missing due date", func(in *services.CreateTaskInput) { in.DueDate = "" }, services.KindValidation},
		{"bad due date", func(in *services.CreateTaskInput) { in.DueDate = "next week" }, services.KindValidation},
		{"bad priority", func(in *services.CreateTaskInput) { in.Priority = "urgent" }, services.KindValidation},
		{"malformed assignee", func(in *services.CreateTaskInput) { in.AssignedTo = "12345" }, services.KindValidation},
		{"unknown assignee", func(in *services.CreateTaskInput) { in.AssignedTo = "5f0c1a52-7d1e-4a40-8f49-3f0a0b6a2c11" }, services.KindNotFound},
		{"too many images", func(in *services.CreateTaskInput) {
			for i := 0; i < services.MaxUploadsPerKind+1; i++ {
				in.Uploads = append(in.Uploads, imageUpload("a.png"))
			}
		}, services.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := createInput(student)
			tt.mutate(&in)
			_, err := f.taskService.CreateTask(context.Background(), manager, in)
			assertKind(t, err, tt.kind)
		})
	}
	if f.tasks.Count() != 0 || f.objects.Len() != 0 {
		t.Fatal("rejected create left side effects")
	}
}

func TestCreateTaskEmailFailureKeepsTask(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)
	f.mailer.Fail = true

	created, err := f.taskService.CreateTask(context.Background(), manager, createInput(student))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Notified {
		t.Fatal("Notified should be false when the mailer fails")
	}
	if f.tasks.Count() != 1 {
		t.Fatalf("tasks: got %d, want 1", f.tasks.Count())
	}
}

func TestCreateTaskUploadFailure(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)
	f.objects.FailUploadAfter = 2

	in := createInput(student)
	in.Uploads = []services.Upload{imageUpload("a.png"), fileUpload("b.txt")}
	_, err := f.taskService.CreateTask(context.Background(), manager, in)
	if !errors.Is(err, services.ErrUploadFailed) {
		t.Fatalf("got %v, want ErrUploadFailed", err)
	}
	if f.tasks.Count() != 0 {
		t.Fatal("task persisted despite upload failure")
	}
	if f.objects.Len() != 0 {
		t.Fatal("uploaded objects not cleaned up")
	}
	if len(f.mailer.Messages()) != 0 {
		t.Fatal("email sent for a task that was not created")
	}
}

func TestCreateTaskWithAttachmentsRoundTrip(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)

	in := createInput(student)
	in.Uploads = []services.Upload{
		imageUpload("a.png"), imageUpload("b.png"), imageUpload("c.png"),
		fileUpload("d.txt"), fileUpload("e.txt"),
	}
	created, err := f.taskService.CreateTask(context.Background(), manager, in)
	if err != nil {
		t.Fatal(err)
	}

	views, err := f.taskService.ListTasks(context.Background(), student)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("tasks: got %d, want 1", len(views))
	}
	got := views[0].Task
	if got.TaskID != created.Task.TaskID {
		t.Fatalf("listed task %s, want %s", got.TaskID, created.Task.TaskID)
	}
	if len(got.Images) != 3 || len(got.Files) != 2 {
		t.Fatalf("got %d images and %d files, want 3 and 2", len(got.Images), len(got.Files))
	}
	for _, img := range got.Images {
		if !f.objects.Has(img.PublicID) {
			t.Fatalf("image %s has no object", img.PublicID)
		}
	}
	for _, file := range got.Files {
		if !f.objects.Has(file.PublicID) {
			t.Fatalf("file %s has no object", file.PublicID)
		}
	}
}

func TestListTasksScope(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	staff := f.addUser(t, "staff", model.RoleStaff)
	otherStaff := f.addUser(t, "other-staff", model.RoleStaff)
	alice := f.addUser(t, "alice", model.RoleStudent)
	bob := f.addUser(t, "bob", model.RoleStudent)

	t1 := f.addTask(t, staff, alice)
	t2 := f.addTask(t, manager, bob)
	t3 := f.addTask(t, manager, staff)
	t4 := f.addTask(t, otherStaff, bob)

	tests := []struct {
		actor *model.User
		want  []string
	}{
		{manager, []string{t1.TaskID, t2.TaskID, t3.TaskID, t4.TaskID}},
		{staff, []string{t1.TaskID, t3.TaskID}},
		{otherStaff, []string{t4.TaskID}},
		{alice, []string{t1.TaskID}},
		{bob, []string{t2.TaskID, t4.TaskID}},
	}
	for _, tt := range tests {
		t.Run(tt.actor.Name, func(t *testing.T) {
			views, err := f.taskService.ListTasks(context.Background(), tt.actor)
			if err != nil {
				t.Fatal(err)
			}
			got := make(map[string]bool)
			for _, v := range views {
				got[v.Task.TaskID] = true
				if v.Creator == nil || v.Assignee == nil {
					t.Fatalf("task %s: users not resolved", v.Task.TaskID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(got), len(tt.want))
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Fatalf("missing task %s", id)
				}
			}
		})
	}
}

func TestListTasksDeletedUser(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager", model.RoleManager)
	staff := f.addUser(t, "staff", model.RoleStaff)
	student := f.addUser(t, "student", model.RoleStudent)
	f.addTask(t, staff, student)
	f.users.Remove(staff.UserID)

	views, err := f.taskService.ListTasks(context.Background(), manager)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Creator != nil || views[0].Assignee == nil {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.addUser(t, "staff", model.RoleStaff)
	student := f.addUser(t, "student", model.RoleStudent)
	outsider := f.addUser(t, "outsider", model.RoleStudent)
	task := f.addTask(t, staff, student)

	updated, err := f.taskService.UpdateStatus(ctx, student, task.TaskID, model.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Fatalf("status: got %q", updated.Status)
	}
	if f.reload(t, task.TaskID).Status != model.StatusInProgress {
		t.Fatal("status not persisted")
	}

	_, err = f.taskService.UpdateStatus(ctx, outsider, task.TaskID, model.StatusCompleted)
	assertKind(t, err, services.KindForbidden)

	_, err = f.taskService.UpdateStatus(ctx, student, task.TaskID, "done")
	assertKind(t, err, services.KindValidation)

	_, err = f.taskService.UpdateStatus(ctx, student, "bogus", model.StatusCompleted)
	assertKind(t, err, services.KindValidation)

	_, err = f.taskService.UpdateStatus(ctx, student, "5f0c1a52-7d1e-4a40-8f49-3f0a0b6a2c11", model.StatusCompleted)
	if !errors.Is(err, services.ErrTaskNotFound) {
		t.Fatalf("got %v, want ErrTaskNotFound", err)
	}

	if got := f.reload(t, task.TaskID).Status; got != model.StatusInProgress {
		t.Fatalf("status changed by rejected update: %q", got)
	}
}

func TestDeleteTaskPurgesAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)

	in := createInput(student)
	in.Uploads = []services.Upload{imageUpload("a.png"), fileUpload("b.txt"), fileUpload("c.txt")}
	created, err := f.taskService.CreateTask(ctx, manager, in)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("outsider denied", func(t *testing.T) {
		outsider := f.addUser(t, "outsider", model.RoleStaff)
		err := f.taskService.DeleteTask(ctx, outsider, created.Task.TaskID)
		assertKind(t, err, services.KindForbidden)
		if len(f.objects.Deletes()) != 0 {
			t.Fatal("denied delete touched the object store")
		}
	})

	if err := f.taskService.DeleteTask(ctx, student, created.Task.TaskID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if f.tasks.Count() != 0 {
		t.Fatal("task record still present")
	}
	deletes := f.objects.Deletes()
	if len(deletes) != 3 {
		t.Fatalf("remote deletes: got %d, want 3", len(deletes))
	}
	requested := make(map[string]int)
	for _, d := range deletes {
		requested[d.PublicID]++
	}
	for _, file := range created.Task.Files {
		if requested[file.PublicID] != 1 {
			t.Fatalf("file %s deleted %d times, want 1", file.PublicID, requested[file.PublicID])
		}
	}
	if f.objects.Len() != 0 {
		t.Fatalf("objects left: %d", f.objects.Len())
	}

	err = f.taskService.DeleteTask(ctx, student, created.Task.TaskID)
	if !errors.Is(err, services.ErrTaskNotFound) {
		t.Fatalf("second delete: got %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTaskRemoteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.addUser(t, "manager", model.RoleManager)
	student := f.addUser(t, "student", model.RoleStudent)

	in := createInput(student)
	in.Uploads = []services.Upload{fileUpload("a.txt")}
	created, err := f.taskService.CreateTask(ctx, manager, in)
	if err != nil {
		t.Fatal(err)
	}
	f.objects.FailDeletes = true

	if err := f.taskService.DeleteTask(ctx, manager, created.Task.TaskID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if f.tasks.Count() != 0 {
		t.Fatal("task kept after best-effort purge")
	}
}

func TestAttachmentLifecycleThroughService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.addUser(t, "staff", model.RoleStaff)
	student := f.addUser(t, "student", model.RoleStudent)
	outsider := f.addUser(t, "outsider", model.RoleStudent)
	task := f.addTask(t, staff, student)

	_, err := f.taskService.AddAttachment(ctx, outsider, task.TaskID, imageUpload("a.png"))
	assertKind(t, err, services.KindForbidden)
	if f.objects.Len() != 0 {
		t.Fatal("denied attach uploaded an object")
	}

	updated, err := f.taskService.AddAttachment(ctx, student, task.TaskID, imageUpload("a.png"))
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	if len(updated.Images) != 1 {
		t.Fatalf("images: got %d, want 1", len(updated.Images))
	}

	_, err = f.taskService.RemoveAttachment(ctx, outsider, task.TaskID, services.AttachmentImage, updated.Images[0].ID)
	assertKind(t, err, services.KindForbidden)

	removed, err := f.taskService.RemoveAttachment(ctx, staff, task.TaskID, services.AttachmentImage, updated.Images[0].ID)
	if err != nil {
		t.Fatalf("RemoveAttachment: %v", err)
	}
	if len(removed.Images) != 0 {
		t.Fatal("image still attached")
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-03-04T10:30:00Z", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC), true},
		{"2025-03-04T10:30:00+02:00", time.Date(2025, 3, 4, 8, 30, 0, 0, time.UTC), true},
		{"2025-03-04T10:30", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC), true},
		{" 2025-01-01 ", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"01/02/2025", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := services.ParseDueDate(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("err: %v", err)
			}
			if tt.ok && !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"5f0c1a52-7d1e-4a40-8f49-3f0a0b6a2c11", true},
		{"5F0C1A52-7D1E-4A40-8F49-3F0A0B6A2C11", false},
		{"{5f0c1a52-7d1e-4a40-8f49-3f0a0b6a2c11}", false},
		{"urn:uuid:5f0c1a52-7d1e-4a40-8f49-3f0a0b6a2c11", false},
		{"5f0c1a527d1e4a408f493f0a0b6a2c11", false},
		{"12345", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := services.ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestUpdateStatusNonCanonicalID(t *testing.T) {
	f := newFixture(t)
	staff := f.addUser(t, "staff", model.RoleStaff)
	student := f.addUser(t, "student", model.RoleStudent)
	task := f.addTask(t, staff, student)

	_, err := f.taskService.UpdateStatus(context.Background(), staff, strings.ToUpper(task.TaskID), model.StatusCompleted)
	assertKind(t, err, services.KindValidation)
}
