// Package memstore provides in-process backends for users, tasks, remote
// objects and mail. They back DATA_STORE=memory and OBJECT_STORE=memory for
// local runs and are what the tests run against.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"taskhub/model"
	"taskhub/services"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return services.ErrDuplicateIdentity
		}
	}
	if _, ok := s.users[user.UserID]; ok {
		return fmt.Errorf("user %s already exists", user.UserID)
	}
	s.users[user.UserID] = *user
	return nil
}

// Put stores user as is, replacing any user with the same id. It is how
// seed data and role changes get in.
func (s *UserStore) Put(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
}

func (s *UserStore) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserStore) FindByID(_ context.Context, userID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *UserStore) List(_ context.Context, role string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []model.User{}
	for _, u := range s.users {
		if role == "" || u.Role == role {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// TaskStore copies tasks in and out so callers never share slices with
// the stored document.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]model.Task)}
}

func (s *TaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.TaskID]; ok {
		return fmt.Errorf("task %s already exists", task.TaskID)
	}
	s.tasks[task.TaskID] = clone(*task)
	return nil
}

func (s *TaskStore) Get(_ context.Context, taskID string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	t = clone(t)
	return &t, nil
}

func (s *TaskStore) Save(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.TaskID] = clone(*task)
	return nil
}

func (s *TaskStore) Delete(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return services.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *TaskStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) ListAll(context.Context) ([]model.Task, error) {
	return s.filter(func(model.Task) bool { return true }), nil
}

func (s *TaskStore) ListAssignedTo(_ context.Context, userID string) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool { return t.AssignedTo == userID }), nil
}

func (s *TaskStore) ListInvolving(_ context.Context, userID string) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool {
		return t.AssignedTo == userID || t.CreatedBy == userID
	}), nil
}

func (s *TaskStore) filter(keep func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []model.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			tasks = append(tasks, clone(t))
		}
	}
	return tasks
}

func clone(t model.Task) model.Task {
	t.Images = slices.Clone(t.Images)
	t.Files = slices.Clone(t.Files)
	return t
}
