package services

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskhub/model"
)

const tasksCollection = "Tasks"

// TaskStore persists tasks. Save replaces the whole document, so
// concurrent attachment changes to one task are last-write-wins.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	Get(ctx context.Context, taskID string) (*model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, taskID string) error
	ListAll(ctx context.Context) ([]model.Task, error)
	ListAssignedTo(ctx context.Context, userID string) ([]model.Task, error)
	ListInvolving(ctx context.Context, userID string) ([]model.Task, error)
}

type FirestoreTaskStore struct {
	client *firestore.Client
}

func NewFirestoreTaskStore(client *firestore.Client) *FirestoreTaskStore {
	return &FirestoreTaskStore{client: client}
}

func (s *FirestoreTaskStore) Create(ctx context.Context, task *model.Task) error {
	if _, err := s.client.Collection(tasksCollection).Doc(task.TaskID).Create(ctx, task); err != nil {
		return storeErr("create task", err)
	}
	return nil
}

func (s *FirestoreTaskStore) Get(ctx context.Context, taskID string) (*model.Task, error) {
	docSnap, err := s.client.Collection(tasksCollection).Doc(taskID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTaskNotFound
		}
		return nil, storeErr("get task", err)
	}

	var task model.Task
	if err := docSnap.DataTo(&task); err != nil {
		return nil, storeErr("parse task", err)
	}
	return &task, nil
}

func (s *FirestoreTaskStore) Save(ctx context.Context, task *model.Task) error {
	if _, err := s.client.Collection(tasksCollection).Doc(task.TaskID).Set(ctx, task); err != nil {
		return storeErr("save task", err)
	}
	return nil
}

func (s *FirestoreTaskStore) Delete(ctx context.Context, taskID string) error {
	if _, err := s.client.Collection(tasksCollection).Doc(taskID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrTaskNotFound
		}
		return storeErr("delete task", err)
	}
	return nil
}

func (s *FirestoreTaskStore) ListAll(ctx context.Context) ([]model.Task, error) {
	return collectTasks(s.client.Collection(tasksCollection).Query.Documents(ctx))
}

func (s *FirestoreTaskStore) ListAssignedTo(ctx context.Context, userID string) ([]model.Task, error) {
	query := s.client.Collection(tasksCollection).Where("assignedto", "==", userID)
	return collectTasks(query.Documents(ctx))
}

func (s *FirestoreTaskStore) ListInvolving(ctx context.Context, userID string) ([]model.Task, error) {
	query := s.client.Collection(tasksCollection).WhereEntity(firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "createdby", Operator: "==", Value: userID},
			firestore.PropertyFilter{Path: "assignedto", Operator: "==", Value: userID},
		},
	})
	return collectTasks(query.Documents(ctx))
}

func collectTasks(iter *firestore.DocumentIterator) ([]model.Task, error) {
	defer iter.Stop()

	tasks := []model.Task{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, storeErr("list tasks", err)
		}

		var task model.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, storeErr("parse task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
