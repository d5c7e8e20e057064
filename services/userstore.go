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

const usersCollection = "Users"

// UserStore persists identities. Implementations return ErrUserNotFound
// when a lookup matches nothing.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns every user, or only users with the given role when role
	// is not empty.
	List(ctx context.Context, role string) ([]model.User, error)
}

type FirestoreUserStore struct {
	client *firestore.Client
}

func NewFirestoreUserStore(client *firestore.Client) *FirestoreUserStore {
	return &FirestoreUserStore{client: client}
}

func (s *FirestoreUserStore) Create(ctx context.Context, user *model.User) error {
	_, err := s.client.Collection(usersCollection).Doc(user.UserID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrDuplicateIdentity
		}
		return storeErr("create user", err)
	}
	return nil
}

func (s *FirestoreUserStore) FindByID(ctx context.Context, userID string) (*model.User, error) {
	docSnap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("get user", err)
	}

	var user model.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, storeErr("parse user", err)
	}
	return &user, nil
}

func (s *FirestoreUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := s.client.Collection(usersCollection).Where("email", "==", email).Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, storeErr("query user by email", err)
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}

	var user model.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, storeErr("parse user", err)
	}
	return &user, nil
}

func (s *FirestoreUserStore) List(ctx context.Context, role string) ([]model.User, error) {
	query := s.client.Collection(usersCollection).Query
	if role != "" {
		query = query.Where("role", "==", role)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	users := []model.User{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, storeErr("list users", err)
		}

		var user model.User
		if err := doc.DataTo(&user); err != nil {
			return nil, storeErr("parse user", err)
		}
		users = append(users, user)
	}
	return users, nil
}
