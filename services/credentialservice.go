package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"taskhub/model"
)

// Session is what register and login hand back to the client.
type Session struct {
	User  *model.User
	Token string
}

type CredentialService struct {
	logger zerolog.Logger
	users  UserStore
	tokens *TokenIssuer
	cost   int
}

func NewCredentialService(logger zerolog.Logger, users UserStore, tokens *TokenIssuer) *CredentialService {
	return &CredentialService{
		logger: logger,
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost, mainly so tests can use
// bcrypt.MinCost.
func (s *CredentialService) WithHashCost(cost int) *CredentialService {
	s.cost = cost
	return s
}

// Register creates a student account. The role is never taken from the
// caller.
func (s *CredentialService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return nil, invalid("Name, email and password are required")
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info().Str("email", email).Msg("registration with existing email")
		return nil, ErrDuplicateIdentity
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Msg: "Failed to hash password", Err: err}
	}

	now := time.Now()
	user := &model.User{
		UserID:    uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  string(hashedPassword),
		Role:      model.RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("user_id", user.UserID).
		Msg("registered user")

	return s.issue(user)
}

// Login answers ErrInvalidCredential for an unknown email and for a wrong
// password alike.
func (s *CredentialService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Debug().
			Str("user_id", user.UserID).
			Msg("password mismatch")
		return nil, ErrInvalidCredential
	}

	return s.issue(user)
}

// VerifySession resolves a bearer token to the user it was issued for. The
// user, and therefore the role, is read fresh from the store.
func (s *CredentialService) VerifySession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrMissingSession
	}

	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("failed to parse token")
		return nil, withCause(ErrInvalidSession, err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, withCause(ErrInvalidSession, err)
		}
		return nil, err
	}
	return user, nil
}

func (s *CredentialService) issue(user *model.User) (*Session, error) {
	token, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Msg: "Failed to create access token", Err: err}
	}
	return &Session{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
