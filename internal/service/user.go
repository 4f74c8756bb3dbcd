// Package service provides business logic for the application.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hpnchanel/usersvc/internal/apperr"
	"github.com/hpnchanel/usersvc/internal/events"
	"github.com/hpnchanel/usersvc/internal/metrics"
	"github.com/hpnchanel/usersvc/internal/model"
	"github.com/hpnchanel/usersvc/internal/repository"
)

// ErrUserNotFound is returned for unknown and soft-deleted users alike.
var ErrUserNotFound = repository.ErrUserNotFound

// UserStore is the persistence the service needs. *repository.Repository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetActiveUser(ctx context.Context, id string) (*model.User, error)
	ListActiveUsers(ctx context.Context) ([]*model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	SoftDeleteUser(ctx context.Context, id string) error
}

// EventSink receives lifecycle events after a write commits. *events.Publisher implements it.
type EventSink interface {
	PublishAsync(event events.Event)
}

type discardEvents struct{}

func (discardEvents) PublishAsync(events.Event) {}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	events  EventSink
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a UserService.
type Option func(*UserService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *UserService) { s.newID = newID }
}

// WithEvents publishes lifecycle events to sink.
func WithEvents(sink EventSink) Option {
	return func(s *UserService) {
		if sink != nil {
			s.events = sink
		}
	}
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder, logger *slog.Logger, opts ...Option) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &UserService{
		store:   store,
		events:  discardEvents{},
		metrics: recorder,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Username  string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
}

// UpdateUserInput defines input for updating a user. Nil fields are left unchanged.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
	IsActive  *bool
}

// CreateUser stores a new active user with a fresh id and returns the stored record.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	now := s.timestamp()
	user := &model.User{
		ID:        s.newID(),
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.InfoContext(ctx, "creating user",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserCreated()
	s.events.PublishAsync(events.NewEvent(events.UserCreated, created.ID, created.Username, created.IsActive, created.CreatedAt))
	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", created.ID),
		slog.String("username", created.Username),
	)

	return created, nil
}

// GetUser retrieves an active user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := ParseID(id); err != nil {
		return nil, err
	}

	user, err := s.store.GetActiveUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// ListUsers retrieves all active users, newest first. Never returns nil on success.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// UpdateUser merges the supplied fields into an existing user, active or not,
// and re-stamps updated_at. The existence check and the update are separate
// statements; a concurrent delete between them is not guarded against.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	if err := ParseID(id); err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	patch := model.UserPatch{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
		IsActive:  input.IsActive,
		UpdatedAt: s.timestamp(),
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.metrics.IncUserUpdated()
	s.events.PublishAsync(events.NewEvent(events.UserUpdated, user.ID, user.Username, user.IsActive, user.UpdatedAt))
	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", user.ID))

	return user, nil
}

// DeleteUser soft-deletes a user. Repeated deletes succeed; only an id that
// never existed yields ErrUserNotFound. updated_at is left untouched.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := ParseID(id); err != nil {
		return err
	}

	if err := s.store.SoftDeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.metrics.IncUserDeleted()
	s.events.PublishAsync(events.NewEvent(events.UserDeleted, id, "", false, s.timestamp()))
	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id))

	return nil
}

// timestamp returns the current time at the store's microsecond precision,
// so the returned record matches what a later read would see.
func (s *UserService) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

// ParseID rejects ids that are not UUIDs before they reach the store.
func ParseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("Invalid user id", err)
	}
	return nil
}
