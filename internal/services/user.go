package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=user.go -destination=mock_user.go -package=services

const (
	// DefaultLimit is the page size used when the caller gives none.
	DefaultLimit = 10
	// MaxLimit caps the page size unless overridden in NewUserService.
	MaxLimit = 100
)

// PublishTimeout bounds a single event write to Kafka.
const PublishTimeout = 5 * time.Second

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)                                          // Returns a user, deleted ones included
	List(ctx context.Context, limit, offset int, status *models.UserStatus) ([]models.User, int64, error) // Returns a page and the filtered total
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Insert(ctx context.Context, username, email string, userData models.UserData) (*models.User, error) // Creates a user
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)                  // Applies a partial update
	SoftDelete(ctx context.Context, id int64) (*models.User, error)                                     // Marks a user deleted
}

// UserCache caches single users by id.
type UserCache interface {
	Get(ctx context.Context, id int64) (*models.User, error)          // Returns models.ErrCacheMiss when absent
	Set(ctx context.Context, user *models.User) error                 // Stores a user, replacing any entry
	SetIfAbsent(ctx context.Context, user *models.User) (bool, error) // Stores a user unless an entry exists
	Delete(ctx context.Context, id int64) error                       // Invalidates a user
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// UserService applies the registry policy on top of the user store.
type UserService struct {
	reader      UserReader
	writer      UserWriter
	cache       UserCache
	kafkaWriter KafkaWriter
	validate    *validator.Validate
	maxLimit    int
}

// NewUserService creates a new UserService. cache and kafkaWriter may be nil;
// maxLimit <= 0 selects MaxLimit.
func NewUserService(
	reader UserReader,
	writer UserWriter,
	cache UserCache,
	kafkaWriter KafkaWriter,
	maxLimit int,
) *UserService {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return &UserService{
		reader:      reader,
		writer:      writer,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		validate:    newValidator(),
		maxLimit:    maxLimit,
	}
}

// CreateUser validates and stores a user received from the webhook.
func (svc *UserService) CreateUser(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := validateStruct(svc.validate, in); err != nil {
		logger.Log.Infow("rejected user", "email", in.Email, "error", err)
		return nil, err
	}

	user, err := svc.writer.Insert(ctx, in.Username, in.Email, in.UserData)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			logger.Log.Infow("email already registered", "email", in.Email)
		} else {
			logger.Log.Errorw("failed to insert user", "email", in.Email, "error", err)
		}
		return nil, err
	}

	svc.publishEvent(ctx, models.UserCreated, user)
	return user, nil
}

// ListUsers returns one page of users. Without a status filter deleted users are left out.
func (svc *UserService) ListUsers(ctx context.Context, in models.ListUsersInput) (*models.UserPage, error) {
	if err := validateStruct(svc.validate, in); err != nil {
		return nil, err
	}

	limit := in.Limit
	switch {
	case limit <= 0:
		limit = min(DefaultLimit, svc.maxLimit)
	case limit > svc.maxLimit:
		limit = svc.maxLimit
	}
	offset := max(in.Offset, 0)

	items, total, err := svc.reader.List(ctx, limit, offset, in.StatusFilter)
	if err != nil {
		logger.Log.Errorw("failed to list users", "limit", limit, "offset", offset, "status", in.StatusFilter, "error", err)
		return nil, err
	}
	if items == nil {
		items = []models.User{}
	}

	return &models.UserPage{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(items)) < total,
		Pages:   (total + int64(limit) - 1) / int64(limit),
	}, nil
}

// GetUser returns a user by id. Soft-deleted users are returned as well.
func (svc *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if svc.cache != nil {
		user, err := svc.cache.Get(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, models.ErrCacheMiss) {
			logger.Log.Warnw("failed to read user from cache", "userID", id, "error", err)
		}
	}

	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			logger.Log.Errorw("failed to get user", "userID", id, "error", err)
		}
		return nil, err
	}

	// A mutation that committed after our read has already written the cache;
	// only fill an empty slot.
	if svc.cache != nil {
		if _, err := svc.cache.SetIfAbsent(ctx, user); err != nil {
			logger.Log.Warnw("failed to cache user", "userID", id, "error", err)
		}
	}
	return user, nil
}

// UpdateUser applies a partial update. A status of deleted is ignored;
// deletion goes through DeleteUser.
func (svc *UserService) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return nil, models.NewValidationError("body", "no fields provided for update")
	}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		upd.Username = &name
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		upd.Email = &email
	}

	if err := validateStruct(svc.validate, upd); err != nil {
		logger.Log.Infow("rejected user update", "userID", id, "error", err)
		return nil, err
	}

	if upd.Status != nil && *upd.Status == models.UserStatusDeleted {
		logger.Log.Infow("ignoring status deleted on update", "userID", id)
		upd.Status = nil
	}
	if upd.Empty() {
		return svc.GetUser(ctx, id)
	}

	user, err := svc.writer.Update(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound),
			errors.Is(err, models.ErrUserDeleted),
			errors.Is(err, models.ErrDuplicateEmail):
			logger.Log.Infow("user update refused", "userID", id, "error", err)
		default:
			logger.Log.Errorw("failed to update user", "userID", id, "error", err)
		}
		return nil, err
	}

	svc.writeThrough(ctx, user)
	svc.publishEvent(ctx, models.UserUpdated, user)
	return user, nil
}

// DeleteUser soft-deletes a user and returns the resulting record.
// Deleting an already deleted user succeeds.
func (svc *UserService) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := svc.writer.SoftDelete(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			logger.Log.Errorw("failed to delete user", "userID", id, "error", err)
		}
		return nil, err
	}

	svc.writeThrough(ctx, user)
	svc.publishEvent(ctx, models.UserDeleted, user)
	return user, nil
}

// writeThrough stores the committed record in the cache. When that fails the
// entry is dropped so readers fall back to the store.
func (svc *UserService) writeThrough(ctx context.Context, user *models.User) {
	if svc.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	err := svc.cache.Set(ctx, user)
	if err == nil {
		return
	}
	logger.Log.Warnw("failed to cache updated user", "userID", user.ID, "error", err)

	if err := svc.cache.Delete(ctx, user.ID); err != nil {
		logger.Log.Warnw("failed to invalidate cached user", "userID", user.ID, "error", err)
	}
}

// publishEvent publishes a user lifecycle event to Kafka. Failures are logged only.
// The write has already committed, so the event outlives a cancelled request.
func (svc *UserService) publishEvent(ctx context.Context, eventType models.UserEventType, user *models.User) {
	if svc.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "type", eventType, "userID", user.ID)
		return
	}

	evt := models.UserEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Timestamp: time.Now().Unix(),
		User:      *user,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Errorw("Failed to marshal user event for Kafka", "event_id", evt.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(user.ID, 10)),
		Value: data,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := svc.kafkaWriter.WriteMessages(pubCtx, msg); err != nil {
		logger.Log.Errorw("Failed to publish user event to Kafka", "event_id", evt.EventID, "type", eventType, "error", err)
	} else {
		logger.Log.Infow("User event published to Kafka", "event_id", evt.EventID, "type", eventType, "userID", user.ID)
	}
}
