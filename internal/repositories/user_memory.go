package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/models"
)

// MemoryVersion is reported by Ping on the in-memory store.
const MemoryVersion = "in-memory"

// UserMemoryRepository keeps users in process memory.
// It serves both the read and the write side and is safe for concurrent use.
type UserMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
	emails map[string]int64
	now    func() time.Time
}

func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{
		users:  make(map[int64]models.User),
		emails: make(map[string]int64),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserMemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *UserMemoryRepository) List(ctx context.Context, limit, offset int, status *models.UserStatus) ([]models.User, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id, u := range r.users {
		if status == nil && u.Status == models.UserStatusDeleted {
			continue
		}
		if status != nil && u.Status != *status {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	items := []models.User{}
	for i := offset; i < len(ids) && len(items) < limit; i++ {
		items = append(items, *cloneUser(r.users[ids[i]]))
	}

	logger.Log.Debugw("memory list", "limit", limit, "offset", offset, "status", status, "total", total)
	return items, total, nil
}

func (r *UserMemoryRepository) Ping(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return MemoryVersion, nil
}

func (r *UserMemoryRepository) Insert(ctx context.Context, username, email string, userData models.UserData) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[email]; taken {
		return nil, models.ErrDuplicateEmail
	}
	if userData == nil {
		userData = models.EmptyUserData
	}

	r.nextID++
	now := r.now()
	user := models.User{
		ID:        r.nextID,
		Username:  username,
		Email:     email,
		UserData:  append(models.UserData(nil), userData...),
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[user.ID] = user
	r.emails[email] = user.ID

	return cloneUser(user), nil
}

func (r *UserMemoryRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if user.Status == models.UserStatusDeleted {
		return nil, models.ErrUserDeleted
	}
	if upd.Email != nil && *upd.Email != user.Email {
		if _, taken := r.emails[*upd.Email]; taken {
			return nil, models.ErrDuplicateEmail
		}
		delete(r.emails, user.Email)
		user.Email = *upd.Email
		r.emails[user.Email] = id
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.UserData != nil {
		user.UserData = append(models.UserData(nil), upd.UserData...)
	}
	if upd.Status != nil && *upd.Status != models.UserStatusDeleted {
		user.Status = *upd.Status
	}
	user.UpdatedAt = r.now()
	r.users[id] = user

	return cloneUser(user), nil
}

func (r *UserMemoryRepository) SoftDelete(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	user.Status = models.UserStatusDeleted
	user.UpdatedAt = r.now()
	r.users[id] = user

	return cloneUser(user), nil
}

func cloneUser(u models.User) *models.User {
	u.UserData = append(models.UserData(nil), u.UserData...)
	return &u
}
