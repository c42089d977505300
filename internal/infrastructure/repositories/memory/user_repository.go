package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

type UserRepository struct {
	users map[int64]*models.User
	mu    sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[int64]*models.User),
	}
}

func (r *UserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.UID]; exists {
		return &errors.ErrUserAlreadyExists{UID: user.UID}
	}

	stored := *user
	r.users[user.UID] = &stored

	return nil
}

func (r *UserRepository) FindByID(_ context.Context, uid int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[uid]
	if !exists {
		return nil, &errors.ErrUserNotFound{UID: uid}
	}

	found := *user

	return &found, nil
}

func (r *UserRepository) GetAllChatIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chatIDs := make([]int64, 0, len(r.users))
	for _, user := range r.sortedUsers() {
		chatIDs = append(chatIDs, user.ChatID)
	}

	return chatIDs, nil
}

func (r *UserRepository) GetAllIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for _, user := range r.sortedUsers() {
		ids = append(ids, user.UID)
	}

	return ids, nil
}

func (r *UserRepository) sortedUsers() []*models.User {
	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].UID < users[j].UID })

	return users
}
