package repositories

import (
	"context"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

type UserRepository interface {
	Save(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, uid int64) (*models.User, error)

	GetAllChatIDs(ctx context.Context) ([]int64, error)

	GetAllIDs(ctx context.Context) ([]int64, error)
}
