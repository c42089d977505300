package repositories

import (
	"context"
	"time"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

type ActiveEventRepository interface {
	Save(ctx context.Context, event *models.ActiveEvent) error

	// FindDue returns events with due time not after now, ordered by due time and id.
	FindDue(ctx context.Context, now time.Time) ([]*models.ActiveEvent, error)

	FindByUser(ctx context.Context, uid int64, limit uint64) ([]*models.ActiveEvent, error)

	// NearestDueTime returns nil when there are no active events.
	NearestDueTime(ctx context.Context) (*time.Time, error)

	Delete(ctx context.Context, id int64) error

	DeleteByParent(ctx context.Context, parentID int64) error
}

type TemplateRepository interface {
	Save(ctx context.Context, template *models.RepeatingTemplate) error

	FindByID(ctx context.Context, id int64) (*models.RepeatingTemplate, error)

	FindByUser(ctx context.Context, uid int64, limit uint64) ([]*models.RepeatingTemplate, error)

	// Delete reports whether a template with the id existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}
