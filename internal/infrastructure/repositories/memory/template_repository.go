package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

type TemplateRepository struct {
	templates map[int64]*models.RepeatingTemplate
	nextID    int64
	mu        sync.RWMutex
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{
		templates: make(map[int64]*models.RepeatingTemplate),
		nextID:    1,
	}
}

func (r *TemplateRepository) Save(_ context.Context, template *models.RepeatingTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	template.ID = r.nextID
	r.nextID++

	stored := *template
	r.templates[stored.ID] = &stored

	return nil
}

func (r *TemplateRepository) FindByID(_ context.Context, id int64) (*models.RepeatingTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, exists := r.templates[id]
	if !exists {
		return nil, &errors.ErrTemplateNotFound{ID: id}
	}

	found := *template

	return &found, nil
}

func (r *TemplateRepository) FindByUser(_ context.Context, uid int64, limit uint64) ([]*models.RepeatingTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*models.RepeatingTemplate, 0)

	for _, template := range r.templates {
		if template.UID == uid {
			found := *template
			templates = append(templates, &found)
		}
	}

	sort.Slice(templates, func(i, j int) bool {
		if templates[i].StartTime.Equal(templates[j].StartTime) {
			return templates[i].ID < templates[j].ID
		}

		return templates[i].StartTime.Before(templates[j].StartTime)
	})

	if uint64(len(templates)) > limit {
		templates = templates[:limit]
	}

	return templates, nil
}

func (r *TemplateRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[id]; !exists {
		return false, nil
	}

	delete(r.templates, id)

	return true, nil
}
