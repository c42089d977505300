package memory

import (
	"container/heap"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// ActiveEventRepository keeps pending events in a map by id and a min-heap by
// due time. Deleted events stay in the heap until they surface at the top.
type ActiveEventRepository struct {
	events map[int64]*models.ActiveEvent
	queue  eventHeap
	nextID int64
	mu     sync.RWMutex
}

func NewActiveEventRepository() *ActiveEventRepository {
	return &ActiveEventRepository{
		events: make(map[int64]*models.ActiveEvent),
		nextID: 1,
	}
}

func (r *ActiveEventRepository) Save(_ context.Context, event *models.ActiveEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++

	stored := *event
	r.events[stored.ID] = &stored
	heap.Push(&r.queue, &stored)

	return nil
}

func (r *ActiveEventRepository) FindDue(_ context.Context, now time.Time) ([]*models.ActiveEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropStale()

	due := make([]*models.ActiveEvent, 0)

	for _, event := range r.events {
		if !event.DueTime.After(now) {
			found := *event
			due = append(due, &found)
		}
	}

	sortByDueTime(due)

	return due, nil
}

func (r *ActiveEventRepository) FindByUser(_ context.Context, uid int64, limit uint64) ([]*models.ActiveEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*models.ActiveEvent, 0)

	for _, event := range r.events {
		if event.UID == uid {
			found := *event
			events = append(events, &found)
		}
	}

	sortByDueTime(events)

	if uint64(len(events)) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (r *ActiveEventRepository) NearestDueTime(_ context.Context) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropStale()

	if r.queue.Len() == 0 {
		return nil, nil
	}

	nearest := r.queue[0].DueTime

	return &nearest, nil
}

func (r *ActiveEventRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, id)

	return nil
}

func (r *ActiveEventRepository) DeleteByParent(_ context.Context, parentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, event := range r.events {
		if event.ParentID == parentID {
			delete(r.events, id)
		}
	}

	return nil
}

// dropStale pops heap entries whose events were deleted.
func (r *ActiveEventRepository) dropStale() {
	for r.queue.Len() > 0 {
		top := r.queue[0]
		if _, alive := r.events[top.ID]; alive {
			return
		}

		heap.Pop(&r.queue)
	}
}

func sortByDueTime(events []*models.ActiveEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].DueTime.Equal(events[j].DueTime) {
			return events[i].ID < events[j].ID
		}

		return events[i].DueTime.Before(events[j].DueTime)
	})
}
