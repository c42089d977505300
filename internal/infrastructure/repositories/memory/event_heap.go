package memory

import (
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// eventHeap orders active events by due time, then by id.
type eventHeap []*models.ActiveEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].DueTime.Equal(h[j].DueTime) {
		return h[i].ID < h[j].ID
	}

	return h[i].DueTime.Before(h[j].DueTime)
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*models.ActiveEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return item
}
