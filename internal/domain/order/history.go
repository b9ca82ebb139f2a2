package order

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// StatusHistory is one append-only record of a status change.
// OldStatus is nil for the creation entry.
type StatusHistory struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	OldStatus *Status
	NewStatus Status
	Actor     string
	Sequence  int
	CreatedAt time.Time
}

// SortHistory orders entries by their per-order sequence
func SortHistory(entries []StatusHistory) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Sequence < entries[j].Sequence
	})
}

// ReplayHistory walks a chronologically ordered history and returns the resulting status.
// The first entry must be the creation entry and each entry must start where the previous ended.
func ReplayHistory(entries []StatusHistory) (Status, error) {
	if len(entries) == 0 {
		return "", shared.NewValidationError("history", "History is empty")
	}
	if entries[0].OldStatus != nil {
		return "", shared.NewValidationError("history", "First history entry must have no previous status")
	}

	current := entries[0].NewStatus
	for i, e := range entries[1:] {
		if e.OldStatus == nil || *e.OldStatus != current {
			return "", shared.NewValidationError("history",
				fmt.Sprintf("History entry %d does not continue from %s", i+1, current))
		}
		current = e.NewStatus
	}
	return current, nil
}
