package service

import (
	"sort"

	"order-amendment-service/internal/models"
)

// LineChange pairs an original line with the working line that traces
// back to it.
type LineChange struct {
	Before models.OrderLine
	After  WorkingLine
}

// Diff is a strict partition of every line touched by a session.
type Diff struct {
	Added     []WorkingLine
	Removed   []models.OrderLine
	Changed   []LineChange
	Unchanged []WorkingLine
}

// HasChanges reports whether the diff would alter persisted state.
func (d *Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// Classify partitions the session's working copy against its seeded
// original lines. A line edited and then returned to its original
// quantity and price counts as Unchanged, so no-op edits produce no
// audit entries. A session with zero working lines is rejected before
// classification: an order must always keep at least one line.
func Classify(s *Session) (*Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil, ErrEmptySession
	}

	diff := &Diff{}
	seen := make(map[int64]bool, len(s.original))

	handles := make([]int64, 0, len(s.lines))
	for h := range s.lines {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		line := *s.lines[h]
		if line.OriginalLineID == 0 {
			diff.Added = append(diff.Added, line)
			continue
		}

		seen[line.OriginalLineID] = true
		before := s.original[line.OriginalLineID]
		if line.Quantity != before.Quantity || line.UnitPrice != before.UnitPrice {
			diff.Changed = append(diff.Changed, LineChange{Before: before, After: line})
		} else {
			diff.Unchanged = append(diff.Unchanged, line)
		}
	}

	removedIDs := make([]int64, 0)
	for id := range s.original {
		if !seen[id] {
			removedIDs = append(removedIDs, id)
		}
	}
	sort.Slice(removedIDs, func(i, j int) bool { return removedIDs[i] < removedIDs[j] })
	for _, id := range removedIDs {
		diff.Removed = append(diff.Removed, s.original[id])
	}

	return diff, nil
}
