// Package disposition tracks the handled/removed state of containers and
// writes the audit trail for every transition.
package disposition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"containerbeheer/aggr"
	"containerbeheer/ledger"
	"containerbeheer/models"
)

// ErrAlreadyHandled signals a no-op: the record was handled before this
// call. Nothing is logged for it.
var ErrAlreadyHandled = errors.New("container is already marked as handled")

// NotFoundError means the referenced container is no longer in the active
// set; the caller should refresh and retry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container %q not found in the active set", e.Name)
}

// Tracker applies the one-way Pending -> Handled and terminal
// Pending -> Removed transitions. The store commits the logbook entry, the
// snapshot effect and the daily total as one unit, so a failed transition
// leaves no trace and a retry cannot double-log.
type Tracker struct {
	store ledger.Store
	now   func() time.Time
}

func NewTracker(store ledger.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// MarkHandled flips the handled flag of one container and logs exactly one
// "handled" entry. Calling it again for the same container returns
// ErrAlreadyHandled without appending.
func (t *Tracker) MarkHandled(ctx context.Context, name string) (*models.ContainerRecord, error) {
	// Always work from the store's current state, not a stale session copy.
	records, err := t.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	rec := findFirst(records, name)
	if rec == nil {
		return nil, &NotFoundError{Name: name}
	}
	if rec.Handled {
		return nil, ErrAlreadyHandled
	}

	ts := t.now()
	entry := entryFor(rec, models.ActionHandled, ts)
	if err := t.store.ApplyHandled(ctx, entry, rec.Version, highFillCount(records)); err != nil {
		// Nothing was committed: the logbook, the flag and the totals all
		// rolled back together.
		if errors.Is(err, ledger.ErrConflict) {
			log.Warnf("Container %s was changed by another session, refresh and retry", rec.Name)
		}
		return nil, err
	}
	rec.Handled = true
	rec.Version++
	log.Infof("Marked container %s as handled", rec.Name)
	return rec, nil
}

// Remove takes one container out of the active set, logs exactly one
// "removed" entry, re-aggregates the remaining set and saves it. The
// returned slice is the new active set.
func (t *Tracker) Remove(ctx context.Context, name string) ([]models.ContainerRecord, error) {
	records, err := t.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range records {
		if records[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Name: name}
	}

	ts := t.now()
	entry := entryFor(&records[idx], models.ActionRemoved, ts)

	remaining := append(records[:idx:idx], records[idx+1:]...)
	// Removal invalidates the group aggregates of the removed record's
	// group; recompute over the whole remaining set.
	aggr.Recompute(remaining)
	if err := t.store.ApplyRemoval(ctx, entry, remaining, highFillCount(remaining)); err != nil {
		return nil, err
	}
	log.Infof("Removed container %s from the active set", name)
	return remaining, nil
}

func highFillCount(records []models.ContainerRecord) int {
	n := 0
	for i := range records {
		if records[i].FillLevel >= models.HighFillThreshold {
			n++
		}
	}
	return n
}

// findFirst locates a record by its stable name. Duplicate names are a
// data-quality problem; the first occurrence wins and the rest get a
// warning.
func findFirst(records []models.ContainerRecord, name string) *models.ContainerRecord {
	var first *models.ContainerRecord
	matches := 0
	for i := range records {
		if records[i].Name == name {
			if first == nil {
				first = &records[i]
			}
			matches++
		}
	}
	if matches > 1 {
		log.Warnf("Duplicate container name %q occurs %d times, using the first occurrence", name, matches)
	}
	return first
}

func entryFor(r *models.ContainerRecord, action models.Action, ts time.Time) models.LogEntry {
	return models.LogEntry{
		Name:         r.Name,
		Address:      r.Address,
		City:         r.City,
		LocationCode: r.LocationCode,
		Category:     r.Category,
		FillLevel:    r.FillLevel,
		Action:       action,
		Timestamp:    ts,
	}
}
