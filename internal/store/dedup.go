package store

import (
	"context"
	"fmt"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/metrics"
)

// proximityWindow is the maximum start-time distance for two events with
// the same signature to count as the same real-world occurrence. Entries
// further apart than this (a morning and an afternoon session of the
// same class) stay distinct even on the same day.
const proximityWindow = 3 * time.Hour

// CreateEvent inserts a standardized event unless an equivalent one is
// already stored. Equivalence requires the same signature AND start
// instants within the proximity window. When several stored candidates
// qualify, the one closest in time wins.
//
// The duplicate check and the insert are separate statements, not one
// transaction. Two concurrent inserts of the same event can both pass
// the check and both land; ResolveLatentDuplicates merges such pairs
// after the fact.
func (s *SQLiteStore) CreateEvent(ctx context.Context, ev *event.StandardizedEvent) (*CreateResult, error) {
	if ev.UniversalID == "" {
		return nil, fmt.Errorf("creating event: universal ID is required")
	}
	if ev.Signature == "" {
		return nil, fmt.Errorf("creating event: signature is required")
	}

	candidates, err := s.FindBySignature(ctx, ev.FamilyID, ev.Signature)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}

	if existing := closestDuplicate(candidates, ev); existing != nil {
		metrics.DuplicatesDetected.Inc()
		return &CreateResult{Event: existing, Duplicate: true}, nil
	}

	if err := s.insertEvent(ctx, ev); err != nil {
		return nil, err
	}
	return &CreateResult{Event: ev}, nil
}

// closestDuplicate picks the stored candidate that matches ev and sits
// closest in time, or nil when none qualifies. Ties go to the earliest
// stored row.
func closestDuplicate(candidates []*event.StandardizedEvent, ev *event.StandardizedEvent) *event.StandardizedEvent {
	var best *event.StandardizedEvent
	var bestDist time.Duration
	for _, c := range candidates {
		if !sameEventInstance(c, ev) {
			continue
		}
		dist := absDuration(c.Start.DateTime.Sub(ev.Start.DateTime))
		if best == nil || dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	return best
}

// sameEventInstance reports whether two events with matching signatures
// refer to the same occurrence: start instants within the proximity
// window. The signature already pins the calendar date, so the window is
// the only refinement left; same-day entries further apart describe
// separate sessions and both must be kept.
func sameEventInstance(a, b *event.StandardizedEvent) bool {
	return absDuration(a.Start.DateTime.Sub(b.Start.DateTime)) <= proximityWindow
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// FindLatentDuplicates scans stored events for pairs that the racy
// insert path let through. Pass an empty familyID to scan all families.
// Within each signature group the earliest stored row is the survivor.
func (s *SQLiteStore) FindLatentDuplicates(ctx context.Context, familyID string) ([]DuplicatePair, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []interface{}{}
	if familyID != "" {
		query += ` WHERE family_id = ?`
		args = append(args, familyID)
	}
	query += ` ORDER BY family_id, signature, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events for sweep: %w", err)
	}
	defer rows.Close()

	groups := map[string][]*event.StandardizedEvent{}
	groupOrder := []string{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		key := ev.FamilyID + "\x00" + ev.Signature
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}

	var pairs []DuplicatePair
	for _, key := range groupOrder {
		events := groups[key]
		if len(events) < 2 {
			continue
		}

		// Rows arrive ordered by id, so winners are always the earliest
		// stored copy of each distinct occurrence.
		winners := []*event.StandardizedEvent{events[0]}
		for _, candidate := range events[1:] {
			matched := false
			for _, w := range winners {
				if sameEventInstance(w, candidate) {
					pairs = append(pairs, DuplicatePair{Keep: *w, Drop: *candidate})
					matched = true
					break
				}
			}
			if !matched {
				winners = append(winners, candidate)
			}
		}
	}
	return pairs, nil
}

// ResolveLatentDuplicates deletes the redundant half of every latent
// duplicate pair and returns the number of rows removed.
func (s *SQLiteStore) ResolveLatentDuplicates(ctx context.Context, familyID string) (int, error) {
	pairs, err := s.FindLatentDuplicates(ctx, familyID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range pairs {
		if err := s.DeleteEvent(ctx, p.Drop.UniversalID); err != nil {
			return removed, fmt.Errorf("removing duplicate %s: %w", p.Drop.UniversalID, err)
		}
		removed++
		metrics.LatentDuplicatesResolved.Inc()
	}
	return removed, nil
}
