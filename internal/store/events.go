package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// ErrNotFound is returned when no row matches the lookup key.
var ErrNotFound = errors.New("store: not found")

const eventColumns = `id, universal_id, signature, family_id, title, summary, description,
	event_type, location, start_at, end_at, time_zone, event_date,
	child_id, child_name, attending_parent_id, host_name,
	extra_details, recurrence, region, confidence, original_text,
	created_at, updated_at`

// insertEvent writes a new row. Callers go through CreateEvent, which
// runs the duplicate check first.
func (s *SQLiteStore) insertEvent(ctx context.Context, ev *event.StandardizedEvent) error {
	now := time.Now().UTC()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now

	details, err := marshalDetails(ev.ExtraDetails)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO events (universal_id, signature, family_id, title, summary, description,
			event_type, location, start_at, end_at, time_zone, event_date,
			child_id, child_name, attending_parent_id, host_name,
			extra_details, recurrence, region, confidence, original_text,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.UniversalID, ev.Signature, ev.FamilyID, ev.Title, ev.Summary, ev.Description,
		string(ev.EventType), ev.Location, ev.Start.DateTime.UTC(), ev.End.DateTime.UTC(),
		ev.Start.TimeZone, ev.Date,
		ev.ChildID, ev.ChildName, ev.AttendingParentID, ev.HostName,
		details, ev.Recurrence, string(ev.Region), ev.Confidence, ev.OriginalText,
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting event id: %w", err)
	}
	ev.ID = id
	return nil
}

// GetEvent looks up an event by its universal ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, universalID string) (*event.StandardizedEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE universal_id = ?`, universalID)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %s: %w", universalID, err)
	}
	return ev, nil
}

// UpdateEvent replaces the mutable fields of an existing event, keyed by
// universal ID. The universal ID and created_at never change.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, ev *event.StandardizedEvent) error {
	if ev.UniversalID == "" {
		return fmt.Errorf("updating event: universal ID is required")
	}
	ev.UpdatedAt = time.Now().UTC()

	details, err := marshalDetails(ev.ExtraDetails)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE events SET signature = ?, title = ?, summary = ?, description = ?,
			event_type = ?, location = ?, start_at = ?, end_at = ?, time_zone = ?, event_date = ?,
			child_id = ?, child_name = ?, attending_parent_id = ?, host_name = ?,
			extra_details = ?, recurrence = ?, region = ?, confidence = ?, original_text = ?,
			updated_at = ?
		 WHERE universal_id = ?`,
		ev.Signature, ev.Title, ev.Summary, ev.Description,
		string(ev.EventType), ev.Location, ev.Start.DateTime.UTC(), ev.End.DateTime.UTC(),
		ev.Start.TimeZone, ev.Date,
		ev.ChildID, ev.ChildName, ev.AttendingParentID, ev.HostName,
		details, ev.Recurrence, string(ev.Region), ev.Confidence, ev.OriginalText,
		ev.UpdatedAt, ev.UniversalID,
	)
	if err != nil {
		return fmt.Errorf("updating event %s: %w", ev.UniversalID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event by universal ID.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, universalID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE universal_id = ?`, universalID)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", universalID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEvents returns a family's events ordered by start instant.
func (s *SQLiteStore) ListEvents(ctx context.Context, familyID string, opts ListOpts) ([]*event.StandardizedEvent, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE family_id = ?`
	args := []interface{}{familyID}
	if !opts.From.IsZero() {
		query += ` AND start_at >= ?`
		args = append(args, opts.From.UTC())
	}
	if !opts.To.IsZero() {
		query += ` AND start_at < ?`
		args = append(args, opts.To.UTC())
	}
	query += ` ORDER BY start_at ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*event.StandardizedEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// FindBySignature returns all of a family's events carrying the given
// signature. These are merge candidates, not confirmed duplicates.
func (s *SQLiteStore) FindBySignature(ctx context.Context, familyID, signature string) ([]*event.StandardizedEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE family_id = ? AND signature = ?
		 ORDER BY id ASC`,
		familyID, signature)
	if err != nil {
		return nil, fmt.Errorf("querying by signature: %w", err)
	}
	defer rows.Close()

	var events []*event.StandardizedEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (*event.StandardizedEvent, error) {
	ev := &event.StandardizedEvent{}
	var eventType, region string
	var summary, description, location, timeZone sql.NullString
	var childID, childName, parentID, hostName sql.NullString
	var details, recurrence, originalText sql.NullString
	var startAt, endAt time.Time

	err := row.Scan(
		&ev.ID, &ev.UniversalID, &ev.Signature, &ev.FamilyID, &ev.Title, &summary, &description,
		&eventType, &location, &startAt, &endAt, &timeZone, &ev.Date,
		&childID, &childName, &parentID, &hostName,
		&details, &recurrence, &region, &ev.Confidence, &originalText,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ev.Summary = summary.String
	ev.Description = description.String
	ev.EventType = event.Type(eventType)
	ev.Location = location.String
	ev.Start = event.EventTime{DateTime: startAt, TimeZone: timeZone.String}
	ev.End = event.EventTime{DateTime: endAt, TimeZone: timeZone.String}
	ev.DateTime = startAt
	ev.ChildID = childID.String
	ev.ChildName = childName.String
	ev.AttendingParentID = parentID.String
	ev.HostName = hostName.String
	ev.Recurrence = recurrence.String
	ev.Region = event.Region(region)
	ev.OriginalText = originalText.String

	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &ev.ExtraDetails); err != nil {
			return nil, fmt.Errorf("decoding extra details: %w", err)
		}
	}
	return ev, nil
}

func marshalDetails(details map[string]string) (string, error) {
	if len(details) == 0 {
		return "", nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("encoding extra details: %w", err)
	}
	return string(b), nil
}
