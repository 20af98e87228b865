package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// ReviewStatus is the lifecycle state of a review queue entry.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewItem is a low-confidence extraction parked for a human decision.
// Candidate carries the event as extracted, so approval can store it
// without re-running the pipeline.
type ReviewItem struct {
	ID              int64
	FamilyID        string
	RawText         string
	Reason          string
	Confidence      float64
	Candidate       *event.StandardizedEvent
	Status          ReviewStatus
	ResolvedEventID string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

// EnqueueReview parks an extraction in the review queue.
func (s *SQLiteStore) EnqueueReview(ctx context.Context, item *ReviewItem) (int64, error) {
	if item.Status == "" {
		item.Status = ReviewPending
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	candidate := ""
	if item.Candidate != nil {
		b, err := json.Marshal(item.Candidate)
		if err != nil {
			return 0, fmt.Errorf("encoding review candidate: %w", err)
		}
		candidate = string(b)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO review_queue (family_id, raw_text, reason, confidence, candidate, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.FamilyID, item.RawText, item.Reason, item.Confidence, candidate, string(item.Status), item.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("enqueueing review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting review id: %w", err)
	}
	item.ID = id
	return id, nil
}

// GetReview returns one review item by id, regardless of status.
func (s *SQLiteStore) GetReview(ctx context.Context, id int64) (*ReviewItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, family_id, raw_text, reason, confidence, candidate, status, resolved_event_id, created_at, resolved_at
		 FROM review_queue
		 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting review %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting review %d: %w", id, err)
		}
		return nil, ErrNotFound
	}
	item, err := scanReviewItem(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning review row: %w", err)
	}
	return item, nil
}

// ListPendingReviews returns a family's open review items, oldest first.
func (s *SQLiteStore) ListPendingReviews(ctx context.Context, familyID string, limit int) ([]*ReviewItem, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, family_id, raw_text, reason, confidence, candidate, status, resolved_event_id, created_at, resolved_at
		 FROM review_queue
		 WHERE family_id = ? AND status = 'pending'
		 ORDER BY id ASC
		 LIMIT ?`,
		familyID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending reviews: %w", err)
	}
	defer rows.Close()

	var items []*ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ResolveReview closes a review item. For approvals, resolvedEventID
// records the universal ID of the event the approval produced.
func (s *SQLiteStore) ResolveReview(ctx context.Context, id int64, status ReviewStatus, resolvedEventID string) error {
	if status != ReviewApproved && status != ReviewRejected {
		return fmt.Errorf("resolving review %d: invalid status %q", id, status)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE review_queue SET status = ?, resolved_event_id = ?, resolved_at = ?
		 WHERE id = ? AND status = 'pending'`,
		string(status), resolvedEventID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("resolving review %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking resolve result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("resolving review %d: no pending item", id)
	}
	return nil
}

func scanReviewItem(rows *sql.Rows) (*ReviewItem, error) {
	item := &ReviewItem{}
	var status string
	var candidate, resolvedEventID sql.NullString
	var resolvedAt sql.NullTime

	err := rows.Scan(&item.ID, &item.FamilyID, &item.RawText, &item.Reason, &item.Confidence,
		&candidate, &status, &resolvedEventID, &item.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	item.Status = ReviewStatus(status)
	item.ResolvedEventID = resolvedEventID.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		item.ResolvedAt = &t
	}
	if candidate.Valid && candidate.String != "" {
		var ev event.StandardizedEvent
		if err := json.Unmarshal([]byte(candidate.String), &ev); err != nil {
			return nil, fmt.Errorf("decoding review candidate: %w", err)
		}
		item.Candidate = &ev
	}
	return item, nil
}
