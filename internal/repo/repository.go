// Package repo wraps the event store with an advisory read cache and a
// synchronous change feed. The store stays the source of truth; the
// cache only short-circuits repeat reads, and subscribers observe every
// mutation in registration order.
package repo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/extract"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/metrics"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/store"
)

// DefaultConfidenceThreshold routes extractions below it to the manual
// review queue instead of the store.
const DefaultConfidenceThreshold = 0.5

// DefaultCacheTTL bounds how long a cached read can go without
// revalidation against the store.
const DefaultCacheTTL = 5 * time.Minute

// ChangeKind labels a mutation observed by subscribers.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one store mutation.
type Change struct {
	Kind  ChangeKind
	Event event.StandardizedEvent
}

// Subscriber receives changes synchronously, in registration order. A
// failing or panicking subscriber never blocks the mutation or the
// subscribers after it.
type Subscriber func(Change) error

// IngestResult reports what happened to one piece of ingested text.
type IngestResult struct {
	// Event is set when the extraction was stored, or when it collided
	// with an existing event (then it is the stored one).
	Event     *event.StandardizedEvent
	Duplicate bool

	// QueuedForReview is set when confidence fell below the threshold;
	// ReviewID identifies the queue entry.
	QueuedForReview bool
	ReviewID        int64
}

// Options tunes a Repository. The zero value is usable.
type Options struct {
	Pipeline            *extract.Pipeline
	ConfidenceThreshold float64
	CacheTTL            time.Duration
	Location            *time.Location
	Now                 func() time.Time
}

// Repository is the single access path for event reads and writes.
type Repository struct {
	store     store.Store
	cache     *gocache.Cache
	pipeline  *extract.Pipeline
	threshold float64
	loc       *time.Location
	now       func() time.Time

	mu   sync.Mutex
	subs []Subscriber
}

// New creates a Repository over the given store.
func New(st store.Store, opts Options) *Repository {
	if opts.Pipeline == nil {
		opts.Pipeline = extract.NewPipeline()
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Repository{
		store:     st,
		cache:     gocache.New(opts.CacheTTL, 2*opts.CacheTTL),
		pipeline:  opts.Pipeline,
		threshold: opts.ConfidenceThreshold,
		loc:       opts.Location,
		now:       opts.Now,
	}
}

// Subscribe registers a change subscriber. Subscribers are notified
// synchronously and in registration order on every mutation.
func (r *Repository) Subscribe(fn Subscriber) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

// Ingest runs the extraction pipeline over text, standardizes the
// result, and either stores it or parks it for manual review when
// confidence falls below the threshold.
func (r *Repository) Ingest(ctx context.Context, text string, family event.FamilyContext) (*IngestResult, error) {
	ex := r.pipeline.Extract(text, family)
	ev := event.FromExtracted(ex, family.FamilyID, event.StandardizeOptions{
		Location: r.loc,
		Now:      r.now,
	})

	if ev.Confidence < r.threshold {
		metrics.LowConfidenceTotal.Inc()
		id, err := r.store.EnqueueReview(ctx, &store.ReviewItem{
			FamilyID:   family.FamilyID,
			RawText:    ex.OriginalText,
			Reason:     fmt.Sprintf("confidence %.2f below threshold %.2f", ev.Confidence, r.threshold),
			Confidence: ev.Confidence,
			Candidate:  &ev,
		})
		if err != nil {
			return nil, fmt.Errorf("queueing for review: %w", err)
		}
		return &IngestResult{QueuedForReview: true, ReviewID: id}, nil
	}

	res, err := r.Create(ctx, &ev)
	if err != nil {
		return nil, err
	}
	return &IngestResult{Event: res.Event, Duplicate: res.Duplicate}, nil
}

// Create stores a standardized event. Duplicates are returned as-is and
// produce no change notification.
func (r *Repository) Create(ctx context.Context, ev *event.StandardizedEvent) (*store.CreateResult, error) {
	res, err := r.store.CreateEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	if res.Duplicate {
		return res, nil
	}
	r.cache.Set(res.Event.UniversalID, cloneEvent(res.Event), gocache.DefaultExpiration)
	r.notify(Change{Kind: ChangeCreated, Event: *res.Event})
	return res, nil
}

// Get reads an event, serving repeat reads from the cache. Callers get
// a private copy; editing it in place never reaches the cached entry.
func (r *Repository) Get(ctx context.Context, universalID string) (*event.StandardizedEvent, error) {
	if cached, ok := r.cache.Get(universalID); ok {
		metrics.CacheHits.Inc()
		return cloneEvent(cached.(*event.StandardizedEvent)), nil
	}
	metrics.CacheMisses.Inc()

	ev, err := r.store.GetEvent(ctx, universalID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(universalID, cloneEvent(ev), gocache.DefaultExpiration)
	return ev, nil
}

// Update rewrites an event and refreshes the cache.
func (r *Repository) Update(ctx context.Context, ev *event.StandardizedEvent) error {
	if err := r.store.UpdateEvent(ctx, ev); err != nil {
		return err
	}
	r.cache.Set(ev.UniversalID, cloneEvent(ev), gocache.DefaultExpiration)
	r.notify(Change{Kind: ChangeUpdated, Event: *ev})
	return nil
}

// Delete removes an event and evicts it from the cache.
func (r *Repository) Delete(ctx context.Context, universalID string) error {
	ev, err := r.store.GetEvent(ctx, universalID)
	if err != nil {
		return err
	}
	if err := r.store.DeleteEvent(ctx, universalID); err != nil {
		return err
	}
	r.cache.Delete(universalID)
	r.notify(Change{Kind: ChangeDeleted, Event: *ev})
	return nil
}

// List returns a family's events straight from the store.
func (r *Repository) List(ctx context.Context, familyID string, opts store.ListOpts) ([]*event.StandardizedEvent, error) {
	return r.store.ListEvents(ctx, familyID, opts)
}

// Sweep merges latent duplicates and invalidates the cache, since
// merged rows may have been cached.
func (r *Repository) Sweep(ctx context.Context, familyID string) (int, error) {
	removed, err := r.store.ResolveLatentDuplicates(ctx, familyID)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		r.InvalidateAll()
	}
	return removed, nil
}

// PendingReviews lists a family's open review items.
func (r *Repository) PendingReviews(ctx context.Context, familyID string, limit int) ([]*store.ReviewItem, error) {
	return r.store.ListPendingReviews(ctx, familyID, limit)
}

// ApproveReview stores the parked candidate event and closes the item.
// The item is looked up by id, so approval works at any queue depth.
func (r *Repository) ApproveReview(ctx context.Context, id int64) (*store.CreateResult, error) {
	item, err := r.store.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading review %d: %w", id, err)
	}
	if item.Status != store.ReviewPending {
		return nil, fmt.Errorf("approving review %d: already %s", id, item.Status)
	}
	if item.Candidate == nil {
		return nil, fmt.Errorf("approving review %d: no candidate event", id)
	}
	res, err := r.Create(ctx, item.Candidate)
	if err != nil {
		return nil, fmt.Errorf("storing approved event: %w", err)
	}
	if err := r.store.ResolveReview(ctx, id, store.ReviewApproved, res.Event.UniversalID); err != nil {
		return nil, err
	}
	return res, nil
}

// RejectReview closes the item without storing anything.
func (r *Repository) RejectReview(ctx context.Context, id int64) error {
	return r.store.ResolveReview(ctx, id, store.ReviewRejected, "")
}

// InvalidateAll drops every cached entry.
func (r *Repository) InvalidateAll() {
	r.cache.Flush()
}

// cloneEvent copies an event so cached entries are never shared with
// callers or writers.
func cloneEvent(ev *event.StandardizedEvent) *event.StandardizedEvent {
	cp := *ev
	if ev.ExtraDetails != nil {
		cp.ExtraDetails = make(map[string]string, len(ev.ExtraDetails))
		for k, v := range ev.ExtraDetails {
			cp.ExtraDetails[k] = v
		}
	}
	return &cp
}

// notify delivers a change to every subscriber, in order. Errors and
// panics are contained per subscriber so one bad consumer cannot stall
// the mutation path or starve the consumers after it.
func (r *Repository) notify(change Change) {
	r.mu.Lock()
	subs := make([]Subscriber, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if p := recover(); p != nil {
					fmt.Fprintf(os.Stderr, "parentcal: subscriber panic: %v\n", p)
				}
			}()
			if err := fn(change); err != nil {
				fmt.Fprintf(os.Stderr, "parentcal: subscriber error: %v\n", err)
			}
		}()
	}
}
