package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewStore(StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.(*SQLiteStore)
}

func makeEvent(familyID, title string, start time.Time) event.StandardizedEvent {
	return event.Standardize(event.StandardizedEvent{
		FamilyID:  familyID,
		Title:     title,
		EventType: event.TypeBirthday,
		DateTime:  start,
	}, event.StandardizeOptions{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := makeEvent("fam1", "Emma's 7th Birthday", time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC))
	ev.Location = "Pizza Palace"
	ev.ExtraDetails = map[string]string{"notes": "bring a gift"}

	res, err := s.CreateEvent(ctx, &ev)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if res.Duplicate {
		t.Fatal("first insert flagged as duplicate")
	}
	if ev.ID == 0 {
		t.Error("row id not assigned")
	}

	got, err := s.GetEvent(ctx, ev.UniversalID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Title != "Emma's 7th Birthday" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Location != "Pizza Palace" {
		t.Errorf("location = %q", got.Location)
	}
	if got.Signature != ev.Signature {
		t.Errorf("signature changed across roundtrip")
	}
	if !got.Start.DateTime.Equal(ev.Start.DateTime) {
		t.Errorf("start = %v, want %v", got.Start.DateTime, ev.Start.DateTime)
	}
	if got.ExtraDetails["notes"] != "bring a gift" {
		t.Errorf("extraDetails = %v", got.ExtraDetails)
	}
}

func TestStore_GetEventNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetEvent(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_CreateDetectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Same event entered twice with nearby times of day. The signature
	// matches and the starts sit within the proximity window.
	first := makeEvent("fam1", "Emma's Birthday", time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC))
	second := makeEvent("fam1", "emma's  birthday", time.Date(2026, 4, 12, 12, 0, 0, 0, time.UTC))

	if first.Signature != second.Signature {
		t.Fatalf("signatures differ: %s vs %s", first.Signature, second.Signature)
	}

	if _, err := s.CreateEvent(ctx, &first); err != nil {
		t.Fatalf("first CreateEvent: %v", err)
	}
	res, err := s.CreateEvent(ctx, &second)
	if err != nil {
		t.Fatalf("second CreateEvent: %v", err)
	}
	if !res.Duplicate {
		t.Fatal("expected duplicate")
	}
	if res.Event.UniversalID != first.UniversalID {
		t.Errorf("returned event %s, want existing %s", res.Event.UniversalID, first.UniversalID)
	}

	events, err := s.ListEvents(ctx, "fam1", ListOpts{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("stored %d events, want 1", len(events))
	}
}

func TestStore_DuplicateScopedToFamily(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := makeEvent("fam1", "Soccer Practice", time.Date(2026, 4, 12, 16, 0, 0, 0, time.UTC))
	b := makeEvent("fam2", "Soccer Practice", time.Date(2026, 4, 12, 16, 0, 0, 0, time.UTC))

	if _, err := s.CreateEvent(ctx, &a); err != nil {
		t.Fatalf("CreateEvent fam1: %v", err)
	}
	res, err := s.CreateEvent(ctx, &b)
	if err != nil {
		t.Fatalf("CreateEvent fam2: %v", err)
	}
	if res.Duplicate {
		t.Error("identical event in another family must not be a duplicate")
	}
}

func TestStore_UpdateEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := makeEvent("fam1", "Dentist", time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC))
	if _, err := s.CreateEvent(ctx, &ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	ev.Location = "Smile Clinic"
	if err := s.UpdateEvent(ctx, &ev); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	got, err := s.GetEvent(ctx, ev.UniversalID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Location != "Smile Clinic" {
		t.Errorf("location = %q", got.Location)
	}

	missing := makeEvent("fam1", "Ghost", testNow)
	if err := s.UpdateEvent(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("updating missing event: err = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := makeEvent("fam1", "Playdate", testNow)
	if _, err := s.CreateEvent(ctx, &ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := s.DeleteEvent(ctx, ev.UniversalID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := s.GetEvent(ctx, ev.UniversalID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEvent(ctx, ev.UniversalID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListEventsOrderAndRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	late := makeEvent("fam1", "Camp", time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	early := makeEvent("fam1", "Recital", time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC))
	for _, ev := range []*event.StandardizedEvent{&late, &early} {
		if _, err := s.CreateEvent(ctx, ev); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := s.ListEvents(ctx, "fam1", ListOpts{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Title != "Recital" || events[1].Title != "Camp" {
		t.Errorf("wrong order: %s, %s", events[0].Title, events[1].Title)
	}

	events, err = s.ListEvents(ctx, "fam1", ListOpts{
		From: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ListEvents with From: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Camp" {
		t.Errorf("range filter returned %d events", len(events))
	}
}

func TestClosestDuplicate(t *testing.T) {
	base := time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC)
	near := makeEvent("fam1", "Party", base.Add(30*time.Minute))
	far := makeEvent("fam1", "Party", base.Add(2*time.Hour))

	got := closestDuplicate([]*event.StandardizedEvent{&far, &near}, &event.StandardizedEvent{
		Date:  "2026-04-12",
		Start: event.EventTime{DateTime: base},
	})
	if got == nil {
		t.Fatal("expected a duplicate")
	}
	if got.UniversalID != near.UniversalID {
		t.Error("closest candidate should win")
	}
}

func TestSameEventInstance(t *testing.T) {
	mk := func(date string, start time.Time) *event.StandardizedEvent {
		return &event.StandardizedEvent{Date: date, Start: event.EventTime{DateTime: start}}
	}

	a := mk("2026-04-12", time.Date(2026, 4, 12, 23, 30, 0, 0, time.UTC))
	crossMidnight := mk("2026-04-13", time.Date(2026, 4, 13, 0, 30, 0, 0, time.UTC))
	if !sameEventInstance(a, crossMidnight) {
		t.Error("starts 1h apart should match")
	}

	nextDay := mk("2026-04-13", time.Date(2026, 4, 13, 14, 0, 0, 0, time.UTC))
	if sameEventInstance(a, nextDay) {
		t.Error("starts outside the window must not match")
	}

	b := mk("2026-04-12", time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC))
	sameDayFar := mk("2026-04-12", time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC))
	if sameEventInstance(b, sameDayFar) {
		t.Error("same calendar day outside the window must not match")
	}
	sameDayNear := mk("2026-04-12", time.Date(2026, 4, 12, 12, 0, 0, 0, time.UTC))
	if !sameEventInstance(b, sameDayNear) {
		t.Error("starts 2h apart should match")
	}
}

func TestStore_SameDayOutsideWindowStaysDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A morning and a midday session of the same class: the signatures
	// match, but the starts are 3.5h apart.
	morning := makeEvent("fam1", "Swim Class", time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC))
	midday := makeEvent("fam1", "Swim Class", time.Date(2026, 4, 12, 12, 30, 0, 0, time.UTC))
	if morning.Signature != midday.Signature {
		t.Fatalf("signatures differ: %s vs %s", morning.Signature, midday.Signature)
	}

	if _, err := s.CreateEvent(ctx, &morning); err != nil {
		t.Fatalf("first CreateEvent: %v", err)
	}
	res, err := s.CreateEvent(ctx, &midday)
	if err != nil {
		t.Fatalf("second CreateEvent: %v", err)
	}
	if res.Duplicate {
		t.Fatal("starts 3.5h apart must stay distinct")
	}

	events, err := s.ListEvents(ctx, "fam1", ListOpts{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("stored %d events, want 2", len(events))
	}

	// The corrective sweep honors the same window.
	pairs, err := s.FindLatentDuplicates(ctx, "fam1")
	if err != nil {
		t.Fatalf("FindLatentDuplicates: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d pairs, want 0", len(pairs))
	}
}

func TestStore_SweepResolvesLatentDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Simulate the insert race: both copies pass the duplicate check and
	// land, so we bypass CreateEvent and write rows directly.
	first := makeEvent("fam1", "Emma's Birthday", time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC))
	second := makeEvent("fam1", "Emma's Birthday", time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC))
	if err := s.insertEvent(ctx, &first); err != nil {
		t.Fatalf("insertEvent: %v", err)
	}
	if err := s.insertEvent(ctx, &second); err != nil {
		t.Fatalf("insertEvent: %v", err)
	}

	pairs, err := s.FindLatentDuplicates(ctx, "fam1")
	if err != nil {
		t.Fatalf("FindLatentDuplicates: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].Keep.UniversalID != first.UniversalID {
		t.Error("survivor should be the earliest stored row")
	}
	if pairs[0].Drop.UniversalID != second.UniversalID {
		t.Error("later row should be dropped")
	}

	removed, err := s.ResolveLatentDuplicates(ctx, "fam1")
	if err != nil {
		t.Fatalf("ResolveLatentDuplicates: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	events, err := s.ListEvents(ctx, "fam1", ListOpts{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].UniversalID != first.UniversalID {
		t.Errorf("after sweep: %d events", len(events))
	}
}

func TestStore_SweepLeavesDistinctEventsAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := makeEvent("fam1", "Swim Class", time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC))
	b := makeEvent("fam1", "Swim Class", time.Date(2026, 4, 19, 9, 0, 0, 0, time.UTC))
	if err := s.insertEvent(ctx, &a); err != nil {
		t.Fatalf("insertEvent: %v", err)
	}
	if err := s.insertEvent(ctx, &b); err != nil {
		t.Fatalf("insertEvent: %v", err)
	}

	pairs, err := s.FindLatentDuplicates(ctx, "fam1")
	if err != nil {
		t.Fatalf("FindLatentDuplicates: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d pairs, want 0: different dates carry different signatures", len(pairs))
	}
}

func TestStore_ReviewQueue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	candidate := makeEvent("fam1", "Something on Tuesday", testNow)
	id, err := s.EnqueueReview(ctx, &ReviewItem{
		FamilyID:   "fam1",
		RawText:    "something on tuesday maybe?",
		Reason:     "low confidence",
		Confidence: 0.3,
		Candidate:  &candidate,
	})
	if err != nil {
		t.Fatalf("EnqueueReview: %v", err)
	}
	if id == 0 {
		t.Fatal("review id not assigned")
	}

	items, err := s.ListPendingReviews(ctx, "fam1", 10)
	if err != nil {
		t.Fatalf("ListPendingReviews: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d pending items, want 1", len(items))
	}
	if items[0].Candidate == nil || items[0].Candidate.UniversalID != candidate.UniversalID {
		t.Error("candidate event lost in roundtrip")
	}
	if items[0].Status != ReviewPending {
		t.Errorf("status = %s", items[0].Status)
	}

	if err := s.ResolveReview(ctx, id, ReviewApproved, candidate.UniversalID); err != nil {
		t.Fatalf("ResolveReview: %v", err)
	}

	items, err = s.ListPendingReviews(ctx, "fam1", 10)
	if err != nil {
		t.Fatalf("ListPendingReviews: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d pending items after resolve, want 0", len(items))
	}

	if err := s.ResolveReview(ctx, id, ReviewApproved, ""); err == nil {
		t.Error("resolving an already resolved item should fail")
	}
}

func TestStore_GetReview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.EnqueueReview(ctx, &ReviewItem{FamilyID: "fam1", RawText: "??", Reason: "low confidence"})
	if err != nil {
		t.Fatalf("EnqueueReview: %v", err)
	}

	item, err := s.GetReview(ctx, id)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if item.ID != id || item.FamilyID != "fam1" || item.Status != ReviewPending {
		t.Errorf("item = %+v", item)
	}

	if _, err := s.GetReview(ctx, id+1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item: err = %v, want ErrNotFound", err)
	}

	// Resolved items stay readable by id.
	if err := s.ResolveReview(ctx, id, ReviewRejected, ""); err != nil {
		t.Fatalf("ResolveReview: %v", err)
	}
	item, err = s.GetReview(ctx, id)
	if err != nil {
		t.Fatalf("GetReview after resolve: %v", err)
	}
	if item.Status != ReviewRejected {
		t.Errorf("status = %s, want rejected", item.Status)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := makeEvent("fam1", "Recital", testNow)
	if _, err := s.CreateEvent(ctx, &ev); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if _, err := s.EnqueueReview(ctx, &ReviewItem{FamilyID: "fam1", RawText: "??", Reason: "low confidence"}); err != nil {
		t.Fatalf("EnqueueReview: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.EventCount != 1 {
		t.Errorf("eventCount = %d", stats.EventCount)
	}
	if stats.FamilyCount != 1 {
		t.Errorf("familyCount = %d", stats.FamilyCount)
	}
	if stats.PendingReviews != 1 {
		t.Errorf("pendingReviews = %d", stats.PendingReviews)
	}
}
