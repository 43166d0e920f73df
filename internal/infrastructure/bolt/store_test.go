package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
)

func openTestStore(t *testing.T, failureBucket string) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "contact.db"), "submissions", failureBucket)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStorePutGet(t *testing.T) {
	store := openTestStore(t, "")
	ctx := context.Background()

	submission := domain.Submission{Email: "a@x.com", Name: "Ann", Message: "Hi", Timestamp: "2024-05-01T10:30:00.250000"}
	if err := store.Put(ctx, submission); err != nil {
		t.Fatalf("put submission: %v", err)
	}

	loaded, ok, err := store.Get(ctx, "a@x.com", "2024-05-01T10:30:00.250000")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if !ok {
		t.Fatal("expected submission to exist")
	}
	if loaded != submission {
		t.Fatalf("expected %+v, got %+v", submission, loaded)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t, "")

	_, ok, err := store.Get(context.Background(), "nobody@x.com", "2024-05-01T00:00:00")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if ok {
		t.Fatal("expected missing submission")
	}
}

func TestStorePutOverwritesSameKey(t *testing.T) {
	store := openTestStore(t, "")
	ctx := context.Background()

	first := domain.Submission{Email: "a@x.com", Name: "Ann", Message: "first", Timestamp: "2024-05-01T00:00:00"}
	second := first
	second.Message = "second"

	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("put second: %v", err)
	}

	list, err := store.ListByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Message != "second" {
		t.Fatalf("expected single overwritten record, got %+v", list)
	}
}

func TestStoreListByEmailOrdersByTimestamp(t *testing.T) {
	store := openTestStore(t, "")
	ctx := context.Background()

	for _, ts := range []string{"2024-05-02T00:00:00", "2024-05-01T00:00:00.500000", "2024-05-01T00:00:00"} {
		if err := store.Put(ctx, domain.Submission{Email: "a@x.com", Timestamp: ts}); err != nil {
			t.Fatalf("put %s: %v", ts, err)
		}
	}
	if err := store.Put(ctx, domain.Submission{Email: "a@x.com.au", Timestamp: "2024-01-01T00:00:00"}); err != nil {
		t.Fatalf("put other email: %v", err)
	}

	list, err := store.ListByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2024-05-01T00:00:00", "2024-05-01T00:00:00.500000", "2024-05-02T00:00:00"}
	if len(list) != len(want) {
		t.Fatalf("expected %d records, got %+v", len(want), list)
	}
	for i, ts := range want {
		if list[i].Timestamp != ts {
			t.Fatalf("record %d: expected %s, got %s", i, ts, list[i].Timestamp)
		}
	}
}

func TestStoreListByEmailDoesNotMatchLongerEmail(t *testing.T) {
	store := openTestStore(t, "")
	ctx := context.Background()

	for _, sub := range []domain.Submission{
		{Email: "a", Timestamp: "2024-05-01T00:00:00"},
		{Email: "a\x00b", Timestamp: "2024-05-01T00:00:01"},
		{Email: "a\x00", Timestamp: "2024-05-01T00:00:02"},
	} {
		if err := store.Put(ctx, sub); err != nil {
			t.Fatalf("put %q: %v", sub.Email, err)
		}
	}

	list, err := store.ListByEmail(ctx, "a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Email != "a" {
		t.Fatalf("expected only the exact email, got %+v", list)
	}

	_, ok, err := store.Get(ctx, "a", "\x00b2024-05-01T00:00:01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected no record for a key spliced across email and timestamp")
	}
}

func TestStoreEmptyEmail(t *testing.T) {
	store := openTestStore(t, "")
	ctx := context.Background()

	if err := store.Put(ctx, domain.Submission{Timestamp: "2024-05-01T00:00:00"}); err != nil {
		t.Fatalf("put empty submission: %v", err)
	}
	_, ok, err := store.Get(ctx, "", "2024-05-01T00:00:00")
	if err != nil || !ok {
		t.Fatalf("expected empty-email record, ok=%v err=%v", ok, err)
	}
}

func TestStoreRecordFailure(t *testing.T) {
	store := openTestStore(t, "failed_notifications")
	ctx := context.Background()

	failure := domain.NotificationFailure{
		ID:                  "f-1",
		Kind:                domain.NotificationAcknowledgement,
		From:                "noreply@example.com",
		To:                  []string{"a@x.com"},
		Subject:             "Thank you for contacting us",
		SubmissionEmail:     "a@x.com",
		SubmissionTimestamp: "2024-05-01T00:00:00",
		Error:               "bounce",
		CreatedAt:           time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Record(ctx, failure); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	failures, err := store.Failures(ctx)
	if err != nil {
		t.Fatalf("list failures: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	got := failures[0]
	if got.ID != "f-1" || got.Kind != domain.NotificationAcknowledgement || got.Error != "bounce" {
		t.Fatalf("unexpected failure: %+v", got)
	}
	if !got.CreatedAt.Equal(failure.CreatedAt) {
		t.Fatalf("expected createdAt %v, got %v", failure.CreatedAt, got.CreatedAt)
	}
}

func TestStoreRecordWithoutJournal(t *testing.T) {
	store := openTestStore(t, "")

	err := store.Record(context.Background(), domain.NotificationFailure{ID: "f-1"})
	if err == nil {
		t.Fatal("expected error when journal bucket is not configured")
	}
}

func TestStoreCanceledContext(t *testing.T) {
	store := openTestStore(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, domain.Submission{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", "submissions", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "x.db"), "", ""); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}

func TestStorePingAfterClose(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "contact.db"), "submissions", "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail after close")
	}
}

func TestStoreNilReadsReturnError(t *testing.T) {
	var store *Store
	ctx := context.Background()

	if _, _, err := store.Get(ctx, "a@x.com", "2024-05-01T00:00:00"); err == nil {
		t.Fatal("expected get error on nil store")
	}
	if _, err := store.ListByEmail(ctx, "a@x.com"); err == nil {
		t.Fatal("expected list error on nil store")
	}
	if _, err := store.Failures(ctx); err == nil {
		t.Fatal("expected failures error on nil store")
	}
	if err := store.Record(ctx, domain.NotificationFailure{ID: "f-1"}); err == nil {
		t.Fatal("expected record error on nil store")
	}
}
