package visits

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "visits.db"), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordCountAndUnique(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithSalt("pepper"))

	for _, addr := range []string{"203.0.113.7:51000", "203.0.113.7:51001", "198.51.100.2:22"} {
		if _, err := s.Record(ctx, Visit{Transport: "ssh", Addr: addr, User: "guest"}); err != nil {
			t.Fatalf("Record(%s): %v", addr, err)
		}
	}

	if n, err := s.Count(ctx); err != nil || n != 3 {
		t.Errorf("Count() = %d, %v; want 3", n, err)
	}
	if n, err := s.Unique(ctx); err != nil || n != 2 {
		t.Errorf("Unique() = %d, %v; want 2 (ports ignored)", n, err)
	}
	if got := s.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
}

func TestRecordNeverStoresAddress(t *testing.T) {
	s := openTestStore(t, WithSalt("pepper"))
	v, err := s.Record(context.Background(), Visit{Transport: "web", Addr: "192.0.2.10:443"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Addr != "" {
		t.Errorf("returned visit still carries the address %q", v.Addr)
	}
	if len(v.AddrHash) != 16 {
		t.Errorf("hash %q is %d chars, want 16", v.AddrHash, len(v.AddrHash))
	}
	if v.ID == "" {
		t.Error("visit has no ID")
	}

	other := openTestStore(t, WithSalt("salt"))
	if other.HashAddr("192.0.2.10") == v.AddrHash {
		t.Error("hash does not depend on the salt")
	}
}

func TestLast(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	s := openTestStore(t, WithClock(func() time.Time { return now }))

	if _, err := s.Last(ctx); !errors.Is(err, ErrNoVisits) {
		t.Fatalf("Last on empty log: %v, want ErrNoVisits", err)
	}

	s.Record(ctx, Visit{Transport: "ssh", User: "first"})
	now = now.Add(time.Minute)
	s.Record(ctx, Visit{Transport: "web", User: "second"})

	v, err := s.Last(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.User != "second" || v.Transport != "web" || !v.At.Equal(now) {
		t.Errorf("Last() = %+v, want the web visit at %v", v, now)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	s := openTestStore(t, WithClock(func() time.Time { return now }))

	s.Record(ctx, Visit{Transport: "ssh", At: now.Add(-48 * time.Hour)})
	s.Record(ctx, Visit{Transport: "ssh", At: now.Add(-time.Hour)})

	removed, err := s.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count after prune = %d, want 1", n)
	}
}

func TestClosedStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "visits.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
	if _, err := s.Record(context.Background(), Visit{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Record after Close = %v, want ErrClosed", err)
	}
	if _, err := s.Count(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Count after Close = %v, want ErrClosed", err)
	}
	if got := s.Total(); got != -1 {
		t.Errorf("Total after Close = %d, want -1", got)
	}
}
