package profile

import (
	"context"
	"path/filepath"
	"testing"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStoreRoundTrip(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	got, err := store.Get(ctx, "example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for an absent profile, got %+v", got)
	}

	p := BrandProfile{
		SiteKey:        "example.com",
		BrandVoice:     "playful",
		Industry:       "retail",
		TargetKeywords: []string{"winter boots", "sale"},
		KeywordHistory: []string{"winter boots"},
		LastSolution:   "Seasonal Hub",
	}
	if err := store.Put(ctx, p); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err = store.Get(ctx, "example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a profile")
	}
	if got.BrandVoice != "playful" || got.LastSolution != "Seasonal Hub" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if len(got.TargetKeywords) != 2 || got.TargetKeywords[0] != "winter boots" {
		t.Fatalf("keyword slices lost, got %+v", got.TargetKeywords)
	}
}

func TestSQLStoreUpsertOverwrites(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, BrandProfile{SiteKey: "example.com", BrandVoice: "first"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, BrandProfile{SiteKey: "example.com", BrandVoice: "second", KeywordHistory: []string{"kw"}}); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, err := store.Get(ctx, "example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BrandVoice != "second" || len(got.KeywordHistory) != 1 {
		t.Fatalf("upsert lost data: %+v", got)
	}
}

func TestSQLStoreIsolatesSites(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, BrandProfile{SiteKey: "a.com", Industry: "one"}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := store.Put(ctx, BrandProfile{SiteKey: "b.com", Industry: "two"}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	a, err := store.Get(ctx, "a.com")
	if err != nil || a == nil {
		t.Fatalf("get a: %v %+v", err, a)
	}
	if a.Industry != "one" {
		t.Fatalf("cross-site bleed: %+v", a)
	}
}
