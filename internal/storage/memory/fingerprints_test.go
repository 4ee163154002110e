package memory

import (
	"context"
	"sync"
	"testing"
)

func TestFingerprintStore(t *testing.T) {
	ctx := context.Background()
	f := NewFingerprintStore()

	if _, ok, _ := f.Get(ctx, "s1", "a.go"); ok {
		t.Error("empty store should have no entry")
	}

	if err := f.Set(ctx, "s1", "a.go", "sha256:1"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set(ctx, "s2", "a.go", "sha256:2"); err != nil {
		t.Fatal(err)
	}

	if h, ok, _ := f.Get(ctx, "s1", "a.go"); !ok || h != "sha256:1" {
		t.Errorf("Get(s1) = %q, %v", h, ok)
	}
	if h, ok, _ := f.Get(ctx, "s2", "a.go"); !ok || h != "sha256:2" {
		t.Errorf("Get(s2) = %q, %v", h, ok)
	}

	snap, _ := f.Snapshot(ctx, "s1")
	snap["a.go"] = "tampered"
	if h, _, _ := f.Get(ctx, "s1", "a.go"); h != "sha256:1" {
		t.Error("Snapshot returned shared map")
	}

	_ = f.Delete(ctx, "s1", "a.go")
	if _, ok, _ := f.Get(ctx, "s1", "a.go"); ok {
		t.Error("Delete did not remove entry")
	}

	_ = f.Clear(ctx, "s2")
	if snap, _ := f.Snapshot(ctx, "s2"); len(snap) != 0 {
		t.Errorf("Clear left %v", snap)
	}
}

func TestFingerprintStoreValidation(t *testing.T) {
	f := NewFingerprintStore()
	if err := f.Set(context.Background(), "", "a", "h"); err == nil {
		t.Error("expected error for empty session ID")
	}
	if err := f.Set(context.Background(), "s", "", "h"); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFingerprintStoreConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	f := NewFingerprintStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := string(rune('A' + i%5))
			_ = f.Set(ctx, sid, "shared.go", sid)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		sid := string(rune('A' + i))
		if h, ok, _ := f.Get(ctx, sid, "shared.go"); !ok || h != sid {
			t.Errorf("session %s hash = %q", sid, h)
		}
	}
}
