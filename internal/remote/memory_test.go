package remote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "students/s1", map[string]any{"id": "s1", "grade": "8"}); err != nil {
		t.Fatal(err)
	}

	raw, err := m.Get(ctx, "students/s1")
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got["grade"] != "8" {
		t.Fatalf("got %+v", got)
	}

	raw, err = m.Get(ctx, "students/missing")
	if err != nil {
		t.Fatal(err)
	}
	if raw != nil {
		t.Fatalf("missing node should be nil, got %s", raw)
	}
}

func TestMemoryUpdateBatch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.Update(ctx, "students", map[string]any{
		"/s1": map[string]any{"id": "s1"},
		"/s2": map[string]any{"id": "s2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.UpdateCalls != 1 {
		t.Fatalf("batch should count as one write, got %d", m.UpdateCalls)
	}

	raw, _ := m.Get(ctx, "students")
	var children map[string]json.RawMessage
	if err := json.Unmarshal(raw, &children); err != nil {
		t.Fatal(err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children", len(children))
	}
}

func TestMemoryPushGeneratesUniqueKeys(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	k1, err := m.Push(ctx, "attendance", map[string]any{"studentId": "s1"})
	if err != nil {
		t.Fatal(err)
	}
	k2, err := m.Push(ctx, "attendance", map[string]any{"studentId": "s2"})
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k2 {
		t.Fatal("push keys must be unique")
	}
	if !ValidKey(k1) {
		t.Fatalf("generated key %q is not a valid key", k1)
	}
}

func TestMemoryQueryEqual(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Set(ctx, "teachers/t1", map[string]any{"id": "t1", "username": "cruz"})
	_ = m.Set(ctx, "teachers/t2", map[string]any{"id": "t2", "username": "reyes"})

	out, err := m.QueryEqual(ctx, "teachers", "username", "reyes")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d matches", len(out))
	}
	if _, ok := out["t2"]; !ok {
		t.Fatalf("wrong match: %v", out)
	}

	out, err = m.QueryEqual(ctx, "teachers", "username", "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Fatalf("no-match should be nil, got %v", out)
	}
}

func TestMemoryErrInjection(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("network down")
	m.Err = boom

	if err := m.Set(ctx, "x", 1); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if _, err := m.Get(ctx, "x"); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if m.WriteCalls() != 0 {
		t.Fatalf("failed writes must not count, got %d", m.WriteCalls())
	}
}

func TestValidKey(t *testing.T) {
	for _, ok := range []string{"s1", "S2026-ABC", "-Nabc123"} {
		if !ValidKey(ok) {
			t.Errorf("ValidKey(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "a.b", "a#b", "a$b", "a[b", "a]b", "a/b"} {
		if ValidKey(bad) {
			t.Errorf("ValidKey(%q) = true", bad)
		}
	}
}
