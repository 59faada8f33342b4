package history_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/courier/internal/history"
)

func TestDiffEntries_Identical(t *testing.T) {
	t.Parallel()
	a := &history.Entry{ID: "a", Status: 200, ResponseBody: json.RawMessage(`{"x":1}`)}
	b := &history.Entry{ID: "b", Status: 200, ResponseBody: json.RawMessage(`{ "x": 1 }`)}

	d := history.DiffEntries(a, b)
	if !d.Identical {
		t.Errorf("expected identical, got chunks %+v", d.Chunks)
	}
	if len(d.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(d.Chunks))
	}
}

func TestDiffEntries_ReportsChanges(t *testing.T) {
	t.Parallel()
	a := &history.Entry{ID: "a", Status: 200, ResponseBody: json.RawMessage(`{"name":"abc","count":1}`)}
	b := &history.Entry{ID: "b", Status: 500, ResponseBody: json.RawMessage(`{"name":"xyz","count":1}`)}

	d := history.DiffEntries(a, b)
	if d.Identical {
		t.Fatal("expected a difference")
	}
	if d.BaseStatus != 200 || d.HeadStatus != 500 {
		t.Errorf("unexpected statuses %d -> %d", d.BaseStatus, d.HeadStatus)
	}

	var added, removed string
	for _, c := range d.Chunks {
		switch c.Type {
		case "added":
			added += c.Content
		case "removed":
			removed += c.Content
		}
	}
	if !strings.Contains(added, "xyz") {
		t.Errorf("expected xyz in added chunks, got %q", added)
	}
	if !strings.Contains(removed, "abc") {
		t.Errorf("expected abc in removed chunks, got %q", removed)
	}
}

func TestDiffEntries_StatusOnlyChange(t *testing.T) {
	t.Parallel()
	a := &history.Entry{ID: "a", Status: 200, ResponseBody: json.RawMessage(`{}`)}
	b := &history.Entry{ID: "b", Status: 404, ResponseBody: json.RawMessage(`{}`)}

	d := history.DiffEntries(a, b)
	if d.Identical {
		t.Error("status change should not be identical")
	}
	if len(d.Chunks) != 0 {
		t.Errorf("expected no body chunks, got %+v", d.Chunks)
	}
}

func TestStore_Diff(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	a := sampleEntry("https://example.com", 200, `{"v":1}`)
	b := sampleEntry("https://example.com", 200, `{"v":2}`)
	for _, e := range []*history.Entry{a, b} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	d, err := store.Diff(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if d.BaseID != a.ID || d.HeadID != b.ID {
		t.Errorf("unexpected ids %s -> %s", d.BaseID, d.HeadID)
	}
	if d.Identical {
		t.Error("expected bodies to differ")
	}

	if _, err := store.Diff(ctx, a.ID, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
