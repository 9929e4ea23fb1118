package services

import (
	"context"
	"testing"

	"traklio/internal/core"
	"traklio/internal/store"
)

func TestExpenseServiceCreateAndList(t *testing.T) {
	svc := NewExpenseService(store.NewMemory(), nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, "u1", core.Money{Cents: 25000}, "Food", "", "Lunch at restaurant", "2025-07-28")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" || e.UserID != "u1" {
		t.Fatalf("unexpected expense: %+v", e)
	}

	got := svc.List(ctx, "u1", "")
	if len(got) != 1 || got[0].ID != e.ID {
		t.Fatalf("list: %+v", got)
	}
	if filtered := svc.List(ctx, "u1", "lunch"); len(filtered) != 1 {
		t.Fatalf("search: %+v", filtered)
	}
	if none := svc.List(ctx, "u2", ""); len(none) != 0 {
		t.Fatalf("other user sees records: %+v", none)
	}
}

func TestExpenseServiceCreateRejectsInvalid(t *testing.T) {
	svc := NewExpenseService(store.NewMemory(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", core.Money{Cents: 0}, "Food", "", "x", "2025-07-28"); err == nil {
		t.Fatal("expected validation error")
	}
	if got := svc.List(ctx, "u1", ""); len(got) != 0 {
		t.Fatalf("invalid record persisted: %+v", got)
	}
}

func TestExpenseServiceDeleteFlows(t *testing.T) {
	svc := NewExpenseService(store.NewMemory(), nil)
	ctx := context.Background()

	var ids []string
	for _, desc := range []string{"a", "b", "c"} {
		e, err := svc.Create(ctx, "u1", core.Money{Cents: 100}, "Food", "", desc, "2025-07-28")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, e.ID)
	}

	if err := svc.Delete(ctx, "u1", "ghost"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if err := svc.Delete(ctx, "u1", ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := svc.List(ctx, "u1", ""); len(got) != 2 {
		t.Fatalf("after delete: %+v", got)
	}

	removed, err := svc.DeleteMany(ctx, "u1", []string{ids[1], "ghost"})
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}

	removed, err = svc.DeleteAll(ctx, "u1")
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if removed != 1 {
		t.Fatalf("delete all removed = %d", removed)
	}
	if got := svc.List(ctx, "u1", ""); len(got) != 0 {
		t.Fatalf("records survived: %+v", got)
	}
}

func TestExpenseServiceCloseWithoutPublisher(t *testing.T) {
	svc := NewExpenseService(store.NewMemory(), nil)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
