package storage

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/core"
)

func newTestRepo(t *testing.T) *ExpenseRepository {
	t.Helper()
	return NewExpenseRepository(newTestStore(t))
}

func TestAddThenList(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	e, err := r.Add(ctx, "alice", core.Money{Cents: 1500}, "food", core.NewDate(2025, 3, 1), "pizza")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.ID != 1 {
		t.Fatalf("first id must be 1, got %d", e.ID)
	}

	got, err := r.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0] != e {
		t.Fatalf("expected exactly the added expense, got %+v", got)
	}
}

func TestAddAssignsFreshIDs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	a, _ := r.Add(ctx, "alice", core.Money{Cents: 100}, "food", core.NewDate(2025, 3, 1), "")
	b, _ := r.Add(ctx, "alice", core.Money{Cents: 200}, "food", core.NewDate(2025, 3, 2), "")
	if b.ID != a.ID+1 {
		t.Fatalf("expected sequential ids, got %d then %d", a.ID, b.ID)
	}

	// Deleting the highest id frees it for reuse; max+1 keeps ids unique
	// among the surviving entries.
	if err := r.Delete(ctx, "alice", b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c, _ := r.Add(ctx, "alice", core.Money{Cents: 300}, "food", core.NewDate(2025, 3, 3), "")
	if c.ID != a.ID+1 {
		t.Fatalf("expected max+1 after delete, got %d", c.ID)
	}
}

func TestAddValidates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, "alice", core.Money{Cents: -1}, "food", core.NewDate(2025, 3, 1), ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := r.Add(ctx, "alice", core.Money{Cents: 1}, "", core.NewDate(2025, 3, 1), ""); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if _, err := r.Add(ctx, "alice", core.Money{Cents: 1}, "food", core.Date{}, ""); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	// Nothing was persisted.
	if got, _ := r.List(ctx, "alice"); len(got) != 0 {
		t.Fatalf("failed adds must not persist, got %+v", got)
	}
}

func TestUpdateFields(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	e, _ := r.Add(ctx, "alice", core.Money{Cents: 100}, "food", core.NewDate(2025, 3, 1), "old")
	newAmount := core.Money{Cents: 250}
	newNote := "new"

	got, err := r.Update(ctx, "alice", e.ID, ExpenseUpdate{Amount: &newAmount, Note: &newNote})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != e.ID || got.Amount != newAmount || got.Note != "new" || got.Category != "food" {
		t.Fatalf("unexpected result: %+v", got)
	}

	listed, _ := r.List(ctx, "alice")
	if listed[0] != got {
		t.Fatalf("update not persisted: %+v", listed[0])
	}
}

func TestUpdateNotFoundLeavesDocumentUnchanged(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	r.Add(ctx, "alice", core.Money{Cents: 100}, "food", core.NewDate(2025, 3, 1), "")
	before, _ := r.List(ctx, "alice")

	cat := "transport"
	if _, err := r.Update(ctx, "alice", 99, ExpenseUpdate{Category: &cat}); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}

	after, _ := r.List(ctx, "alice")
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("document changed on failed update: %+v vs %+v", before, after)
	}
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	e, _ := r.Add(ctx, "alice", core.Money{Cents: 100}, "food", core.NewDate(2025, 3, 1), "")
	bad := core.Money{Cents: -5}
	if _, err := r.Update(ctx, "alice", e.ID, ExpenseUpdate{Amount: &bad}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	listed, _ := r.List(ctx, "alice")
	if listed[0].Amount.Cents != 100 {
		t.Fatalf("invalid update must not persist, got %+v", listed[0])
	}
}

func TestDeleteTwice(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	e, _ := r.Add(ctx, "alice", core.Money{Cents: 100}, "food", core.NewDate(2025, 3, 1), "")
	if err := r.Delete(ctx, "alice", e.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := r.Delete(ctx, "alice", e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("second delete: expected ErrExpenseNotFound, got %v", err)
	}
	if got, _ := r.List(ctx, "alice"); len(got) != 0 {
		t.Fatalf("document changed after failed delete: %+v", got)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	// Insert with out-of-order dates; load must not resort.
	r.Add(ctx, "alice", core.Money{Cents: 100}, "b", core.NewDate(2025, 3, 9), "")
	r.Add(ctx, "alice", core.Money{Cents: 200}, "a", core.NewDate(2025, 3, 1), "")
	r.Add(ctx, "alice", core.Money{Cents: 300}, "c", core.NewDate(2025, 3, 5), "")

	got, _ := r.List(ctx, "alice")
	if got[0].Category != "b" || got[1].Category != "a" || got[2].Category != "c" {
		t.Fatalf("insertion order not preserved: %+v", got)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	r.Add(ctx, "alice", core.Money{Cents: 100}, "food", core.NewDate(2025, 3, 1), "")
	if got, _ := r.List(ctx, "bob"); len(got) != 0 {
		t.Fatalf("bob must not see alice's expenses: %+v", got)
	}
}
