package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
)

var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseRepository provides per-user CRUD over expense entries backed by
// the document store. Every mutation does load, apply, atomic save.
type ExpenseRepository struct {
	store *Store
}

func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

// ExpenseUpdate carries the optional fields an edit may change. Nil slots
// keep the stored value; the id is immutable.
type ExpenseUpdate struct {
	Amount   *core.Money
	Category *string
	Date     *core.Date
	Note     *string
}

// List returns the user's expenses in insertion order (oldest first).
// A user without a document gets an empty list, not an error.
func (r *ExpenseRepository) List(ctx context.Context, username string) ([]core.Expense, error) {
	doc, err := r.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return doc.Expenses, nil
}

// Add validates and appends a new expense, assigning the next free id.
func (r *ExpenseRepository) Add(ctx context.Context, username string, amount core.Money, category string, date core.Date, note string) (core.Expense, error) {
	e := core.Expense{
		Amount:   amount,
		Category: category,
		Date:     date,
		Note:     note,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	doc, err := r.store.Load(ctx, username)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load document: %w", err)
	}

	e.ID = nextID(doc.Expenses)
	doc.Expenses = append(doc.Expenses, e)

	if err := r.store.Save(ctx, username, doc); err != nil {
		return core.Expense{}, fmt.Errorf("save document: %w", err)
	}

	slog.InfoContext(ctx, "Expense added",
		"username", username,
		"id", e.ID,
		"category", e.Category,
		"amount", e.Amount.String(),
		"date", e.Date.String())
	return e, nil
}

// Update applies the provided fields to an existing expense, re-validating
// the result before persisting.
func (r *ExpenseRepository) Update(ctx context.Context, username string, id int64, upd ExpenseUpdate) (core.Expense, error) {
	doc, err := r.store.Load(ctx, username)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load document: %w", err)
	}

	idx := indexOf(doc.Expenses, id)
	if idx < 0 {
		return core.Expense{}, ErrExpenseNotFound
	}

	e := doc.Expenses[idx]
	if upd.Amount != nil {
		e.Amount = *upd.Amount
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Note != nil {
		e.Note = *upd.Note
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	doc.Expenses[idx] = e
	if err := r.store.Save(ctx, username, doc); err != nil {
		return core.Expense{}, fmt.Errorf("save document: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "username", username, "id", id)
	return e, nil
}

// Delete removes an expense by id.
func (r *ExpenseRepository) Delete(ctx context.Context, username string, id int64) error {
	doc, err := r.store.Load(ctx, username)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	idx := indexOf(doc.Expenses, id)
	if idx < 0 {
		return ErrExpenseNotFound
	}

	doc.Expenses = append(doc.Expenses[:idx], doc.Expenses[idx+1:]...)
	if err := r.store.Save(ctx, username, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "username", username, "id", id)
	return nil
}

func nextID(expenses []core.Expense) int64 {
	var max int64
	for _, e := range expenses {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

func indexOf(expenses []core.Expense, id int64) int {
	for i, e := range expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
