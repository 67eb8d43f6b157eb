package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
)

var ErrBudgetNotFound = errors.New("budget not found")

// BudgetStore manages a user's budget definitions inside the same document
// as the expenses. At most one budget exists per (period, category) pair.
type BudgetStore struct {
	store *Store
}

func NewBudgetStore(store *Store) *BudgetStore {
	return &BudgetStore{store: store}
}

// List returns the user's budgets.
func (b *BudgetStore) List(ctx context.Context, username string) ([]core.Budget, error) {
	doc, err := b.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	return doc.Budgets, nil
}

// Set validates and stores a budget, replacing any existing budget with the
// same (period, category) key.
func (b *BudgetStore) Set(ctx context.Context, username string, budget core.Budget) error {
	if err := budget.Validate(); err != nil {
		return err
	}

	doc, err := b.store.Load(ctx, username)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	replaced := false
	for i, existing := range doc.Budgets {
		if existing.Key() == budget.Key() {
			doc.Budgets[i] = budget
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Budgets = append(doc.Budgets, budget)
	}

	if err := b.store.Save(ctx, username, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"username", username,
		"period", string(budget.Period),
		"category", budget.Category,
		"limit", budget.Limit.String(),
		"replaced", replaced)
	return nil
}

// Remove deletes the budget matching the (period, category) key.
func (b *BudgetStore) Remove(ctx context.Context, username string, period core.Period, category string) error {
	doc, err := b.store.Load(ctx, username)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	key := core.Budget{Period: period, Category: category}.Key()
	for i, existing := range doc.Budgets {
		if existing.Key() != key {
			continue
		}
		doc.Budgets = append(doc.Budgets[:i], doc.Budgets[i+1:]...)
		if err := b.store.Save(ctx, username, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		slog.InfoContext(ctx, "Budget removed", "username", username, "period", string(period), "category", category)
		return nil
	}
	return ErrBudgetNotFound
}

// RemoveAllForCategory deletes every budget scoped to the category,
// regardless of period. Returns ErrBudgetNotFound when none matched.
func (b *BudgetStore) RemoveAllForCategory(ctx context.Context, username, category string) error {
	doc, err := b.store.Load(ctx, username)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	kept := doc.Budgets[:0]
	removed := 0
	for _, existing := range doc.Budgets {
		if existing.Category == category {
			removed++
			continue
		}
		kept = append(kept, existing)
	}
	if removed == 0 {
		return ErrBudgetNotFound
	}

	doc.Budgets = kept
	if err := b.store.Save(ctx, username, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	slog.InfoContext(ctx, "Budgets removed for category", "username", username, "category", category, "count", removed)
	return nil
}
