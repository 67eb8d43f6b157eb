// Package services wires the user registry, the persistence layer and the
// aggregation functions behind one façade for the CLI shell.
package services

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/storage"
	"spendwise/internal/users"
)

// Tracker orchestrates one user session's operations.
type Tracker struct {
	users    *users.Store
	expenses *storage.ExpenseRepository
	budgets  *storage.BudgetStore
	now      func() time.Time
}

// Statistics summarizes a user's whole expense history.
type Statistics struct {
	ExpenseCount  int
	TotalSpent    core.Money
	AverageSpent  core.Money
	MostFrequent  string // category with the most entries
	MostExpensive string // category with the highest total
	ActiveBudgets int
	FirstExpense  core.Date
	LastExpense   core.Date
}

func NewTracker(userStore *users.Store, expenses *storage.ExpenseRepository, budgets *storage.BudgetStore) *Tracker {
	return &Tracker{
		users:    userStore,
		expenses: expenses,
		budgets:  budgets,
		now:      time.Now,
	}
}

func (t *Tracker) Register(ctx context.Context, username, password string) error {
	return t.users.Register(ctx, username, password)
}

func (t *Tracker) Login(ctx context.Context, username, password string) (users.Session, error) {
	return t.users.Login(ctx, username, password)
}

// AddExpense records an expense from raw CLI input. The amount is a decimal
// string; an empty date means today.
func (t *Tracker) AddExpense(ctx context.Context, username, amount, category, date, note string) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}

	day := core.Today(t.now())
	if date != "" {
		if day, err = core.ParseDate(date); err != nil {
			return core.Expense{}, fmt.Errorf("parse date %q: %w", date, err)
		}
	}

	return t.expenses.Add(ctx, username, core.Money{Cents: cents}, category, day, note)
}

func (t *Tracker) ListExpenses(ctx context.Context, username string) ([]core.Expense, error) {
	return t.expenses.List(ctx, username)
}

func (t *Tracker) UpdateExpense(ctx context.Context, username string, id int64, upd storage.ExpenseUpdate) (core.Expense, error) {
	return t.expenses.Update(ctx, username, id, upd)
}

func (t *Tracker) DeleteExpense(ctx context.Context, username string, id int64) error {
	return t.expenses.Delete(ctx, username, id)
}

func (t *Tracker) SetBudget(ctx context.Context, username string, budget core.Budget) error {
	return t.budgets.Set(ctx, username, budget)
}

func (t *Tracker) ListBudgets(ctx context.Context, username string) ([]core.Budget, error) {
	return t.budgets.List(ctx, username)
}

func (t *Tracker) RemoveBudget(ctx context.Context, username string, period core.Period, category string) error {
	return t.budgets.Remove(ctx, username, period, category)
}

// Summary aggregates spending between from and to. Zero dates default to
// the trailing 30 days ending today.
func (t *Tracker) Summary(ctx context.Context, username string, from, to core.Date) (core.Summary, error) {
	expenses, err := t.expenses.List(ctx, username)
	if err != nil {
		return core.Summary{}, err
	}
	if to.IsZero() {
		to = core.Today(t.now())
	}
	if from.IsZero() {
		from = to.AddDays(-30)
	}
	return core.Summarize(expenses, from, to), nil
}

// BudgetReport evaluates every budget against today's period windows.
func (t *Tracker) BudgetReport(ctx context.Context, username string) ([]core.BudgetStatus, error) {
	expenses, err := t.expenses.List(ctx, username)
	if err != nil {
		return nil, err
	}
	budgets, err := t.budgets.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return core.EvaluateBudgets(expenses, budgets, core.Today(t.now())), nil
}

// Insights derives findings from the user's history and budgets.
func (t *Tracker) Insights(ctx context.Context, username string) ([]core.Insight, error) {
	expenses, err := t.expenses.List(ctx, username)
	if err != nil {
		return nil, err
	}
	budgets, err := t.budgets.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return core.Insights(expenses, budgets, core.Today(t.now())), nil
}

// Statistics computes lifetime figures for a user.
func (t *Tracker) Statistics(ctx context.Context, username string) (Statistics, error) {
	expenses, err := t.expenses.List(ctx, username)
	if err != nil {
		return Statistics{}, err
	}
	budgets, err := t.budgets.List(ctx, username)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{ExpenseCount: len(expenses), ActiveBudgets: len(budgets)}
	if len(expenses) == 0 {
		return stats, nil
	}

	counts := make(map[string]int)
	for _, e := range expenses {
		stats.TotalSpent = stats.TotalSpent.Add(e.Amount)
		counts[e.Category]++
		if stats.FirstExpense.IsZero() || e.Date.Before(stats.FirstExpense) {
			stats.FirstExpense = e.Date
		}
		if e.Date.After(stats.LastExpense) {
			stats.LastExpense = e.Date
		}
	}
	stats.AverageSpent = core.Money{Cents: stats.TotalSpent.Cents / int64(len(expenses))}

	for cat, n := range counts {
		if n > counts[stats.MostFrequent] || (n == counts[stats.MostFrequent] && (stats.MostFrequent == "" || cat < stats.MostFrequent)) {
			stats.MostFrequent = cat
		}
	}
	stats.MostExpensive, _, _ = core.TopCategory(expenses)

	return stats, nil
}
