package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary aggregates spending over a date range.
type Summary struct {
	From       Date
	To         Date
	GrandTotal Money
	ByCategory []CategoryAmount
}

// BudgetStatus reports how a budget stands against spending inside the
// period window containing the reference date.
type BudgetStatus struct {
	Budget      Budget
	PeriodStart Date
	PeriodEnd   Date
	Spent       Money
	Remaining   Money // Limit - Spent, may be negative
	Over        bool
}

// Summarize filters expenses with from <= date <= to (inclusive bounds) and
// sums per category and overall. An empty input yields zero totals.
func Summarize(expenses []Expense, from, to Date) Summary {
	s := Summary{From: from, To: to}
	totals := make(map[string]Money)
	for _, e := range expenses {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
		s.GrandTotal = s.GrandTotal.Add(e.Amount)
	}
	for _, name := range sortedKeys(totals) {
		s.ByCategory = append(s.ByCategory, CategoryAmount{Name: name, Amount: totals[name]})
	}
	return s
}

// PeriodWindow computes the inclusive [start, end] window of a period
// containing the reference date. Weeks are anchored on Monday.
func PeriodWindow(p Period, today Date) (Date, Date) {
	switch p {
	case Daily:
		return today, today
	case Weekly:
		offset := (int(today.Weekday()) + 6) % 7 // days since Monday
		start := today.AddDays(-offset)
		return start, start.AddDays(6)
	default: // Monthly
		y, m, _ := today.Date()
		start := NewDate(y, int(m), 1)
		return start, start.AddDays(daysInMonth(y, int(m)) - 1)
	}
}

// EvaluateBudgets computes the status of every budget against the expenses
// falling inside its current period window. Category-scoped budgets only
// count expenses of that category.
func EvaluateBudgets(expenses []Expense, budgets []Budget, today Date) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		start, end := PeriodWindow(b.Period, today)
		var spent Money
		for _, e := range expenses {
			if b.Category != "" && e.Category != b.Category {
				continue
			}
			if e.Date.Before(start) || e.Date.After(end) {
				continue
			}
			spent = spent.Add(e.Amount)
		}
		statuses = append(statuses, BudgetStatus{
			Budget:      b,
			PeriodStart: start,
			PeriodEnd:   end,
			Spent:       spent,
			Remaining:   b.Limit.Sub(spent),
			Over:        spent.Cents > b.Limit.Cents,
		})
	}
	return statuses
}

// TopCategory returns the category with the highest total spend. Ties are
// broken by the lexicographically smallest name so the result is
// deterministic. ok is false when there are no expenses.
func TopCategory(expenses []Expense) (name string, total Money, ok bool) {
	totals := make(map[string]Money)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	for _, cat := range sortedKeys(totals) {
		if !ok || totals[cat].Cents > total.Cents {
			name, total, ok = cat, totals[cat], true
		}
	}
	return name, total, ok
}

func sortedKeys(m map[string]Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func daysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this month.
	return NewDate(year, month+1, 0).Day()
}
