package core

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

const (
	InsightTopCategory       = "top_category"
	InsightOverBudget        = "over_budget"
	InsightSimilarCategories = "similar_categories"
)

// Insight is a single human-readable finding about spending behaviour.
type Insight struct {
	Kind    string
	Message string
}

// Insights derives findings from the expense history: the top spending
// category, every budget currently over its limit, and category names close
// enough to look like typos of each other. Output is deterministic for
// identical inputs and reference date.
func Insights(expenses []Expense, budgets []Budget, today Date) []Insight {
	var out []Insight

	if name, total, ok := TopCategory(expenses); ok {
		out = append(out, Insight{
			Kind:    InsightTopCategory,
			Message: fmt.Sprintf("top spending category is %q (%s total)", name, total),
		})
	}

	for _, st := range EvaluateBudgets(expenses, budgets, today) {
		if !st.Over {
			continue
		}
		scope := "overall"
		if st.Budget.Category != "" {
			scope = fmt.Sprintf("%q", st.Budget.Category)
		}
		out = append(out, Insight{
			Kind: InsightOverBudget,
			Message: fmt.Sprintf("over %s budget for %s: spent %s of %s",
				st.Budget.Period, scope, st.Spent, st.Budget.Limit),
		})
	}

	for _, pair := range similarCategories(expenses) {
		out = append(out, Insight{
			Kind:    InsightSimilarCategories,
			Message: fmt.Sprintf("categories %q and %q look alike; one may be a typo", pair[0], pair[1]),
		})
	}

	return out
}

// similarCategories pairs distinct category names within Levenshtein
// distance 2, sorted so output order is stable.
func similarCategories(expenses []Expense) [][2]string {
	seen := make(map[string]struct{})
	for _, e := range expenses {
		seen[e.Category] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	var pairs [][2]string
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if levenshtein.ComputeDistance(names[i], names[j]) <= 2 {
				pairs = append(pairs, [2]string{names[i], names[j]})
			}
		}
	}
	return pairs
}
