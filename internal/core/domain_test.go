package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 9 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, bad := range []string{"", "2025-13-01", "2025-02-30", "yesterday", "09/03/2025"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:       1,
		Date:     NewDate(2025, 1, 1),
		Amount:   Money{Cents: 100},
		Category: "food",
		Note:     "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Amount: Money{Cents: 1}, Category: "c"}, // zero date
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: -1}, Category: "c"},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: "   "},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Period: Weekly, Limit: Money{Cents: 5000}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{Period: "fortnightly", Limit: Money{Cents: 1}}).Validate(); err == nil {
		t.Fatalf("expected error for unknown period")
	}
	if err := (Budget{Period: Daily, Limit: Money{Cents: -1}}).Validate(); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestBudgetKey(t *testing.T) {
	overall := Budget{Period: Monthly, Limit: Money{Cents: 1}}
	scoped := Budget{Period: Monthly, Limit: Money{Cents: 1}, Category: "food"}
	if overall.Key() == scoped.Key() {
		t.Fatalf("overall and scoped budgets must have distinct keys")
	}
	if scoped.Key() != (Budget{Period: Monthly, Category: "food"}).Key() {
		t.Fatalf("key must not depend on the limit")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	e := Expense{ID: 3, Amount: Money{Cents: 250}, Category: "food", Date: NewDate(2025, 6, 15)}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Expense
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != e {
		t.Fatalf("round trip mismatch: %+v != %+v", got, e)
	}
}
