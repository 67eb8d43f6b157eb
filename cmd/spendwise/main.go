package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/services"
	"spendwise/internal/storage"
	"spendwise/internal/users"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	cli.SetupLogger(cfg.LogLevel)

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to initialize document store", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	tracker := services.NewTracker(
		users.NewStore(cfg.RegistryFile, users.NewBcryptHasher(cfg.BcryptCost)),
		storage.NewExpenseRepository(store),
		storage.NewBudgetStore(store),
	)

	app := &app{tracker: tracker, in: bufio.NewReader(os.Stdin), out: os.Stdout}
	if err := app.run(context.Background()); err != nil {
		logger.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

type app struct {
	tracker *services.Tracker
	in      *bufio.Reader
	out     io.Writer
}

func (a *app) run(ctx context.Context) error {
	for {
		fmt.Fprintln(a.out, "\n=== spendwise ===")
		fmt.Fprintln(a.out, "1. Register")
		fmt.Fprintln(a.out, "2. Login")
		fmt.Fprintln(a.out, "3. Exit")

		switch a.prompt("Choose option: ") {
		case "1":
			username := a.prompt("Username: ")
			password := a.prompt("Password: ")
			if err := a.tracker.Register(ctx, username, password); err != nil {
				a.report(err)
				continue
			}
			fmt.Fprintln(a.out, "Registered. You can log in now.")
		case "2":
			username := a.prompt("Username: ")
			password := a.prompt("Password: ")
			sess, err := a.tracker.Login(ctx, username, password)
			if err != nil {
				a.report(err)
				continue
			}
			if err := a.userMenu(ctx, sess); err != nil {
				return err
			}
		case "3", "":
			fmt.Fprintln(a.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(a.out, "Invalid choice.")
		}
	}
}

func (a *app) userMenu(ctx context.Context, sess users.Session) error {
	for {
		fmt.Fprintf(a.out, "\n=== %s ===\n", sess.Username)
		fmt.Fprintln(a.out, "1. Add expense")
		fmt.Fprintln(a.out, "2. Edit expense")
		fmt.Fprintln(a.out, "3. Delete expense")
		fmt.Fprintln(a.out, "4. List expenses")
		fmt.Fprintln(a.out, "5. Set budget")
		fmt.Fprintln(a.out, "6. Budget report")
		fmt.Fprintln(a.out, "7. Remove budget")
		fmt.Fprintln(a.out, "8. Spending summary")
		fmt.Fprintln(a.out, "9. Insights")
		fmt.Fprintln(a.out, "10. Statistics")
		fmt.Fprintln(a.out, "11. Logout")

		switch a.prompt("Choose option: ") {
		case "1":
			a.addExpense(ctx, sess.Username)
		case "2":
			a.editExpense(ctx, sess.Username)
		case "3":
			a.deleteExpense(ctx, sess.Username)
		case "4":
			a.listExpenses(ctx, sess.Username)
		case "5":
			a.setBudget(ctx, sess.Username)
		case "6":
			a.budgetReport(ctx, sess.Username)
		case "7":
			a.removeBudget(ctx, sess.Username)
		case "8":
			a.summary(ctx, sess.Username)
		case "9":
			a.insights(ctx, sess.Username)
		case "10":
			a.statistics(ctx, sess.Username)
		case "11":
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		default:
			fmt.Fprintln(a.out, "Invalid choice.")
		}
	}
}

func (a *app) addExpense(ctx context.Context, username string) {
	amount := a.prompt("Amount: ")
	category := a.prompt("Category: ")
	date := a.prompt("Date (YYYY-MM-DD, empty = today): ")
	note := a.prompt("Note (optional): ")

	e, err := a.tracker.AddExpense(ctx, username, amount, category, date, note)
	if err != nil {
		a.report(err)
		return
	}
	fmt.Fprintf(a.out, "Added expense #%d: %s %s on %s\n", e.ID, e.Amount, e.Category, e.Date)
}

func (a *app) editExpense(ctx context.Context, username string) {
	id, ok := a.promptID()
	if !ok {
		return
	}

	fmt.Fprintln(a.out, "Leave a field empty to keep its current value.")
	var upd storage.ExpenseUpdate
	if v := a.prompt("New amount: "); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			a.report(err)
			return
		}
		upd.Amount = &core.Money{Cents: cents}
	}
	if v := a.prompt("New category: "); v != "" {
		upd.Category = &v
	}
	if v := a.prompt("New date (YYYY-MM-DD): "); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			a.report(err)
			return
		}
		upd.Date = &d
	}
	if v := a.prompt("New note: "); v != "" {
		upd.Note = &v
	}

	e, err := a.tracker.UpdateExpense(ctx, username, id, upd)
	if err != nil {
		a.report(err)
		return
	}
	fmt.Fprintf(a.out, "Updated expense #%d.\n", e.ID)
}

func (a *app) deleteExpense(ctx context.Context, username string) {
	id, ok := a.promptID()
	if !ok {
		return
	}
	if strings.ToLower(a.prompt("Delete? (y/N): ")) != "y" {
		fmt.Fprintln(a.out, "Cancelled.")
		return
	}
	if err := a.tracker.DeleteExpense(ctx, username, id); err != nil {
		a.report(err)
		return
	}
	fmt.Fprintln(a.out, "Deleted.")
}

func (a *app) listExpenses(ctx context.Context, username string) {
	expenses, err := a.tracker.ListExpenses(ctx, username)
	if err != nil {
		a.report(err)
		return
	}
	if len(expenses) == 0 {
		fmt.Fprintln(a.out, "No expenses recorded.")
		return
	}
	fmt.Fprintf(a.out, "%-5s %-12s %-15s %10s  %s\n", "ID", "Date", "Category", "Amount", "Note")
	for _, e := range expenses {
		fmt.Fprintf(a.out, "%-5d %-12s %-15s %10s  %s\n", e.ID, e.Date, e.Category, e.Amount, e.Note)
	}
}

func (a *app) setBudget(ctx context.Context, username string) {
	period := core.Period(a.prompt("Period (daily/weekly/monthly): "))
	limit := a.prompt("Limit: ")
	category := a.prompt("Category (empty = overall): ")

	cents, err := core.ParseDecimalToCents(limit)
	if err != nil {
		a.report(err)
		return
	}
	budget := core.Budget{Period: period, Limit: core.Money{Cents: cents}, Category: category}
	if err := a.tracker.SetBudget(ctx, username, budget); err != nil {
		a.report(err)
		return
	}
	fmt.Fprintln(a.out, "Budget set.")
}

func (a *app) budgetReport(ctx context.Context, username string) {
	report, err := a.tracker.BudgetReport(ctx, username)
	if err != nil {
		a.report(err)
		return
	}
	if len(report) == 0 {
		fmt.Fprintln(a.out, "No budgets set.")
		return
	}
	for _, st := range report {
		scope := "overall"
		if st.Budget.Category != "" {
			scope = st.Budget.Category
		}
		mark := "OK"
		if st.Over {
			mark = "OVER"
		}
		fmt.Fprintf(a.out, "%-8s %-15s [%s..%s] spent %s of %s (remaining %s) %s\n",
			st.Budget.Period, scope, st.PeriodStart, st.PeriodEnd, st.Spent, st.Budget.Limit, st.Remaining, mark)
	}
}

func (a *app) removeBudget(ctx context.Context, username string) {
	period := core.Period(a.prompt("Period (daily/weekly/monthly): "))
	category := a.prompt("Category (empty = overall): ")
	if err := a.tracker.RemoveBudget(ctx, username, period, category); err != nil {
		a.report(err)
		return
	}
	fmt.Fprintln(a.out, "Budget removed.")
}

func (a *app) summary(ctx context.Context, username string) {
	var from, to core.Date
	if v := a.prompt("From (YYYY-MM-DD, empty = 30 days ago): "); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			a.report(err)
			return
		}
		from = d
	}
	if v := a.prompt("To (YYYY-MM-DD, empty = today): "); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			a.report(err)
			return
		}
		to = d
	}

	s, err := a.tracker.Summary(ctx, username, from, to)
	if err != nil {
		a.report(err)
		return
	}
	fmt.Fprintf(a.out, "Summary %s .. %s\n", s.From, s.To)
	for _, ca := range s.ByCategory {
		fmt.Fprintf(a.out, "  %-15s %10s\n", ca.Name, ca.Amount)
	}
	fmt.Fprintf(a.out, "  Total: %s\n", s.GrandTotal)
}

func (a *app) insights(ctx context.Context, username string) {
	insights, err := a.tracker.Insights(ctx, username)
	if err != nil {
		a.report(err)
		return
	}
	if len(insights) == 0 {
		fmt.Fprintln(a.out, "Nothing to report yet.")
		return
	}
	for _, in := range insights {
		fmt.Fprintf(a.out, "- %s\n", in.Message)
	}
}

func (a *app) statistics(ctx context.Context, username string) {
	stats, err := a.tracker.Statistics(ctx, username)
	if err != nil {
		a.report(err)
		return
	}
	fmt.Fprintf(a.out, "Expenses recorded: %d\n", stats.ExpenseCount)
	fmt.Fprintf(a.out, "Total spent:       %s\n", stats.TotalSpent)
	fmt.Fprintf(a.out, "Average expense:   %s\n", stats.AverageSpent)
	if stats.ExpenseCount > 0 {
		fmt.Fprintf(a.out, "Most frequent:     %s\n", stats.MostFrequent)
		fmt.Fprintf(a.out, "Most expensive:    %s\n", stats.MostExpensive)
		fmt.Fprintf(a.out, "First/last entry:  %s / %s\n", stats.FirstExpense, stats.LastExpense)
	}
	fmt.Fprintf(a.out, "Active budgets:    %d\n", stats.ActiveBudgets)
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line)
}

func (a *app) promptID() (int64, bool) {
	raw := a.prompt("Expense id: ")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id.")
		return 0, false
	}
	return id, true
}

// report prints recoverable errors and lets the session continue; only
// the caller decides when an error ends the program.
func (a *app) report(err error) {
	switch {
	case errors.Is(err, users.ErrDuplicateUser),
		errors.Is(err, users.ErrUnknownUser),
		errors.Is(err, users.ErrBadCredentials),
		errors.Is(err, users.ErrUsernameTooShort),
		errors.Is(err, users.ErrPasswordTooShort),
		errors.Is(err, storage.ErrExpenseNotFound),
		errors.Is(err, storage.ErrBudgetNotFound),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidPeriod):
		fmt.Fprintf(a.out, "Error: %v\n", err)
	default:
		// I/O failures and the like: the prior on-disk state is intact,
		// but tell the user something deeper went wrong.
		fmt.Fprintf(a.out, "Operation failed: %v\n", err)
	}
}
