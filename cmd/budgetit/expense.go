package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budgetit/internal/core"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Record and manage expenses",
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(editExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())
	cmd.AddCommand(listExpensesCmd())

	return cmd
}

type expenseFlags struct {
	title    string
	amount   string
	date     string
	category int64
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "what the money was spent on")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount, e.g. 12.50")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().Int64VarP(&f.category, "category", "c", 0, "category id")
}

// apply copies the flags that were set on cmd into e.
func (f *expenseFlags) apply(cmd *cobra.Command, e *core.Expense) error {
	if cmd.Flags().Changed("title") {
		e.Title = f.title
	}
	if cmd.Flags().Changed("amount") {
		cents, err := core.ParseDecimalToCents(f.amount)
		if err != nil {
			return fmt.Errorf("%w: %q", err, f.amount)
		}
		e.Amount = core.Money{Cents: cents}
	}
	if cmd.Flags().Changed("date") {
		d, err := core.ParseDate(f.date)
		if err != nil {
			return err
		}
		e.Date = d
	}
	if cmd.Flags().Changed("category") {
		e.CategoryID = f.category
	}
	return nil
}

func addExpenseCmd() *cobra.Command {
	var flags expenseFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := core.Expense{Date: core.DateOf(time.Now())}
			if err := flags.apply(cmd, &e); err != nil {
				return err
			}

			saved, err := app.Ledger.Expenses.SaveExpense(cmd.Context(), e)
			if err != nil {
				return err
			}
			cur := displayCurrency(cmd.Context())
			fmt.Println(successStyle.Render(fmt.Sprintf("Saved expense %d: %s %s on %s",
				saved.ID, saved.Title, saved.Amount.Format(cur), saved.Date)))
			return nil
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func editExpenseCmd() *cobra.Command {
	var flags expenseFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			current, err := app.Ledger.Expenses.GetExpense(ctx, id)
			if err != nil {
				return err
			}
			e := current.Expense
			if err := flags.apply(cmd, &e); err != nil {
				return err
			}

			saved, err := app.Ledger.Expenses.SaveExpense(ctx, e)
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Updated expense %d", saved.ID)))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Ledger.Expenses.DeleteExpense(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Deleted expense %d", id)))
			return nil
		},
	}
}

func listExpensesCmd() *cobra.Command {
	var thisMonth bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				expenses []core.ExpenseDetail
				total    core.Money
			)
			if thisMonth {
				month, err := app.Ledger.Analyzer.MonthToDate(ctx)
				if err != nil {
					return err
				}
				expenses, total = month.Expenses, month.Total
				fmt.Println(titleStyle.Render(time.Month(month.Month).String() + " " + strconv.Itoa(month.Year)))
			} else {
				var err error
				expenses, err = app.Ledger.Expenses.ListExpenses(ctx)
				if err != nil {
					return err
				}
				for _, e := range expenses {
					if total, err = total.Add(e.Amount); err != nil {
						return err
					}
				}
			}

			if len(expenses) == 0 {
				fmt.Println(mutedStyle.Render("No expenses found."))
				return nil
			}
			cur := displayCurrency(ctx)
			printExpenses(expenses, cur)
			fmt.Printf("\n%s %s\n", headerStyle.Render("Total:"), total.Format(cur))
			return nil
		},
	}

	cmd.Flags().BoolVar(&thisMonth, "month", false, "only the current month")
	return cmd
}

func printExpenses(expenses []core.ExpenseDetail, cur core.Currency) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "%s\t%s\t%s\t\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Date"),
		headerStyle.Render("Title"),
		headerStyle.Render("Category"),
		amountStyle.Inherit(headerStyle).Render("Amount"))
	printRule(w, 4, 10, 24, 2, 16, 12)
	for _, e := range expenses {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Title, swatch(e.Category.Color), e.Category.Name,
			amountStyle.Render(e.Amount.Format(cur)))
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, s)
	}
	return id, nil
}
