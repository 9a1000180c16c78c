package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetit/internal/core"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage the monthly budget",
	}

	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(showBudgetCmd())
	cmd.AddCommand(budgetHistoryCmd())

	return cmd
}

func setBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <currency> <amount>",
		Short: "Record a new budget",
		Long: `Record a new monthly budget. The first budget also creates the default
categories when none exist yet.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, err := core.ParseCurrency(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q (one of %v)", err, args[0], core.Currencies())
			}
			amount, err := core.ParseBudgetAmount(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[1])
			}

			b, err := app.Ledger.Budgets.SaveBudget(cmd.Context(), currency, amount)
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Budget set to %s", b.Amount.Format(b.Currency))))
			return nil
		},
	}
}

func showBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current budget and this month's spend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Ledger.Analyzer.BudgetProgress(cmd.Context())
			if errors.Is(err, core.ErrNoBudget) {
				fmt.Println(mutedStyle.Render("No budget yet. Use 'budgetit budget set <currency> <amount>'."))
				return nil
			}
			if err != nil {
				return err
			}

			c := p.Budget.Currency
			fmt.Println(titleStyle.Render("Monthly budget"))
			fmt.Printf("Budget:     %s\n", p.Budget.Amount.Format(c))
			fmt.Printf("Spent:      %s (%.2f%%)\n", p.Spent.Format(c), p.UsedPercentage)
			remaining := p.Remaining.Format(c)
			if p.OverBudget {
				remaining = warnStyle.Render(remaining + " over budget")
			}
			fmt.Printf("Remaining:  %s\n", remaining)
			fmt.Println(bar(p.UsedPercentage, 40, core.ColorDarkSeaGreen))
			return nil
		},
	}
}

func budgetHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List every recorded budget, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			budgets, err := app.Ledger.Budgets.BudgetHistory(cmd.Context())
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Println(mutedStyle.Render("No budgets recorded."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Recorded"),
				headerStyle.Render("Amount"))
			printRule(w, 4, 20, 12)
			for _, b := range budgets {
				fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.Timestamp.Local().Format("2006-01-02 15:04"), b.Amount.Format(b.Currency))
			}
			return nil
		},
	}
}

// displayCurrency is the currency of the current budget, empty without one.
func displayCurrency(ctx context.Context) core.Currency {
	b, err := app.Ledger.Budgets.CurrentBudget(ctx)
	if err != nil {
		return ""
	}
	return b.Currency
}
