package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budgetit/internal/core"
	"budgetit/internal/services"
)

func analysisCmd() *cobra.Command {
	var (
		granularity string
		offset      int
		at          string
		categoryID  int64
		trend       bool
	)

	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Show spending per category for a week, month or year",
		Long: `Show the category breakdown of one analysis window. The window contains
today (or --at) and --offset moves it back (negative) or forward.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			g := app.Config.Granularity()
			if cmd.Flags().Changed("granularity") {
				var err error
				if g, err = core.ParseGranularity(granularity); err != nil {
					return err
				}
			}

			now := time.Now
			if at != "" {
				ref, err := core.ParseDate(at)
				if err != nil {
					return err
				}
				now = func() time.Time { return ref.Time }
			}

			session, err := services.NewTimeFrameSession(g, now)
			if err != nil {
				return err
			}
			frame := session.Move(core.Direction(offset))
			cur := displayCurrency(ctx)

			if categoryID != 0 {
				expenses, err := app.Ledger.Analyzer.ExpensesForCategory(ctx, frame, categoryID)
				if err != nil {
					return err
				}
				fmt.Println(titleStyle.Render(frame.Title))
				if len(expenses) == 0 {
					fmt.Println(mutedStyle.Render("No expenses in this category for the window."))
					return nil
				}
				printExpenses(expenses, cur)
				return nil
			}

			if trend {
				points, err := app.Ledger.Analyzer.Trend(ctx, frame)
				if err != nil {
					return err
				}
				printTrend(frame, points, cur)
				return nil
			}

			summary, err := app.Ledger.Analyzer.Analyze(ctx, frame)
			if err != nil {
				return err
			}
			printSummary(summary, cur)
			return nil
		},
	}

	cmd.Flags().StringVarP(&granularity, "granularity", "g", "", "weekly, monthly or yearly (default from config)")
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "windows to move from the current one, negative goes back")
	cmd.Flags().StringVar(&at, "at", "", "reference date as YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "list the expenses of one category instead")
	cmd.Flags().BoolVar(&trend, "trend", false, "show spend per day (per month for yearly windows)")
	return cmd
}

func printSummary(s core.SpendingSummary, cur core.Currency) {
	fmt.Printf("%s  %s\n", titleStyle.Render(s.TimeFrame.Title),
		mutedStyle.Render(fmt.Sprintf("%s to %s", s.TimeFrame.Start, s.TimeFrame.End)))

	if len(s.Breakdown) == 0 {
		fmt.Println(mutedStyle.Render("No expenses in this window."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, b := range s.Breakdown {
		fmt.Fprintf(w, "%s\t%s\t%s\t%6.2f%%\t%s\n",
			swatch(b.Category.Color),
			b.Category.Name,
			amountStyle.Render(b.Amount.Format(cur)),
			b.Percentage,
			bar(b.Percentage, 20, b.Category.Color))
	}
	w.Flush()
	fmt.Printf("\n%s %s\n", headerStyle.Render("Total:"), s.Total.Format(cur))
}

func printTrend(frame core.TimeFrame, points []core.SpendPoint, cur core.Currency) {
	fmt.Printf("%s  %s\n", titleStyle.Render(frame.Title),
		mutedStyle.Render(fmt.Sprintf("%s to %s", frame.Start, frame.End)))

	var peak int64
	for _, p := range points {
		if p.Amount.Cents > peak {
			peak = p.Amount.Cents
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range points {
		var pct float64
		if peak > 0 {
			pct = float64(p.Amount.Cents) / float64(peak) * 100
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Label, amountStyle.Render(p.Amount.Format(cur)), bar(pct, 30, core.ColorDarkSeaGreen))
	}
	w.Flush()
}
