package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetit/internal/core"
	"budgetit/internal/services"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories with their expense counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			categories, err := app.Ledger.Categories.ListCategories(ctx)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Println(mutedStyle.Render("No categories found. Use 'budgetit category add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintf(w, "%s\t\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Name"),
				headerStyle.Render("Icon"),
				headerStyle.Render("Expenses"))
			printRule(w, 4, 2, 20, 16, 8)
			for _, c := range categories {
				n, err := app.Ledger.Categories.DependentExpenseCount(ctx, c.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", c.ID, swatch(c.Color), c.Name, c.Icon, n)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var icon, color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := core.ParseIcon(icon)
			if err != nil {
				return fmt.Errorf("%w: %q", err, icon)
			}
			c, err := core.ParseColor(color)
			if err != nil {
				return fmt.Errorf("%w: %q", err, color)
			}

			created, err := app.Ledger.Categories.CreateCategory(cmd.Context(), args[0], i, c)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", swatch(created.Color), successStyle.Render(fmt.Sprintf("Created category %q (id %d)", created.Name, created.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", string(core.IconOther), "category icon")
	cmd.Flags().StringVar(&color, "color", string(core.ColorGray), "category color")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var (
		reassignTo int64
		cascade    bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. A category that still has expenses is only deleted
when told what to do with them: --reassign <id> moves them to another
category, --cascade deletes them too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if cascade && reassignTo != 0 {
				return fmt.Errorf("%w: --reassign and --cascade are mutually exclusive", core.ErrValidation)
			}
			ctx := cmd.Context()

			outcome, err := app.Ledger.Categories.RequestDeletion(ctx, id)
			if err != nil {
				return err
			}
			if outcome.State == services.DeletionImmediate {
				fmt.Println(successStyle.Render(fmt.Sprintf("Deleted category %d", id)))
				return nil
			}

			var d services.Disposition
			switch {
			case reassignTo != 0:
				d = services.Reassign(reassignTo)
			case cascade:
				d = services.CascadeDelete()
			default:
				fmt.Println(warnStyle.Render(fmt.Sprintf(
					"Category %d still has %d expense(s). Re-run with --reassign <id> or --cascade.",
					id, outcome.DependentExpenses)))
				return fmt.Errorf("%w: category %d has %d expense(s)", core.ErrCategoryInUse, id, outcome.DependentExpenses)
			}

			res, err := app.Ledger.Categories.ResolveDisposition(ctx, id, d)
			if err != nil {
				return err
			}
			verb := "deleted"
			if d.Kind == services.DispositionReassign {
				verb = fmt.Sprintf("moved to category %d", d.TargetCategoryID)
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Deleted category %d, %d expense(s) %s", id, res.AffectedExpenses, verb)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&reassignTo, "reassign", 0, "move the category's expenses to this category id")
	cmd.Flags().BoolVar(&cascade, "cascade", false, "delete the category's expenses too")
	return cmd
}
