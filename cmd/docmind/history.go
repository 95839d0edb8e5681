package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docmind/expense-audit/internal/common"
	"github.com/docmind/expense-audit/internal/model"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the stored expense history",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyAddCmd())
	cmd.AddCommand(historyAuditsCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored expenses, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListExpenses(ctx, limit)
			if err != nil {
				return common.NewUserError("failed to list expenses", err)
			}

			if len(records) == 0 {
				fmt.Println("No expenses recorded yet.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%-30s $%10.2f  %s\n", r.Vendor, r.Amount, r.Category)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of expenses to show")
	return cmd
}

func historyAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one expense in the history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			vendor, _ := cmd.Flags().GetString("vendor")
			amount, _ := cmd.Flags().GetFloat64("amount")
			category, _ := cmd.Flags().GetString("category")

			if category == "" {
				category = model.CategoryMiscellaneous
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			record := model.HistoricalRecord{
				Vendor:   vendor,
				Amount:   amount,
				Category: category,
			}
			if err := store.SaveExpense(ctx, record); err != nil {
				return common.NewUserError("failed to save expense", err)
			}

			fmt.Printf("Recorded %s: $%.2f (%s)\n", record.Vendor, record.Amount, record.Category)
			return nil
		},
	}

	cmd.Flags().String("vendor", "", "vendor name (required)")
	cmd.Flags().Float64("amount", 0, "expense amount (required)")
	cmd.Flags().String("category", "", "expense category")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func historyAuditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audits",
		Short: "List recorded audit verdicts, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			audits, err := store.ListAudits(ctx, limit)
			if err != nil {
				return common.NewUserError("failed to list audits", err)
			}

			if len(audits) == 0 {
				fmt.Println("No audits recorded yet.")
				return nil
			}
			for _, a := range audits {
				fmt.Printf("%s  %-30s $%10.2f  %-15s %-12s score=%.3f\n",
					a.CreatedAt.Format("2006-01-02"),
					a.Vendor, a.Amount, a.Category, a.Status, a.AnomalyScore)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of audits to show")
	return cmd
}
