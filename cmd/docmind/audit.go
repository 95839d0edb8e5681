package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docmind/expense-audit/internal/anomaly"
	"github.com/docmind/expense-audit/internal/common"
	"github.com/docmind/expense-audit/internal/config"
	"github.com/docmind/expense-audit/internal/llm"
	"github.com/docmind/expense-audit/internal/model"
	"github.com/docmind/expense-audit/internal/ocr"
	"github.com/docmind/expense-audit/internal/pipeline"
	"github.com/docmind/expense-audit/internal/storage"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [file]",
		Short: "Run the audit pipeline over an expense document",
		Long: `Runs the full verification pipeline: field extraction, categorization,
fraud risk assessment against your stored expense history, anomaly
scoring, and a final audit verdict.

Pass a text file to audit its contents directly, or any other document
to have its text extracted by the configured OCR service first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAudit,
	}

	cmd.Flags().String("text", "", "audit raw text instead of a file")
	cmd.Flags().Bool("json", false, "print the full result as JSON")
	cmd.Flags().Bool("save", false, "record the verdict in the audit log")
	cmd.Flags().Int("history-limit", 50, "how many stored expenses to supply as history")

	return cmd
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rawText, _ := cmd.Flags().GetString("text")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	historyLimit, _ := cmd.Flags().GetInt("history-limit")

	text, err := documentText(ctx, rawText, args)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	})
	if err != nil {
		return common.NewUserError("failed to set up generation client", err)
	}
	defer func() {
		if closer, ok := client.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	history, err := store.ListExpenses(ctx, historyLimit)
	if err != nil {
		return common.NewUserError("failed to load expense history", err)
	}

	p := pipeline.NewWithConfig(client, anomaly.NewDetector(), slog.Default(), pipeline.Config{
		StageTimeout: viper.GetDuration("pipeline.stage_timeout"),
	})

	result, err := p.Process(ctx, text, history)
	if err != nil {
		return err
	}

	if save {
		if err := store.SaveAudit(ctx, result); err != nil {
			return common.NewUserError("failed to record audit", err)
		}
	}

	if asJSON {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	}

	printReport(result)
	return nil
}

// documentText resolves the pipeline input: the --text flag, a plain text
// file read directly, or any other document routed through the OCR service.
func documentText(ctx context.Context, rawText string, args []string) (string, error) {
	if rawText != "" {
		return rawText, nil
	}
	if len(args) == 0 {
		return "", common.NewUserError("nothing to audit: pass a file or --text", nil)
	}

	path := args[0]
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied document path
	if err != nil {
		return "", common.NewUserError("failed to read document", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".txt" {
		return string(data), nil
	}

	extractor, err := ocr.NewRemoteClient(viper.GetString("ocr.url"), viper.GetDuration("ocr.timeout"))
	if err != nil {
		return "", common.NewUserError("OCR service not configured for non-text documents", err)
	}

	contentType := mime.TypeByExtension(ext)
	text, err := extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		return "", common.NewUserError("text extraction failed", err)
	}
	return text, nil
}

func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open database", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("failed to migrate database", err)
	}
	return store, nil
}

func printReport(result *model.PipelineResult) {
	fmt.Printf("Vendor:        %s\n", result.Expense.Vendor)
	fmt.Printf("Amount:        $%.2f\n", result.Expense.Amount)
	fmt.Printf("Date:          %s\n", result.Expense.Date)
	fmt.Printf("Category:      %s", result.Categorization.Category)
	if result.Categorization.Subcategory != "" {
		fmt.Printf(" / %s", result.Categorization.Subcategory)
	}
	fmt.Println()
	fmt.Printf("Risk:          %s (fraudulent: %v)\n", result.Risk.RiskLevel, result.Risk.IsFraudulent)
	fmt.Printf("Anomaly score: %.3f\n", result.AnomalyScore)
	fmt.Printf("Status:        %s\n", result.Summary.Status)
	fmt.Printf("\n%s\n", result.Summary.Summary)

	if len(result.Summary.KeyFindings) > 0 {
		fmt.Println("\nKey findings:")
		for _, f := range result.Summary.KeyFindings {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(result.Summary.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range result.Summary.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}

	for _, step := range result.Trace {
		if step.Err != "" {
			fmt.Printf("\nwarning: %s stage degraded: %s\n", step.Stage, step.Err)
		}
	}
}
