// Package pipeline orchestrates the expense audit stages.
//
// The flow is linear with one parallel pair:
// Extract → Categorize → {Risk ∥ Anomaly} → Summarize. Each stage after
// extraction consumes a subset of the earlier stages' structured outputs,
// so the ordering is fixed by data dependency. No stage is skipped and no
// stage aborts the pipeline: failures degrade to default records and the
// result is always complete.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docmind/expense-audit/internal/agent"
	"github.com/docmind/expense-audit/internal/anomaly"
	"github.com/docmind/expense-audit/internal/model"
)

// Config holds configuration options for the pipeline.
type Config struct {
	// StageTimeout bounds each generation call so one slow external call
	// cannot stall an invocation indefinitely. A stage that hits the bound
	// degrades to its default record.
	StageTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StageTimeout: 30 * time.Second,
	}
}

// Pipeline wires the four analysis stages and the anomaly detector. All
// dependencies are injected at construction; invocations are independent
// and safe to run concurrently, sharing only the detector's trained model.
type Pipeline struct {
	extraction     *agent.ExtractionAgent
	categorization *agent.CategorizationAgent
	risk           *agent.RiskAgent
	summary        *agent.SummaryAgent
	detector       *anomaly.Detector
	logger         *slog.Logger
	stageTimeout   time.Duration
}

// New creates a pipeline with the default configuration.
func New(client agent.Generator, detector *anomaly.Detector, logger *slog.Logger) *Pipeline {
	return NewWithConfig(client, detector, logger, DefaultConfig())
}

// NewWithConfig creates a pipeline with a custom configuration.
func NewWithConfig(client agent.Generator, detector *anomaly.Detector, logger *slog.Logger, cfg Config) *Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = DefaultConfig().StageTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extraction:     agent.NewExtractionAgent(client, logger),
		categorization: agent.NewCategorizationAgent(client, logger),
		risk:           agent.NewRiskAgent(client, logger),
		summary:        agent.NewSummaryAgent(client, logger),
		detector:       detector,
		logger:         logger,
		stageTimeout:   cfg.StageTimeout,
	}
}

// Process runs one audit over the given document text and supplied history.
// The returned result is always complete; the only error condition is the
// caller's context being canceled.
func (p *Pipeline) Process(ctx context.Context, text string, history []model.HistoricalRecord) (*model.PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &model.PipelineResult{}

	// Stage 1: extraction.
	start := time.Now()
	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	expense, raw := p.extraction.Process(sctx, text)
	cancel()
	result.Expense = expense
	result.Trace = append(result.Trace, trace(p.extraction.Name(), raw, expense.Err, start))

	// Stage 2: categorization.
	start = time.Now()
	sctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
	categorization, raw := p.categorization.Process(sctx, agent.CategorizationInput{
		Vendor:      expense.Vendor,
		Amount:      expense.Amount,
		Items:       expense.Items,
		Description: text,
	})
	cancel()
	result.Categorization = categorization
	result.Trace = append(result.Trace, trace(p.categorization.Name(), raw, categorization.Err, start))

	// Stage 3: risk assessment and anomaly scoring, independently of each
	// other.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result.AnomalyScore = p.detector.Score(model.HistoricalRecord{
			Vendor:   expense.Vendor,
			Category: categorization.Category,
			Amount:   expense.Amount,
		}, history)
	}()

	start = time.Now()
	sctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
	risk, raw := p.risk.Process(sctx, agent.RiskInput{
		Vendor:   expense.Vendor,
		Amount:   expense.Amount,
		Category: categorization.Category,
		Date:     expense.Date,
		History:  history,
	})
	cancel()
	result.Risk = risk
	result.Trace = append(result.Trace, trace(p.risk.Name(), raw, risk.Err, start))
	wg.Wait()

	// Stage 4: audit summary.
	start = time.Now()
	sctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
	summary, raw := p.summary.Process(sctx, agent.SummaryInput{
		Vendor:               expense.Vendor,
		Amount:               expense.Amount,
		Category:             categorization.Category,
		Date:                 expense.Date,
		Items:                expense.Items,
		ExtractionConfidence: expense.Confidence,
		CategoryReasoning:    categorization.Reasoning,
		RiskLevel:            risk.RiskLevel,
		RiskConfidence:       risk.Confidence,
		AnomalyScore:         result.AnomalyScore,
	})
	cancel()
	result.Summary = summary
	result.Trace = append(result.Trace, trace(p.summary.Name(), raw, summary.Err, start))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info("audit complete",
		"vendor", expense.Vendor,
		"amount", expense.Amount,
		"category", categorization.Category,
		"risk_level", risk.RiskLevel,
		"anomaly_score", result.AnomalyScore,
		"status", summary.Status)

	return result, nil
}

func trace(stage, raw, errMarker string, start time.Time) model.StageTrace {
	return model.StageTrace{
		Stage:       stage,
		RawResponse: raw,
		Err:         errMarker,
		Duration:    time.Since(start),
	}
}
