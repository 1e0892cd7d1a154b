// Package pipeline orchestrates a full audit run: unify the source CSVs,
// enrich the records, run analytics and recommendation aggregation, and
// synthesize the report bundle. Persistence and export are optional stages.
package pipeline

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brand-audit-cli/internal/analyze"
	"github.com/sells-group/brand-audit-cli/internal/config"
	"github.com/sells-group/brand-audit-cli/internal/derive"
	"github.com/sells-group/brand-audit-cli/internal/export"
	"github.com/sells-group/brand-audit-cli/internal/model"
	"github.com/sells-group/brand-audit-cli/internal/recommend"
	"github.com/sells-group/brand-audit-cli/internal/report"
	"github.com/sells-group/brand-audit-cli/internal/store"
	"github.com/sells-group/brand-audit-cli/internal/unify"
)

// Options selects the inputs and optional outputs for one run.
type Options struct {
	SourceDir       string
	VisualAuditPath string
	SocialAuditPath string
	XLSXPath        string // when set, the scorecard workbook is written here
}

// Outcome carries everything a run produced. Partial results plus warnings
// are the normal shape; only missing base data and I/O failures abort a run.
type Outcome struct {
	RunID           string            `json:"run_id"`
	Records         *model.RecordSet  `json:"-"`
	Analytics       *analyze.Bundle   `json:"analytics"`
	Recommendations *recommend.Set    `json:"recommendations"`
	Reports         *report.Bundle    `json:"reports"`
	Warnings        []model.Warning   `json:"warnings,omitempty"`
}

// Pipeline wires the audit stages together.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store     // nil disables persistence
	narrator report.Narrator // nil disables narrative prose
}

// New creates a Pipeline. store and narrator are optional.
func New(cfg *config.Config, st store.Store, narrator report.Narrator) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, narrator: narrator}
}

// Run executes the full audit for one source directory.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Outcome, error) {
	log := zap.L().With(zap.String("source_dir", opts.SourceDir))
	log.Info("pipeline: starting audit")

	outcome := &Outcome{RunID: uuid.New().String()}

	var run *model.Run
	if p.store != nil {
		created, err := p.store.CreateRun(ctx, opts.SourceDir)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		run = created
		outcome.RunID = run.ID
		if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			log.Warn("pipeline: failed to mark run running", zap.Error(err))
		}
	}

	rs, err := unify.Load(opts.SourceDir)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, eris.Wrap(err, "pipeline: load records")
	}

	rs = derive.Enrich(rs, derive.Options{
		QuickWinLow:  p.cfg.Engine.QuickWinLow,
		QuickWinHigh: p.cfg.Engine.QuickWinHigh,
	})
	outcome.Records = rs

	// Analytics and recommendation aggregation read the frozen record set
	// independently.
	analyzer := analyze.New(analyze.Config{
		SuccessThreshold:  p.cfg.Engine.SuccessThreshold,
		CriticalThreshold: p.cfg.Engine.CriticalThreshold,
		TopOpportunities:  p.cfg.Engine.TopOpportunities,
		MaxSuccessStories: p.cfg.Engine.MaxSuccessStories,
		EvidenceCaps:      p.cfg.Engine.EvidenceCaps,
	})
	engine := recommend.NewEngine(p.cfg.Engine.ThemeKeywords)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundle, err := analyzer.Analyze(gctx, rs)
		if err != nil {
			return eris.Wrap(err, "pipeline: analyze")
		}
		outcome.Analytics = bundle
		return nil
	})
	g.Go(func() error {
		outcome.Recommendations = engine.Aggregate(rs, opts.VisualAuditPath, opts.SocialAuditPath)
		return nil
	})
	if err := g.Wait(); err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}

	outcome.Reports = report.New(p.narrator).Synthesize(ctx, outcome.Analytics, outcome.Recommendations)
	outcome.Warnings = collectWarnings(rs, outcome)

	if opts.XLSXPath != "" {
		if err := export.WriteScorecardXLSX(opts.XLSXPath, rs, outcome.Analytics, outcome.Recommendations); err != nil {
			p.failRun(ctx, run, err)
			return nil, err
		}
	}

	if run != nil {
		if err := p.persist(ctx, run.ID, outcome); err != nil {
			p.failRun(ctx, run, err)
			return nil, err
		}
	}

	log.Info("pipeline: audit complete",
		zap.String("run_id", outcome.RunID),
		zap.Int("records", len(rs.Records)),
		zap.Float64("brand_health", outcome.Analytics.BrandHealth.Score),
		zap.Int("recommendations", len(outcome.Recommendations.Items)),
		zap.Int("warnings", len(outcome.Warnings)),
	)
	return outcome, nil
}

// persist saves the records and one snapshot per artifact, then completes
// the run.
func (p *Pipeline) persist(ctx context.Context, runID string, outcome *Outcome) error {
	if _, err := p.store.SaveRecords(ctx, runID, outcome.Records.Records); err != nil {
		return eris.Wrap(err, "pipeline: save records")
	}

	snapshots := map[model.SnapshotKind]any{
		model.SnapshotAnalytics:       outcome.Analytics,
		model.SnapshotRecommendations: outcome.Recommendations,
		model.SnapshotReports:         outcome.Reports,
	}
	for kind, artifact := range snapshots {
		payload, err := json.Marshal(artifact)
		if err != nil {
			return eris.Wrapf(err, "pipeline: marshal %s snapshot", kind)
		}
		if err := p.store.SaveSnapshot(ctx, runID, kind, payload); err != nil {
			return eris.Wrapf(err, "pipeline: save %s snapshot", kind)
		}
	}

	return eris.Wrap(
		p.store.CompleteRun(ctx, runID, len(outcome.Records.Records), outcome.Analytics.BrandHealth.Score),
		"pipeline: complete run",
	)
}

func (p *Pipeline) failRun(ctx context.Context, run *model.Run, cause error) {
	if p.store == nil || run == nil {
		return
	}
	if err := p.store.FailRun(ctx, run.ID, cause.Error()); err != nil {
		zap.L().Warn("pipeline: failed to mark run failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
	}
}

func collectWarnings(rs *model.RecordSet, outcome *Outcome) []model.Warning {
	var out []model.Warning
	out = append(out, rs.Warnings...)
	if outcome.Analytics != nil {
		out = append(out, outcome.Analytics.Warnings...)
	}
	if outcome.Recommendations != nil {
		out = append(out, outcome.Recommendations.Warnings...)
	}
	return out
}
