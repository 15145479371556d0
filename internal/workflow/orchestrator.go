// Package workflow drives the routine state machine: fetch, select, enrich,
// match, route, audit. Each stage feeds the next; failures either terminate
// the run (missing content) or degrade to safe defaults (everything else).
package workflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mgkim1976-spec/research-based-wm/internal/directory"
	"github.com/mgkim1976-spec/research-based-wm/internal/inference"
	"github.com/mgkim1976-spec/research-based-wm/internal/matching"
	"github.com/mgkim1976-spec/research-based-wm/internal/routing"
	"github.com/mgkim1976-spec/research-based-wm/internal/store"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// ContentSource supplies research reports. Fetch failures here are fatal for
// the run; full-text retrieval is best-effort.
type ContentSource interface {
	FetchRecentReports(ctx context.Context, limit int) ([]*types.ResearchReport, error)
	FetchReportContents(ctx context.Context, report *types.ResearchReport) string
}

// VideoSource supplies SmartMoney videos. Failures degrade to a no-video run.
type VideoSource interface {
	FetchRecentVideos(ctx context.Context, limit int) ([]*types.SmartMoneyVideo, error)
}

// routineSpec parameterizes the shared pipeline skeleton per routine type.
type routineSpec struct {
	routine     types.RoutineType
	reportLimit int
	videoLimit  int
	rationale   string
}

var morningSpec = routineSpec{
	routine:     types.RoutineMorningHybrid,
	reportLimit: 5,
	videoLimit:  3,
	rationale:   "Generated morning routine based on latest available contents.",
}

// Orchestrator wires the pipeline stages together. One orchestrator is
// shared by the HTTP server, the scheduler, and the CLI.
type Orchestrator struct {
	source  ContentSource
	videos  VideoSource
	reports store.Store
	engine  inference.Engine
	matcher *matching.ContentMatcher
	router  *routing.SegmentRouter
	dir     directory.Directory
	logger  *zap.Logger

	// runLocks serializes concurrent triggers of the same routine type;
	// different routines may overlap.
	mu       sync.Mutex
	runLocks map[types.RoutineType]*sync.Mutex
}

// Options collects the orchestrator's collaborators.
type Options struct {
	Source    ContentSource
	Videos    VideoSource
	Reports   store.Store
	Engine    inference.Engine
	Matcher   *matching.ContentMatcher
	Router    *routing.SegmentRouter
	Directory directory.Directory
	Logger    *zap.Logger
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := opts.Directory
	if dir == nil {
		dir = directory.MockDirectory{}
	}
	return &Orchestrator{
		source:   opts.Source,
		videos:   opts.Videos,
		reports:  opts.Reports,
		engine:   opts.Engine,
		matcher:  opts.Matcher,
		router:   opts.Router,
		dir:      dir,
		logger:   logger,
		runLocks: make(map[types.RoutineType]*sync.Mutex),
	}
}

// RunMorningHybrid executes the daily morning hybrid routine. An empty
// targetReportID selects the freshest report of today's fetch. The returned
// error is non-nil only when fetching reports failed outright; terminal
// selection failures come back as an error-status result.
func (o *Orchestrator) RunMorningHybrid(ctx context.Context, targetReportID string) (*RoutineResult, error) {
	return o.run(ctx, morningSpec, targetReportID)
}

// RunBiweeklyDeep is declared for the biweekly deep-dive cadence.
func (o *Orchestrator) RunBiweeklyDeep(ctx context.Context) (*RoutineResult, error) {
	return nil, ErrNotImplemented
}

// RunWeekendTheme is declared for the weekend theme-discovery cadence.
func (o *Orchestrator) RunWeekendTheme(ctx context.Context) (*RoutineResult, error) {
	return nil, ErrNotImplemented
}

// RunEducational is declared for the educational cadence.
func (o *Orchestrator) RunEducational(ctx context.Context) (*RoutineResult, error) {
	return nil, ErrNotImplemented
}

// RefreshReports fetches the board's recent reports and persists the new
// ones without running a routine. The server's background scanner calls this
// on an interval so the durable history keeps growing between runs.
func (o *Orchestrator) RefreshReports(ctx context.Context) (int, error) {
	reports, err := o.source.FetchRecentReports(ctx, morningSpec.reportLimit)
	if err != nil {
		return 0, err
	}
	inserted, err := o.reports.AppendNew(ctx, reports)
	if err != nil {
		return 0, err
	}
	o.matcher.AddToHistory(reports)
	o.logger.Info("report refresh completed",
		zap.Int("fetched", len(reports)), zap.Int("new", inserted))
	return inserted, nil
}

// run is the shared five-stage skeleton: fetch, select, enrich, match,
// route, audit.
func (o *Orchestrator) run(ctx context.Context, spec routineSpec, targetReportID string) (*RoutineResult, error) {
	lock := o.lockFor(spec.routine)
	lock.Lock()
	defer lock.Unlock()

	o.logger.Info("starting routine", zap.String("routine", string(spec.routine)))

	// FETCH. Report failures are fatal; video failures degrade.
	reports, err := o.source.FetchRecentReports(ctx, spec.reportLimit)
	if err != nil {
		o.logger.Error("report fetch failed", zap.Error(err))
		return nil, err
	}

	var warnings []string
	if inserted, perr := o.reports.AppendNew(ctx, reports); perr != nil {
		o.logger.Error("failed to persist fetched reports", zap.Error(perr))
		warnings = append(warnings, msgStoreWriteFail)
	} else if inserted > 0 {
		o.logger.Info("persisted new reports", zap.Int("count", inserted))
	}

	o.matcher.AddToHistory(reports)

	videoList, verr := o.videos.FetchRecentVideos(ctx, spec.videoLimit)
	if verr != nil {
		o.logger.Warn("video fetch failed, continuing without video", zap.Error(verr))
		videoList = nil
	}

	// SELECT. No content at all is a terminal failure distinct from a
	// missing requested report.
	if len(reports) == 0 && len(videoList) == 0 {
		o.logger.Warn("terminal: no content available", zap.Error(ErrNoContent))
		result := errorResult(msgNoContent)
		result.Warnings = warnings
		return result, nil
	}

	mainReport := o.selectReport(ctx, reports, targetReportID)
	if mainReport == nil {
		o.logger.Warn("terminal: report not found",
			zap.String("target_report_id", targetReportID), zap.Error(ErrReportNotFound))
		result := errorResult(msgReportNotFound)
		result.Warnings = warnings
		return result, nil
	}

	var mainVideo *types.SmartMoneyVideo
	if len(videoList) > 0 {
		mainVideo = videoList[0]
	}

	otherReports := make([]*types.ResearchReport, 0, len(reports))
	for _, r := range reports {
		if r.ReportID != mainReport.ReportID {
			otherReports = append(otherReports, r)
		}
	}

	// ENRICH. The two classification branches are independent; inference
	// failures inside them degrade to placeholders, so neither returns an
	// error.
	var reportData *inference.ReportAnalysis
	var videoData *inference.VideoAnalysis

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o.source.FetchReportContents(gctx, mainReport)
		text := mainReport.NormalizedText
		if text == "" {
			text = mainReport.Title
		}

		analysis, aerr := o.engine.ParseResearchReport(gctx, text)
		if aerr != nil || analysis == nil {
			analysis = inference.PlaceholderReportAnalysis()
		}
		analysis.ReportTitle = mainReport.Title
		analysis.SourceURL = mainReport.SourceURL
		if len(mainReport.AttachmentURLs) > 0 {
			analysis.PDFURL = mainReport.AttachmentURLs[0]
		}

		mainReport.Tags = analysis.InferredTags()
		reportData = analysis
		return nil
	})
	g.Go(func() error {
		if mainVideo == nil {
			return nil
		}
		analysis, aerr := o.engine.AnalyzeVideo(gctx, mainVideo.Title, mainVideo.Description, mainVideo.TranscriptOrSummary)
		if aerr != nil || analysis == nil {
			analysis = inference.PlaceholderVideoAnalysis()
		}
		analysis.SourceURL = mainVideo.SourceURL

		mainVideo.Tags = analysis.TopicTags
		videoData = analysis
		return nil
	})
	_ = g.Wait()

	// MATCH.
	bundle := o.matcher.CreateHybridBundle(mainReport, mainVideo, spec.routine)

	// ROUTE.
	drafts := o.router.RouteAndDraft(ctx, bundle, o.dir.Customers(), reportData, videoData)

	// AUDIT.
	audit := &types.AuditRecord{
		AuditID:      types.NewID("audit"),
		Timestamp:    time.Now(),
		ReportID:     bundle.ReportID,
		VideoID:      bundle.VideoID,
		WorkflowName: spec.routine.DisplayName(),
		DecisionPoints: map[string]any{
			"match_reason":    bundle.MatchReason,
			"target_segments": bundle.TargetSegments,
		},
		GeneratedOutputs:  map[string]any{"draft_count": len(drafts)},
		Rationale:         spec.rationale,
		HumanReviewStatus: "pending",
	}

	o.logger.Info("routine completed",
		zap.String("routine", string(spec.routine)),
		zap.String("bundle_id", bundle.BundleID),
		zap.Int("draft_count", len(drafts)))

	return &RoutineResult{
		Status:       StatusSuccess,
		Bundle:       bundle,
		Drafts:       drafts,
		Audit:        audit,
		ReportData:   reportData,
		VideoData:    videoData,
		OtherReports: otherReports,
		Warnings:     warnings,
	}, nil
}

// selectReport picks the focal report: the explicitly requested id from
// today's fetch first, then from the full durable history, else the freshest
// of today's fetch. Returns nil when nothing matches.
func (o *Orchestrator) selectReport(ctx context.Context, todays []*types.ResearchReport, targetReportID string) *types.ResearchReport {
	if targetReportID != "" {
		for _, r := range todays {
			if r.ReportID == targetReportID {
				return r
			}
		}

		// Fall back to the durable history; a read failure means an empty
		// history, never an aborted run.
		history, err := o.reports.LoadAll(ctx)
		if err != nil {
			o.logger.Warn("failed to load report history, treating as empty", zap.Error(err))
			history = nil
		}
		for _, r := range history {
			if r.ReportID == targetReportID {
				o.logger.Info("requested report found in history", zap.String("title", r.Title))
				return r
			}
		}
	}

	// The board lists newest first, so the head of today's fetch is the
	// freshest report.
	if targetReportID == "" && len(todays) > 0 {
		return todays[0]
	}
	return nil
}

func (o *Orchestrator) lockFor(routine types.RoutineType) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.runLocks[routine]
	if !ok {
		lock = &sync.Mutex{}
		o.runLocks[routine] = lock
	}
	return lock
}
