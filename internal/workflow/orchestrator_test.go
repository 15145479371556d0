package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgkim1976-spec/research-based-wm/internal/directory"
	"github.com/mgkim1976-spec/research-based-wm/internal/inference"
	"github.com/mgkim1976-spec/research-based-wm/internal/matching"
	"github.com/mgkim1976-spec/research-based-wm/internal/routing"
	"github.com/mgkim1976-spec/research-based-wm/internal/store"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

type fakeSource struct {
	reports  []*types.ResearchReport
	err      error
	contents string
}

func (f *fakeSource) FetchRecentReports(ctx context.Context, limit int) ([]*types.ResearchReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reports) > limit {
		return f.reports[:limit], nil
	}
	return f.reports, nil
}

func (f *fakeSource) FetchReportContents(ctx context.Context, report *types.ResearchReport) string {
	report.NormalizedText = f.contents
	return f.contents
}

type fakeVideos struct {
	videos []*types.SmartMoneyVideo
	err    error
}

func (f *fakeVideos) FetchRecentVideos(ctx context.Context, limit int) ([]*types.SmartMoneyVideo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.videos) > limit {
		return f.videos[:limit], nil
	}
	return f.videos, nil
}

// taggingEngine classifies everything as 반도체 so report and video tags
// overlap deterministically.
type taggingEngine struct {
	inference.StaticEngine
}

func (taggingEngine) ParseResearchReport(ctx context.Context, text string) (*inference.ReportAnalysis, error) {
	return &inference.ReportAnalysis{
		Thesis:           "반도체 업황 개선",
		SectorImpact:     []string{"반도체"},
		AssetClassImpact: []string{},
	}, nil
}

func (taggingEngine) AnalyzeVideo(ctx context.Context, title, description, transcript string) (*inference.VideoAnalysis, error) {
	return &inference.VideoAnalysis{
		EducationLevel:    "intermediate",
		ContentStyle:      "urgent market",
		TopicTags:         []string{"반도체"},
		TranscriptSummary: "반도체 시황 요약",
	}, nil
}

// failingStore simulates a persistence layer with broken writes.
type failingStore struct{}

func (failingStore) AppendNew(ctx context.Context, reports []*types.ResearchReport) (int, error) {
	return 0, errors.New("disk full")
}

func (failingStore) LoadAll(ctx context.Context) ([]*types.ResearchReport, error) {
	return nil, nil
}

func testReport(id string, daysAgo int) *types.ResearchReport {
	return &types.ResearchReport{
		ReportID: id,
		Title:    "리포트 " + id,
		Date:     time.Now().AddDate(0, 0, -daysAgo),
	}
}

func testVideo(id string) *types.SmartMoneyVideo {
	return &types.SmartMoneyVideo{
		VideoID:     id,
		Title:       "시황 영상",
		PublishDate: time.Now(),
	}
}

func newOrchestrator(t *testing.T, source ContentSource, vids VideoSource, engine inference.Engine, reports store.Store) *Orchestrator {
	t.Helper()
	if reports == nil {
		var err error
		reports, err = store.NewFileStore(filepath.Join(t.TempDir(), "research_db.json"), nil)
		require.NoError(t, err)
	}
	return New(Options{
		Source:  source,
		Videos:  vids,
		Reports: reports,
		Engine:  engine,
		Matcher: matching.NewContentMatcher(matching.NewKeywordRanker(), nil),
		Router:  routing.NewSegmentRouter(engine, nil),
	})
}

func TestRunMorningHybrid_EndToEnd(t *testing.T) {
	source := &fakeSource{
		reports:  []*types.ResearchReport{testReport("mirae_1", 0), testReport("mirae_2", 1)},
		contents: "반도체 수요가 회복되고 있습니다.",
	}
	vids := &fakeVideos{videos: []*types.SmartMoneyVideo{testVideo("vidX")}}
	o := newOrchestrator(t, source, vids, taggingEngine{}, nil)

	result, err := o.RunMorningHybrid(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	// Matching: overlapping 반도체 tag drives the reason and High confidence.
	require.NotNil(t, result.Bundle)
	assert.Contains(t, result.Bundle.MatchReason, "반도체")
	assert.Equal(t, types.ConfidenceHigh, result.Bundle.Confidence)
	assert.Equal(t, "mirae_1", result.Bundle.ReportID)
	assert.Equal(t, "vidX", result.Bundle.VideoID)
	assert.Equal(t, types.UrgencyHigh, result.Bundle.Urgency)

	// Routing: all four mock customers, S2/S4 first.
	require.Len(t, result.Drafts, 4)
	top := result.Drafts[0]
	assert.Equal(t, 5, top.FollowUpPriority)
	assert.Contains(t, []string{"cust_002", "cust_004"}, top.CustomerID)
	assert.ElementsMatch(t, []types.Segment{
		types.SegmentS1, types.SegmentS2, types.SegmentS3, types.SegmentS4,
	}, result.Bundle.TargetSegments)

	// Audit references the decision inputs and outputs.
	require.NotNil(t, result.Audit)
	assert.Equal(t, result.Bundle.MatchReason, result.Audit.DecisionPoints["match_reason"])
	assert.Equal(t, 4, result.Audit.GeneratedOutputs["draft_count"])
	assert.Equal(t, "pending", result.Audit.HumanReviewStatus)
	assert.Equal(t, "mirae_1", result.Audit.ReportID)

	// Enrichment tagged the selected report and exposed the candidates.
	assert.Equal(t, []string{"반도체"}, source.reports[0].Tags)
	require.Len(t, result.OtherReports, 1)
	assert.Equal(t, "mirae_2", result.OtherReports[0].ReportID)
}

func TestRunMorningHybrid_NoContentIsTerminal(t *testing.T) {
	o := newOrchestrator(t, &fakeSource{}, &fakeVideos{}, inference.StaticEngine{}, nil)

	result, err := o.RunMorningHybrid(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusError, result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.Bundle)
	assert.Empty(t, result.Drafts)
	assert.Nil(t, result.Audit)
}

func TestRunMorningHybrid_ReportFetchFailureIsFatal(t *testing.T) {
	o := newOrchestrator(t, &fakeSource{err: errors.New("board unreachable")},
		&fakeVideos{}, inference.StaticEngine{}, nil)

	_, err := o.RunMorningHybrid(context.Background(), "")
	assert.Error(t, err)
}

func TestRunMorningHybrid_VideoFailureDegrades(t *testing.T) {
	source := &fakeSource{reports: []*types.ResearchReport{testReport("mirae_1", 0)}}
	o := newOrchestrator(t, source, &fakeVideos{err: errors.New("feed down")},
		inference.StaticEngine{}, nil)

	result, err := o.RunMorningHybrid(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)
	assert.Empty(t, result.Bundle.VideoID)
	assert.Equal(t, types.ConfidenceMedium, result.Bundle.Confidence)
	// No video means no video link anywhere in the drafts.
	for _, d := range result.Drafts {
		assert.NotContains(t, d.ClientMessageDraft, "youtube.com")
		assert.NotContains(t, d.ClientMessageDraft, "[영상 링크]")
	}
}

func TestRunMorningHybrid_TargetReportFromTodaysFetch(t *testing.T) {
	source := &fakeSource{reports: []*types.ResearchReport{
		testReport("mirae_1", 0), testReport("mirae_2", 1),
	}}
	o := newOrchestrator(t, source, &fakeVideos{}, inference.StaticEngine{}, nil)

	result, err := o.RunMorningHybrid(context.Background(), "mirae_2")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "mirae_2", result.Bundle.ReportID)
}

func TestRunMorningHybrid_TargetReportFromHistory(t *testing.T) {
	fileStore, err := store.NewFileStore(filepath.Join(t.TempDir(), "research_db.json"), nil)
	require.NoError(t, err)
	_, err = fileStore.AppendNew(context.Background(), []*types.ResearchReport{testReport("mirae_old", 30)})
	require.NoError(t, err)

	source := &fakeSource{reports: []*types.ResearchReport{testReport("mirae_1", 0)}}
	o := newOrchestrator(t, source, &fakeVideos{}, inference.StaticEngine{}, fileStore)

	result, err := o.RunMorningHybrid(context.Background(), "mirae_old")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "mirae_old", result.Bundle.ReportID)
	// Today's candidates are still reported alongside the historical pick.
	require.Len(t, result.OtherReports, 1)
}

func TestRunMorningHybrid_UnknownTargetIsTerminal(t *testing.T) {
	source := &fakeSource{reports: []*types.ResearchReport{testReport("mirae_1", 0)}}
	o := newOrchestrator(t, source, &fakeVideos{}, inference.StaticEngine{}, nil)

	result, err := o.RunMorningHybrid(context.Background(), "mirae_missing")
	require.NoError(t, err)
	assert.Equal(t, StatusError, result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.Drafts)
}

func TestRunMorningHybrid_StoreWriteFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{reports: []*types.ResearchReport{testReport("mirae_1", 0)}}
	o := newOrchestrator(t, source, &fakeVideos{}, inference.StaticEngine{}, failingStore{})

	result, err := o.RunMorningHybrid(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.NotEmpty(t, result.Warnings)
}

func TestRunMorningHybrid_PersistsFetchedReports(t *testing.T) {
	fileStore, err := store.NewFileStore(filepath.Join(t.TempDir(), "research_db.json"), nil)
	require.NoError(t, err)

	source := &fakeSource{reports: []*types.ResearchReport{testReport("mirae_1", 0)}}
	o := newOrchestrator(t, source, &fakeVideos{}, inference.StaticEngine{}, fileStore)

	_, err = o.RunMorningHybrid(context.Background(), "")
	require.NoError(t, err)

	stored, err := fileStore.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "mirae_1", stored[0].ReportID)
}

func TestRefreshReports(t *testing.T) {
	fileStore, err := store.NewFileStore(filepath.Join(t.TempDir(), "research_db.json"), nil)
	require.NoError(t, err)

	source := &fakeSource{reports: []*types.ResearchReport{
		testReport("mirae_1", 0), testReport("mirae_2", 1),
	}}
	o := newOrchestrator(t, source, &fakeVideos{}, inference.StaticEngine{}, fileStore)

	inserted, err := o.RefreshReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// A second scan over the same board page inserts nothing new.
	inserted, err = o.RefreshReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestStubRoutinesDeclaredNotImplemented(t *testing.T) {
	o := newOrchestrator(t, &fakeSource{}, &fakeVideos{}, inference.StaticEngine{}, nil)
	ctx := context.Background()

	_, err := o.RunBiweeklyDeep(ctx)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = o.RunWeekendTheme(ctx)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = o.RunEducational(ctx)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

// Educational flow composed from matcher and router directly: report only,
// novice-or-S1 audience, no video references in messages.
func TestEducationalBundleFlow(t *testing.T) {
	matcher := matching.NewContentMatcher(matching.NewKeywordRanker(), nil)
	router := routing.NewSegmentRouter(inference.StaticEngine{}, nil)

	report := testReport("mirae_edu", 0)
	bundle := matcher.CreateHybridBundle(report, nil, types.RoutineEducational)
	assert.Equal(t, types.UrgencyLow, bundle.Urgency)

	drafts := router.RouteAndDraft(context.Background(), bundle,
		directory.MockDirectory{}.Customers(), inference.PlaceholderReportAnalysis(), nil)

	require.Len(t, drafts, 1)
	assert.Equal(t, "cust_001", drafts[0].CustomerID)
	assert.NotContains(t, drafts[0].ClientMessageDraft, "[영상 링크]")
	assert.NotContains(t, drafts[0].ClientMessageDraft, "youtube.com")
	assert.Equal(t, []types.Segment{types.SegmentS1}, bundle.TargetSegments)
}
