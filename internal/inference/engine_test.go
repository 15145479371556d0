package inference

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgkim1976-spec/research-based-wm/internal/llm"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// fakeClient returns canned responses or errors for each call.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	i := f.calls
	f.calls++
	var resp string
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func (f *fakeClient) Close() error { return nil }

func TestTalkingPoints_UnmarshalString(t *testing.T) {
	var resp DraftResponse
	raw := `{"pb_summary":"s","pb_talking_points":"1. A\n2. B","client_message_draft":"m"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, "1. A\n2. B", resp.PBTalkingPoints.Joined())
}

func TestTalkingPoints_UnmarshalList(t *testing.T) {
	var resp DraftResponse
	raw := `{"pb_summary":"s","pb_talking_points":["1. A","2. B"],"client_message_draft":"m"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, "1. A\n2. B", resp.PBTalkingPoints.Joined())
}

func TestValidatePayload(t *testing.T) {
	good := []byte(`{"thesis":"반도체 업황 개선","sector_impact":["반도체"]}`)
	assert.NoError(t, validatePayload("report_analysis.json", good))

	missingThesis := []byte(`{"sector_impact":["반도체"]}`)
	err := validatePayload("report_analysis.json", missingThesis)
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	notJSON := []byte(`not json at all`)
	assert.Error(t, validatePayload("report_analysis.json", notJSON))
}

func TestParseResearchReport_FallsBackOnAPIError(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("boom"), errors.New("boom")}}
	engine := NewGeminiEngine(client, nil)

	analysis, err := engine.ParseResearchReport(context.Background(), "어떤 리포트 본문")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderReportAnalysis(), analysis)
	// One retry means exactly two attempts.
	assert.Equal(t, 2, client.calls)
}

func TestParseResearchReport_RetriesOnce(t *testing.T) {
	client := &fakeClient{
		responses: []string{"", `{"thesis":"금리 인하 수혜","sector_impact":["채권"],"asset_class_impact":["채권"]}`},
		errs:      []error{errors.New("transient"), nil},
	}
	engine := NewGeminiEngine(client, nil)

	analysis, err := engine.ParseResearchReport(context.Background(), "본문")
	require.NoError(t, err)
	assert.Equal(t, "금리 인하 수혜", analysis.Thesis)
}

func TestAnalyzeVideo_FallsBackOnBadJSON(t *testing.T) {
	client := &fakeClient{responses: []string{`{"oops`}}
	engine := NewGeminiEngine(client, nil)

	analysis, err := engine.AnalyzeVideo(context.Background(), "제목", "설명", "")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderVideoAnalysis(), analysis)
}

func TestGeneratePBDraft_FallsBackWithVideoAwarePlaceholder(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("down"), errors.New("down")}}
	engine := NewGeminiEngine(client, nil)

	withVideo, err := engine.GeneratePBDraft(context.Background(), DraftRequest{
		RoutineType:  types.RoutineMorningHybrid,
		Segment:      types.SegmentS2,
		Video:        PlaceholderVideoAnalysis(),
		DeliveryMode: types.DeliveryVideoFirst,
	})
	require.NoError(t, err)
	assert.Contains(t, withVideo.ClientMessageDraft, "[영상 링크]")

	client2 := &fakeClient{errs: []error{errors.New("down"), errors.New("down")}}
	engine2 := NewGeminiEngine(client2, nil)
	noVideo, err := engine2.GeneratePBDraft(context.Background(), DraftRequest{
		RoutineType:  types.RoutineMorningHybrid,
		Segment:      types.SegmentS3,
		Report:       PlaceholderReportAnalysis(),
		DeliveryMode: types.DeliveryTextFirst,
	})
	require.NoError(t, err)
	assert.NotContains(t, noVideo.ClientMessageDraft, "[영상 링크]")
}

func TestGeneratePBDraft_ParsesListTalkingPoints(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"pb_summary":"요약","pb_talking_points":["포인트 1","포인트 2"],"client_message_draft":"고객님 안녕하세요"}`,
	}}
	engine := NewGeminiEngine(client, nil)

	draft, err := engine.GeneratePBDraft(context.Background(), DraftRequest{
		RoutineType:  types.RoutineMorningHybrid,
		Segment:      types.SegmentS4,
		Report:       PlaceholderReportAnalysis(),
		DeliveryMode: types.DeliveryTextFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "포인트 1\n포인트 2", draft.PBTalkingPoints.Joined())
}

func TestStaticEngine_NeverFails(t *testing.T) {
	var engine StaticEngine
	ctx := context.Background()

	r, err := engine.ParseResearchReport(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, r.Thesis)

	v, err := engine.AnalyzeVideo(ctx, "", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, v.TopicTags)

	d, err := engine.GeneratePBDraft(ctx, DraftRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ClientMessageDraft)
}

func TestInferredTags_UnionOfSectorAndAssetClass(t *testing.T) {
	a := &ReportAnalysis{
		SectorImpact:     []string{"반도체"},
		AssetClassImpact: []string{"주식"},
	}
	assert.Equal(t, []string{"반도체", "주식"}, a.InferredTags())
}
