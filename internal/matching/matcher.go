package matching

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// complianceNotes is attached to every bundle; drafts are internal PB aids
// and must never be forwarded verbatim.
const complianceNotes = "내부 PB 보조용 초안입니다. 수정 없이 고객에게 그대로 전달하지 마십시오."

// Match reason copy, keyed by which content is present.
const (
	reasonOverlapFmt = "리서치와 영상의 공통 키워드(%s)를 기반으로 매칭되었습니다."
	reasonNoOverlap  = "오늘의 시장 흐름과 가장 연관성이 높은 리서치와 영상을 선정하였습니다."
	reasonReportOnly = "오늘 가장 주목해야 할 핵심 리서치 리포트입니다."
	reasonVideoOnly  = "오늘의 시장 상황을 가장 잘 설명하는 스마트머니 영상입니다."
	reasonNoContent  = "매칭된 콘텐츠가 없습니다."
)

// contentPresence enumerates which halves of a bundle are present.
type contentPresence int

const (
	presenceNone contentPresence = iota
	presenceReportOnly
	presenceVideoOnly
	presenceBoth
)

// ctaRule holds the urgency and call-to-action policy for one routine type.
// CTAs that vary with content presence use byPresence; routines with a single
// CTA leave it nil.
type ctaRule struct {
	urgency    types.Urgency
	byPresence map[contentPresence]string
	defaultCTA string
}

// defaultCTAText applies to unspecified routines and to presence combinations
// a routine has no specific CTA for.
const defaultCTAText = "추후 여유로운 시간에 확인해 보세요."

// ctaRules is the urgency/CTA lookup table. Routines absent from the table
// (weekend theme included) fall back to Normal urgency with the default CTA.
var ctaRules = map[types.RoutineType]ctaRule{
	types.RoutineMorningHybrid: {
		urgency: types.UrgencyHigh,
		byPresence: map[contentPresence]string{
			presenceBoth:       "영상으로 빠른 시황을 파악한 후, 리포트 원문으로 세부 지표를 확인하세요.",
			presenceReportOnly: "장 시작 전, 리포트의 핵심 Thesis를 정독하십시오.",
			presenceVideoOnly:  "출근길 영상을 통해 밤사이 미국 증시 흐름을 빠르게 캐치하세요.",
		},
		defaultCTA: defaultCTAText,
	},
	types.RoutineBiweeklyDeep: {
		urgency:    types.UrgencyMedium,
		defaultCTA: "리포트 요약본을 읽고 포트폴리오 영향도를 PB와 상담하세요.",
	},
	types.RoutineEducational: {
		urgency:    types.UrgencyLow,
		defaultCTA: "부담 없이 시청/정독하며 투자 시야를 넓혀보세요.",
	},
}

// ContentMatcher pairs a report and video into a bundle and answers
// historical similarity queries through its ranker.
type ContentMatcher struct {
	ranker CandidateRanker
	logger *zap.Logger
}

// NewContentMatcher creates a matcher over the given ranker.
func NewContentMatcher(ranker CandidateRanker, logger *zap.Logger) *ContentMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentMatcher{ranker: ranker, logger: logger}
}

// AddToHistory appends reports to the historical collection.
func (m *ContentMatcher) AddToHistory(reports []*types.ResearchReport) {
	m.ranker.AddToHistory(reports)
}

// SearchHistoricalReports returns the best-matching historical report for the
// query tags, or nil when nothing overlaps.
func (m *ContentMatcher) SearchHistoricalReports(queryTags []string) *types.ResearchReport {
	ranked := m.ranker.RankCandidates(queryTags)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0]
}

// CreateHybridBundle builds a bundle from the selected report and video.
// Either may be nil; a bundle with neither is degenerate and the caller must
// not route it. The function is pure apart from id generation.
func (m *ContentMatcher) CreateHybridBundle(report *types.ResearchReport, video *types.SmartMoneyVideo, routine types.RoutineType) *types.HybridContentBundle {
	presence := classifyPresence(report, video)

	bundle := &types.HybridContentBundle{
		BundleID:        types.NewID("bndl"),
		RoutineType:     routine,
		MatchReason:     deriveMatchReason(report, video, presence),
		TargetSegments:  []types.Segment{},
		ComplianceNotes: complianceNotes,
		Confidence:      types.ConfidenceMedium,
	}
	if report != nil {
		bundle.ReportID = report.ReportID
	}
	if video != nil {
		bundle.VideoID = video.VideoID
	}
	if presence == presenceBoth {
		bundle.Confidence = types.ConfidenceHigh
	}

	bundle.Urgency, bundle.RecommendedCTA = lookupCTA(routine, presence)

	m.logger.Debug("created hybrid bundle",
		zap.String("bundle_id", bundle.BundleID),
		zap.String("routine", string(routine)),
		zap.String("match_reason", bundle.MatchReason))

	return bundle
}

func classifyPresence(report *types.ResearchReport, video *types.SmartMoneyVideo) contentPresence {
	switch {
	case report != nil && video != nil:
		return presenceBoth
	case report != nil:
		return presenceReportOnly
	case video != nil:
		return presenceVideoOnly
	default:
		return presenceNone
	}
}

// deriveMatchReason produces the Korean rationale shown to PBs. When both
// halves are present and share tags, the reason cites every overlapping tag
// in report-tag order.
func deriveMatchReason(report *types.ResearchReport, video *types.SmartMoneyVideo, presence contentPresence) string {
	switch presence {
	case presenceBoth:
		overlap := tagIntersection(report.Tags, video.Tags)
		if len(overlap) > 0 {
			return fmt.Sprintf(reasonOverlapFmt, strings.Join(overlap, ", "))
		}
		return reasonNoOverlap
	case presenceReportOnly:
		return reasonReportOnly
	case presenceVideoOnly:
		return reasonVideoOnly
	default:
		return reasonNoContent
	}
}

// lookupCTA resolves urgency and CTA from the decision table.
func lookupCTA(routine types.RoutineType, presence contentPresence) (types.Urgency, string) {
	rule, ok := ctaRules[routine]
	if !ok {
		return types.UrgencyNormal, defaultCTAText
	}
	if cta, ok := rule.byPresence[presence]; ok {
		return rule.urgency, cta
	}
	return rule.urgency, rule.defaultCTA
}

// tagIntersection returns tags present in both slices, preserving the order
// of the first slice and dropping duplicates.
func tagIntersection(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, tag := range b {
		inB[tag] = struct{}{}
	}

	var overlap []string
	seen := make(map[string]struct{}, len(a))
	for _, tag := range a {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := inB[tag]; ok {
			overlap = append(overlap, tag)
		}
	}
	return overlap
}
