// Package routing fans a hybrid content bundle out to customer segments,
// generating one reviewed outreach draft per eligible customer and ranking
// the result into the queue a PB works top-down.
package routing

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/inference"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// outreachChannel is the only delivery channel in use today.
const outreachChannel = "Kakao/SMS"

// Video link placeholder tokens the inference service is instructed to emit.
var placeholderTokens = []string{"[영상 링크]", "[Video Link]"}

// routePolicy is one row of the routing decision table: who is eligible for
// a routine, how urgent the follow-up is, and which content format leads.
type routePolicy struct {
	eligible func(c *types.CustomerProfile) bool
	priority func(c *types.CustomerProfile) int
	delivery func(c *types.CustomerProfile) types.DeliveryMode
}

// fallbackPolicy applies to unrecognized routine types: everyone is eligible
// at the lowest priority with hybrid delivery.
var fallbackPolicy = routePolicy{
	eligible: func(*types.CustomerProfile) bool { return true },
	priority: func(*types.CustomerProfile) int { return 1 },
	delivery: func(*types.CustomerProfile) types.DeliveryMode { return types.DeliveryHybrid },
}

// routePolicies is the per-routine decision table.
var routePolicies = map[types.RoutineType]routePolicy{
	types.RoutineMorningHybrid: {
		eligible: func(*types.CustomerProfile) bool { return true },
		priority: func(c *types.CustomerProfile) int {
			if c.SegmentID == types.SegmentS2 || c.SegmentID == types.SegmentS4 {
				return 5
			}
			return 2
		},
		delivery: func(c *types.CustomerProfile) types.DeliveryMode {
			if c.SegmentID == types.SegmentS1 || c.SegmentID == types.SegmentS2 {
				return types.DeliveryVideoFirst
			}
			return types.DeliveryTextFirst
		},
	},
	types.RoutineBiweeklyDeep: {
		eligible: func(c *types.CustomerProfile) bool {
			return c.SegmentID == types.SegmentS3 || c.SegmentID == types.SegmentS4
		},
		priority: func(*types.CustomerProfile) int { return 8 },
		delivery: func(*types.CustomerProfile) types.DeliveryMode { return types.DeliveryTextFirst },
	},
	types.RoutineEducational: {
		eligible: func(c *types.CustomerProfile) bool {
			return c.HasModifier("Novice") || c.SegmentID == types.SegmentS1
		},
		priority: func(*types.CustomerProfile) int { return 3 },
		delivery: func(*types.CustomerProfile) types.DeliveryMode { return types.DeliveryVideoFirst },
	},
}

// SegmentRouter evaluates segment eligibility and produces the ranked draft
// queue for a bundle.
type SegmentRouter struct {
	engine inference.Engine
	logger *zap.Logger
}

// NewSegmentRouter creates a router over the given inference engine.
func NewSegmentRouter(engine inference.Engine, logger *zap.Logger) *SegmentRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SegmentRouter{engine: engine, logger: logger}
}

// RouteAndDraft generates one draft per eligible customer and returns them
// sorted by follow-up priority descending; equal priorities keep the input
// customer order. Inference failures substitute the static fallback draft so
// no eligible customer drops out of the queue.
func (r *SegmentRouter) RouteAndDraft(ctx context.Context, bundle *types.HybridContentBundle, customers []*types.CustomerProfile, report *inference.ReportAnalysis, video *inference.VideoAnalysis) []*types.PBActionDraft {
	drafts := make([]*types.PBActionDraft, 0, len(customers))

	for _, customer := range customers {
		policy, ok := routePolicies[bundle.RoutineType]
		if !ok {
			policy = fallbackPolicy
		}
		if !policy.eligible(customer) {
			continue
		}

		resp, err := r.engine.GeneratePBDraft(ctx, inference.DraftRequest{
			RoutineType:  bundle.RoutineType,
			Segment:      customer.SegmentID,
			Report:       report,
			Video:        video,
			DeliveryMode: policy.delivery(customer),
		})
		if err != nil || resp == nil {
			r.logger.Warn("draft generation failed, using static fallback",
				zap.String("customer_id", customer.CustomerID),
				zap.Error(err))
			resp = inference.PlaceholderDraft(bundle.VideoID != "")
		}

		bundle.AddTargetSegment(customer.SegmentID)

		drafts = append(drafts, &types.PBActionDraft{
			ActionID:           types.NewID("act"),
			CustomerID:         customer.CustomerID,
			BundleID:           bundle.BundleID,
			RoutineType:        bundle.RoutineType,
			OutreachChannel:    outreachChannel,
			PBTalkingPoints:    resp.PBTalkingPoints.Joined(),
			ClientMessageDraft: resolveVideoLink(resp.ClientMessageDraft, bundle.VideoID),
			FollowUpPriority:   policy.priority(customer),
			Traceability:       "Match Reason: " + bundle.MatchReason,
			ReviewRequired:     true,
		})
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].FollowUpPriority > drafts[j].FollowUpPriority
	})
	return drafts
}

// resolveVideoLink substitutes the placeholder tokens with the canonical
// watch URL when the bundle carries a video. When it does not, any stray
// token the model emitted despite its instructions is scrubbed so an
// unresolved placeholder can never reach a customer-facing message.
func resolveVideoLink(message, videoID string) string {
	if videoID != "" {
		url := "https://www.youtube.com/watch?v=" + videoID
		for _, token := range placeholderTokens {
			message = strings.ReplaceAll(message, token, url)
		}
		return message
	}

	for _, token := range placeholderTokens {
		message = strings.ReplaceAll(message, token, "")
	}
	// Collapse the blank lines removal leaves behind.
	for strings.Contains(message, "\n\n\n") {
		message = strings.ReplaceAll(message, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(message)
}
