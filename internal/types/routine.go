package types

import "fmt"

// RoutineType identifies one of the fixed curation cadences.
type RoutineType string

// Routine cadences. Only the morning hybrid routine is fully implemented;
// the others share the same pipeline skeleton with different policies.
const (
	RoutineMorningHybrid RoutineType = "morning_hybrid"
	RoutineBiweeklyDeep  RoutineType = "biweekly_deep"
	RoutineWeekendTheme  RoutineType = "weekend_theme"
	RoutineEducational   RoutineType = "educational"
)

// ParseRoutineType converts user input into a RoutineType. It accepts both
// the canonical identifiers and the single-letter shorthand PBs use
// ("A" through "D").
func ParseRoutineType(s string) (RoutineType, error) {
	switch s {
	case string(RoutineMorningHybrid), "A", "a":
		return RoutineMorningHybrid, nil
	case string(RoutineBiweeklyDeep), "B", "b":
		return RoutineBiweeklyDeep, nil
	case string(RoutineWeekendTheme), "C", "c":
		return RoutineWeekendTheme, nil
	case string(RoutineEducational), "D", "d":
		return RoutineEducational, nil
	default:
		return "", fmt.Errorf("unknown routine type %q", s)
	}
}

// DisplayName returns the human-readable routine name used in audit records
// and dashboards.
func (r RoutineType) DisplayName() string {
	switch r {
	case RoutineMorningHybrid:
		return "Routine A: Daily Morning Hybrid"
	case RoutineBiweeklyDeep:
		return "Routine B: Biweekly Deep Portfolio"
	case RoutineWeekendTheme:
		return "Routine C: Weekend Theme Discovery"
	case RoutineEducational:
		return "Routine D: Educational Confidence Building"
	default:
		return string(r)
	}
}

// Urgency grades how quickly a bundle should reach customers.
type Urgency string

// Urgency levels, highest to lowest.
const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyNormal Urgency = "Normal"
	UrgencyLow    Urgency = "Low"
)

// Confidence grades how strong the report/video pairing is.
type Confidence string

// Confidence levels. High requires both a report and a video.
const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
)

// Segment identifies a customer segment.
type Segment string

// The four customer segments. S1 is low-asset/low-activity novices, S2 is
// low-asset active traders, S3 is high-asset conservative holders, S4 is
// high-asset active experts.
const (
	SegmentS1 Segment = "S1"
	SegmentS2 Segment = "S2"
	SegmentS3 Segment = "S3"
	SegmentS4 Segment = "S4"
)

// DeliveryMode expresses which content format leads the outreach.
type DeliveryMode string

// Delivery modes.
const (
	DeliveryVideoFirst DeliveryMode = "Video-First"
	DeliveryTextFirst  DeliveryMode = "Text-First"
	DeliveryHybrid     DeliveryMode = "Hybrid"
)
