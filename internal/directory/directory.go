// Package directory supplies customer profiles to the router. The mock
// implementation ships a fixed roster; a real deployment replaces it with a
// CRM query behind the same interface.
package directory

import "github.com/mgkim1976-spec/research-based-wm/internal/types"

// Directory lists the customers a routine run fans out to.
type Directory interface {
	Customers() []*types.CustomerProfile
}

// MockDirectory returns the fixed four-profile roster covering each segment.
type MockDirectory struct{}

// Customers returns one representative customer per segment.
func (MockDirectory) Customers() []*types.CustomerProfile {
	return []*types.CustomerProfile{
		{
			CustomerID:       "cust_001",
			SegmentID:        types.SegmentS1,
			AssetTier:        "Low",
			TradingFrequency: "Low",
			Modifiers:        []string{"Novice", "Video-preferred"},
			EngagementLevel:  "Dormant",
		},
		{
			CustomerID:       "cust_002",
			SegmentID:        types.SegmentS2,
			AssetTier:        "Low",
			TradingFrequency: "High",
			Modifiers:        []string{"Active", "ETF-heavy"},
			EngagementLevel:  "Active",
		},
		{
			CustomerID:       "cust_003",
			SegmentID:        types.SegmentS3,
			AssetTier:        "High",
			TradingFrequency: "Low",
			Modifiers:        []string{"Conservative", "Loss-sensitive"},
			EngagementLevel:  "Moderate",
		},
		{
			CustomerID:       "cust_004",
			SegmentID:        types.SegmentS4,
			AssetTier:        "High",
			TradingFrequency: "High",
			Modifiers:        []string{"Expert", "Concentrated sector exposure"},
			EngagementLevel:  "Very Active",
		},
	}
}
