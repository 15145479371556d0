package types

// CustomerProfile is a read-only snapshot of a customer from the directory.
// A real deployment sources these from the CRM; this repository ships a fixed
// mock roster.
type CustomerProfile struct {
	CustomerID       string   `json:"customer_id"`
	AssetTier        string   `json:"asset_tier"`
	TradingFrequency string   `json:"trading_frequency"`
	RiskProfile      string   `json:"risk_profile,omitempty"`
	PortfolioStyle   string   `json:"portfolio_style,omitempty"`
	AccountTypes     []string `json:"account_types,omitempty"`
	SectorExposures  []string `json:"sector_exposures,omitempty"`
	GeoExposures     []string `json:"geographic_exposures,omitempty"`
	CashRatio        float64  `json:"cash_ratio,omitempty"`
	Concentration    []string `json:"concentration_flags,omitempty"`
	EngagementLevel  string   `json:"engagement_level,omitempty"`
	MediaPreference  string   `json:"media_preference,omitempty"`
	SegmentID        Segment  `json:"segment_id"`
	Modifiers        []string `json:"modifiers,omitempty"`
}

// HasModifier reports whether the profile carries the given modifier label.
func (c *CustomerProfile) HasModifier(m string) bool {
	for _, mod := range c.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}
