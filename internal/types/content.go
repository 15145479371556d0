// Package types defines the shared data model for the content curation pipeline.
package types

import "time"

// ResearchReport is a scraped research report from the securities board.
// Identity fields are set by the crawler; tag fields are filled in after
// classification and are the only part of the record that mutates.
type ResearchReport struct {
	ReportID       string    `json:"report_id"`
	Title          string    `json:"title"`
	Date           time.Time `json:"date"`
	Author         string    `json:"author"`
	ReportType     string    `json:"report_type"`
	SourceURL      string    `json:"source_url"`
	AttachmentURLs []string  `json:"attachment_urls,omitempty"`
	NormalizedText string    `json:"normalized_text,omitempty"`

	Tags           []string `json:"tags,omitempty"`
	AssetClassTags []string `json:"asset_class_tags,omitempty"`
	RegionTags     []string `json:"region_tags,omitempty"`
	SectorTags     []string `json:"sector_tags,omitempty"`
	CompanyTags    []string `json:"company_tags,omitempty"`
	TimeHorizon    string   `json:"time_horizon,omitempty"`
	RiskConditions string   `json:"risk_conditions,omitempty"`
}

// SmartMoneyVideo is a video pulled from the SmartMoney channel feed.
// Videos are ephemeral per run; only reports persist across runs.
type SmartMoneyVideo struct {
	VideoID             string    `json:"video_id"`
	Title               string    `json:"title"`
	PublishDate         time.Time `json:"publish_date"`
	SourceURL           string    `json:"source_url"`
	SeriesName          string    `json:"series_name,omitempty"`
	Duration            string    `json:"duration,omitempty"`
	Description         string    `json:"description,omitempty"`
	TranscriptOrSummary string    `json:"transcript_or_summary,omitempty"`

	Tags           []string `json:"tags,omitempty"`
	AssetClassTags []string `json:"asset_class_tags,omitempty"`
	RegionTags     []string `json:"region_tags,omitempty"`
	SectorTags     []string `json:"sector_tags,omitempty"`
	CompanyTags    []string `json:"company_tags,omitempty"`

	// EducationLevel is one of "beginner", "intermediate", "advanced".
	EducationLevel string `json:"education_level,omitempty"`
	// ContentStyle is one of "urgent market", "analytical", "thematic",
	// "educational", "narrative".
	ContentStyle       string `json:"content_style,omitempty"`
	RecommendedRoutine string `json:"recommended_routine,omitempty"`
}

// WatchURL returns the canonical watch URL for the video.
func (v *SmartMoneyVideo) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}
