package inference

import (
	"context"
	"embed"
	"encoding/json"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/llm"
	"github.com/mgkim1976-spec/research-based-wm/internal/prompts"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// maxReportChars bounds how much report text is sent to the model.
const maxReportChars = 15000

// maxTranscriptChars bounds how much video transcript is sent to the model.
const maxTranscriptChars = 10000

// DefaultCallTimeout bounds a single model call.
const DefaultCallTimeout = 60 * time.Second

// Engine is the inference contract the pipeline consumes. Implementations
// must return a usable payload whenever the error is nil; the Gemini engine
// additionally degrades to placeholders instead of returning errors, so its
// callers always get well-formed data.
type Engine interface {
	ParseResearchReport(ctx context.Context, text string) (*ReportAnalysis, error)
	AnalyzeVideo(ctx context.Context, title, description, transcript string) (*VideoAnalysis, error)
	GeneratePBDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error)
}

// GeminiEngine implements Engine on the Gemini client.
type GeminiEngine struct {
	client  llm.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewGeminiEngine creates an engine backed by the given client.
func NewGeminiEngine(client llm.Client, logger *zap.Logger) *GeminiEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiEngine{
		client:  client,
		logger:  logger,
		timeout: DefaultCallTimeout,
	}
}

// ParseResearchReport extracts a structured thesis from report text. On any
// backend or parse failure it returns the static placeholder analysis.
func (e *GeminiEngine) ParseResearchReport(ctx context.Context, text string) (*ReportAnalysis, error) {
	prompt := prompts.Format(prompts.MustGet("inference.json", "parse-report"), map[string]string{
		"ReportText": truncate(text, maxReportChars),
	})

	var analysis ReportAnalysis
	if err := e.generateInto(ctx, prompt, llm.TierStandard, "report_analysis.json", &analysis); err != nil {
		e.logger.Warn("report classification failed, using placeholder", zap.Error(err))
		return PlaceholderReportAnalysis(), nil
	}
	return &analysis, nil
}

// AnalyzeVideo classifies a video's tone, topic, and education level. On any
// failure it returns the static placeholder classification.
func (e *GeminiEngine) AnalyzeVideo(ctx context.Context, title, description, transcript string) (*VideoAnalysis, error) {
	prompt := prompts.Format(prompts.MustGet("inference.json", "analyze-video"), map[string]string{
		"Title":       title,
		"Description": description,
		"Transcript":  truncate(transcript, maxTranscriptChars),
	})

	var analysis VideoAnalysis
	if err := e.generateInto(ctx, prompt, llm.TierLite, "video_analysis.json", &analysis); err != nil {
		e.logger.Warn("video classification failed, using placeholder",
			zap.String("title", title), zap.Error(err))
		return PlaceholderVideoAnalysis(), nil
	}
	return &analysis, nil
}

// GeneratePBDraft drafts PB talking points and a client message for one
// segment. On any failure it returns the static placeholder draft, keeping
// the customer queue intact.
func (e *GeminiEngine) GeneratePBDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	// Empty JSON objects tell the model the content is absent, which the
	// prompt's placeholder rules depend on.
	reportJSON, videoJSON := "{}", "{}"
	if req.Report != nil {
		reportJSON = marshalOrEmpty(req.Report)
	}
	if req.Video != nil {
		videoJSON = marshalOrEmpty(req.Video)
	}

	prompt := prompts.Format(prompts.MustGet("inference.json", "draft-message"), map[string]string{
		"RoutineType":  req.RoutineType.DisplayName(),
		"Segment":      string(req.Segment),
		"DeliveryMode": string(req.DeliveryMode),
		"ReportJSON":   reportJSON,
		"VideoJSON":    videoJSON,
	})

	var draft DraftResponse
	if err := e.generateInto(ctx, prompt, llm.TierAdvanced, "draft_response.json", &draft); err != nil {
		e.logger.Warn("draft generation failed, using placeholder",
			zap.String("segment", string(req.Segment)), zap.Error(err))
		return PlaceholderDraft(req.Video != nil), nil
	}
	return &draft, nil
}

// generateInto runs one model call with a bounded timeout and a single retry,
// then schema-checks and unmarshals the response.
func (e *GeminiEngine) generateInto(ctx context.Context, prompt string, tier llm.ModelTier, schema string, out any) error {
	var raw string
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		raw, lastErr = e.client.GenerateJSON(callCtx, prompt, tier)
		cancel()
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return &APICallError{Message: "model call failed after retry", Cause: lastErr}
	}

	if err := validatePayload(schema, []byte(raw)); err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	return nil
}

// validatePayload checks a raw response against an embedded JSON schema.
func validatePayload(schemaName string, doc []byte) error {
	schemaBytes, err := schemaFiles.ReadFile("schemas/" + schemaName)
	if err != nil {
		return &ParseError{Message: "schema not found: " + schemaName, Cause: err}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return &ParseError{Message: "schema validation failed", Cause: err}
	}

	if !result.Valid() {
		fields := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			fields = append(fields, desc.String())
		}
		return &SchemaError{Schema: schemaName, Fields: fields}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func marshalOrEmpty(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
