// Package generator defines the external content-generation capability
// consumed by the publication pipeline, and its Gemini implementation.
// Generator output is parsed and validated at this boundary; malformed
// payloads surface as models.ErrSchemaViolation instead of flowing
// downstream.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketpulse/models"
)

// GeneratedPost is the structured output of a post-generation call.
type GeneratedPost struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Content      string   `json:"content"`
	CategorySlug string   `json:"category_slug"`
	Tags         []string `json:"tags"`

	// Optional chart metadata, passed through to the post untouched.
	ChartType           string `json:"chart_type,omitempty"`
	ChartDataJSON       string `json:"chart_data_json,omitempty"`
	DetailedInformation string `json:"detailed_information,omitempty"`
}

// Validate checks the required structured fields. Tags are normalized
// (comma-split, trimmed, empty-filtered) before the at-least-one check.
func (p *GeneratedPost) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: missing title", models.ErrSchemaViolation)
	}
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("%w: missing summary", models.ErrSchemaViolation)
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("%w: missing content", models.ErrSchemaViolation)
	}
	if strings.TrimSpace(p.CategorySlug) == "" {
		return fmt.Errorf("%w: missing category_slug", models.ErrSchemaViolation)
	}
	p.Tags = NormalizeTags(p.Tags)
	if len(p.Tags) == 0 {
		return fmt.Errorf("%w: no usable tags", models.ErrSchemaViolation)
	}
	return nil
}

// NormalizeTags splits comma-joined entries, trims whitespace and drops
// empties and duplicates, preserving first-seen order.
func NormalizeTags(raw []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// ImageResult is the output of an image generation/regeneration call.
type ImageResult struct {
	ImageURL    string `json:"image_url"`
	ImageAiHint string `json:"image_ai_hint"`
}

// TokenUsage mirrors the usage metadata reported by the model API.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// RequestLog captures one LLM call for the ai_logs collection.
type RequestLog struct {
	Operation    string     `json:"operation"`
	Response     string     `json:"response"`
	LatencyMs    int64      `json:"latency_ms"`
	TokenUsage   TokenUsage `json:"token_usage"`
	ModelName    string     `json:"model_name"`
	ModelVersion string     `json:"model_version"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

// PostInput feeds a post-generation call. SourceText, when set, is extracted
// article text the model should base the post on.
type PostInput struct {
	Topic        string
	CategoryHint string
	SourceText   string
}

// ImageInput feeds an image generation/regeneration call.
type ImageInput struct {
	Title        string
	Summary      string
	CurrentTags  []string
	CategoryName string
}

// ContentInput feeds a content regeneration call.
type ContentInput struct {
	Title           string
	Summary         string
	ExistingContent string
}

// SummaryInput feeds a summary regeneration call.
type SummaryInput struct {
	Title           string
	CurrentContent  string
	ExistingSummary string
}

// TagsInput feeds a tag regeneration call.
type TagsInput struct {
	Title          string
	Summary        string
	CurrentContent string
}

// ContentGenerator is the generative capability the pipeline depends on.
// Implementations must honor ctx and return models taxonomy errors.
type ContentGenerator interface {
	GeneratePost(ctx context.Context, in PostInput) (*GeneratedPost, *RequestLog, error)
	GenerateImage(ctx context.Context, in ImageInput) (*ImageResult, *RequestLog, error)
	RegenerateContent(ctx context.Context, in ContentInput) (string, *RequestLog, error)
	RegenerateSummary(ctx context.Context, in SummaryInput) (string, *RequestLog, error)
	RegenerateTags(ctx context.Context, in TagsInput) ([]string, *RequestLog, error)
	SynthesizeSpeech(ctx context.Context, text string) (string, *RequestLog, error)
}
