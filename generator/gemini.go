package generator

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"marketpulse/config"
	"marketpulse/models"
)

const postSystemInstruction = `
You are a financial news editor for a markets-focused blog. Given a topic, write a complete article.
The response MUST be a valid JSON object with the following keys:

1. title: A sharp, factual headline, no more than 90 characters.
2. summary: A concise standfirst for the article, no more than 250 characters.
3. content: The full article body as clean HTML (<p>, <h2>, <ul> only), 400-800 words, neutral tone.
4. category_slug: Exactly one slug chosen from the provided category list.
5. tags: A list of 2-5 concrete keywords (tickers, institutions, instruments, events).
   - Tags MUST be short reusable terms (e.g., "Fed", "NASDAQ", "crude oil").
   - Do NOT include generic phrases. Remove duplicates.
6. chart_type: Optional. One of "line", "bar", "pie" when the article benefits from a chart, otherwise omit.
7. chart_data_json: Optional. A JSON string with the chart series when chart_type is set.
8. detailed_information: Optional. One paragraph of extra numeric context backing the chart.

Additional constraints:
- Include company names, numbers, and percentages where relevant.
- You MUST NOT wrap the JSON output in a markdown code block (e.g., ` + "```json ... ```" + `).
- The response should contain ONLY the raw JSON string.
`

const contentSystemInstruction = `
You are a financial news editor. Rewrite the body of the given article from scratch.
Keep the angle implied by the title and summary, improve structure and flow.
Respond with a valid JSON object with a single key:
1. new_content: The full article body as clean HTML (<p>, <h2>, <ul> only), 400-800 words.
You MUST NOT wrap the JSON output in a markdown code block. The response should contain ONLY the raw JSON string.
`

const summarySystemInstruction = `
You are a financial news editor. Write a fresh standfirst for the given article.
Respond with a valid JSON object with a single key:
1. new_summary: A concise standfirst, no more than 250 characters, neutral tone.
You MUST NOT wrap the JSON output in a markdown code block. The response should contain ONLY the raw JSON string.
`

const tagsSystemInstruction = `
You are a financial news editor. Extract tags for the given article.
Respond with a valid JSON object with a single key:
1. new_tags: A list of 2-5 concrete keywords (tickers, institutions, instruments, events)
   explicitly relevant to the article. Short reusable terms only, no duplicates.
You MUST NOT wrap the JSON output in a markdown code block. The response should contain ONLY the raw JSON string.
`

// Gemini implements ContentGenerator on google.golang.org/genai.
type Gemini struct {
	client     *genai.Client
	model      string
	imageModel string
	ttsModel   string
	timeout    time.Duration
	categories []config.Category
}

// NewGemini builds the client from config. Every call is bounded by the
// configured timeout.
func NewGemini(ctx context.Context, cfg config.AppConfig) (*Gemini, error) {
	if cfg.GeminiApiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiApiKey,
	})
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Generator.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &Gemini{
		client:     client,
		model:      cfg.Generator.Model,
		imageModel: cfg.Generator.ImageModel,
		ttsModel:   cfg.Generator.TTSModel,
		timeout:    timeout,
		categories: cfg.Categories,
	}, nil
}

func (g *Gemini) categoryList() string {
	if len(g.categories) == 0 {
		return `["general"]`
	}
	slugs := make([]string, 0, len(g.categories))
	for _, c := range g.categories {
		slugs = append(slugs, fmt.Sprintf("%q", c.Slug))
	}
	return "[" + strings.Join(slugs, ", ") + "]"
}

// generate runs one text call and returns the raw response plus a request log.
func (g *Gemini) generate(ctx context.Context, operation, systemInstruction, prompt string) (string, *RequestLog, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	startTime := time.Now()
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		},
	)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", models.ErrGeneratorUnavailable, err)
	}

	log := &RequestLog{
		Operation:   operation,
		Response:    result.Text(),
		LatencyMs:   time.Since(startTime).Milliseconds(),
		ModelName:   g.model,
		GeneratedAt: time.Now(),
	}
	if result.UsageMetadata != nil {
		log.TokenUsage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}
	log.ModelVersion = result.ModelVersion

	return result.Text(), log, nil
}

func (g *Gemini) GeneratePost(ctx context.Context, in PostInput) (*GeneratedPost, *RequestLog, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Category list: %s\n", g.categoryList())
	fmt.Fprintf(&sb, "Topic: %s\n", in.Topic)
	if in.CategoryHint != "" {
		fmt.Fprintf(&sb, "Preferred category: %s\n", in.CategoryHint)
	}
	if in.SourceText != "" {
		fmt.Fprintf(&sb, "\nSource material to base the article on:\n%s\n", in.SourceText)
	}

	raw, log, err := g.generate(ctx, "generate_post", postSystemInstruction, sb.String())
	if err != nil {
		return nil, log, err
	}

	var post GeneratedPost
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return nil, log, fmt.Errorf("%w: invalid JSON: %v", models.ErrSchemaViolation, err)
	}
	if err := post.Validate(); err != nil {
		return nil, log, err
	}
	return &post, log, nil
}

func (g *Gemini) GenerateImage(ctx context.Context, in ImageInput) (*ImageResult, *RequestLog, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	summary := in.Summary
	if len([]rune(summary)) > 160 {
		summary = string([]rune(summary)[:160])
	}
	hint := imageHint(in)
	prompt := fmt.Sprintf(
		"Editorial illustration for a financial news article. Category: %s. Headline: %s. Standfirst: %s. Clean, professional, no text in the image.",
		in.CategoryName, in.Title, summary,
	)

	startTime := time.Now()
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.imageModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrGeneratorUnavailable, err)
	}

	log := &RequestLog{
		Operation:   "generate_image",
		LatencyMs:   time.Since(startTime).Milliseconds(),
		ModelName:   g.imageModel,
		GeneratedAt: time.Now(),
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				url := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(part.InlineData.Data))
				return &ImageResult{ImageURL: url, ImageAiHint: hint}, log, nil
			}
		}
	}
	return nil, log, fmt.Errorf("%w: no media returned", models.ErrGeneratorUnavailable)
}

// imageHint is the short alt-text style hint stored alongside the image.
func imageHint(in ImageInput) string {
	words := strings.Fields(strings.ToLower(in.CategoryName + " " + in.Title))
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

func (g *Gemini) RegenerateContent(ctx context.Context, in ContentInput) (string, *RequestLog, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSummary: %s\n", in.Title, in.Summary)
	if in.ExistingContent != "" {
		fmt.Fprintf(&sb, "\nExisting body (to replace):\n%s\n", in.ExistingContent)
	}

	raw, log, err := g.generate(ctx, "regenerate_content", contentSystemInstruction, sb.String())
	if err != nil {
		return "", log, err
	}

	var out struct {
		NewContent string `json:"new_content"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", log, fmt.Errorf("%w: invalid JSON: %v", models.ErrSchemaViolation, err)
	}
	if strings.TrimSpace(out.NewContent) == "" {
		return "", log, fmt.Errorf("%w: missing new_content", models.ErrSchemaViolation)
	}
	return out.NewContent, log, nil
}

func (g *Gemini) RegenerateSummary(ctx context.Context, in SummaryInput) (string, *RequestLog, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n\nArticle body:\n%s\n", in.Title, in.CurrentContent)
	if in.ExistingSummary != "" {
		fmt.Fprintf(&sb, "\nCurrent summary (write a different one): %s\n", in.ExistingSummary)
	}

	raw, log, err := g.generate(ctx, "regenerate_summary", summarySystemInstruction, sb.String())
	if err != nil {
		return "", log, err
	}

	var out struct {
		NewSummary string `json:"new_summary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", log, fmt.Errorf("%w: invalid JSON: %v", models.ErrSchemaViolation, err)
	}
	if strings.TrimSpace(out.NewSummary) == "" {
		return "", log, fmt.Errorf("%w: missing new_summary", models.ErrSchemaViolation)
	}
	return out.NewSummary, log, nil
}

func (g *Gemini) RegenerateTags(ctx context.Context, in TagsInput) ([]string, *RequestLog, error) {
	prompt := fmt.Sprintf("Title: %s\nSummary: %s\n\nArticle body:\n%s\n", in.Title, in.Summary, in.CurrentContent)

	raw, log, err := g.generate(ctx, "regenerate_tags", tagsSystemInstruction, prompt)
	if err != nil {
		return nil, log, err
	}

	var out struct {
		NewTags []string `json:"new_tags"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, log, fmt.Errorf("%w: invalid JSON: %v", models.ErrSchemaViolation, err)
	}
	tags := NormalizeTags(out.NewTags)
	if len(tags) < 2 || len(tags) > 5 {
		return nil, log, fmt.Errorf("%w: want 2-5 tags, got %d", models.ErrSchemaViolation, len(tags))
	}
	return tags, log, nil
}

// SynthesizeSpeech turns text (1..5000 chars) into a base64 WAV data URI.
func (g *Gemini) SynthesizeSpeech(ctx context.Context, text string) (string, *RequestLog, error) {
	if n := len([]rune(text)); n < 1 || n > 5000 {
		return "", nil, fmt.Errorf("%w: text length %d out of range 1..5000", models.ErrSchemaViolation, n)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	startTime := time.Now()
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.ttsModel,
		genai.Text(text),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", models.ErrGeneratorUnavailable, err)
	}

	log := &RequestLog{
		Operation:   "synthesize_speech",
		LatencyMs:   time.Since(startTime).Milliseconds(),
		ModelName:   g.ttsModel,
		GeneratedAt: time.Now(),
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				// The API returns raw PCM; wrap it in a WAV container.
				wav := pcmToWAV(part.InlineData.Data, 24000, 1)
				return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav), log, nil
			}
		}
	}
	return "", log, fmt.Errorf("%w: no audio returned", models.ErrGeneratorUnavailable)
}

// pcmToWAV wraps 16-bit little-endian PCM samples in a minimal WAV header.
func pcmToWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, 16) // bits per sample
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}
