package services

import (
	"context"
	"fmt"
	"time"

	"marketpulse/config"
	"marketpulse/eventbus"
	"marketpulse/events"
	"marketpulse/extractor"
	"marketpulse/generator"
	"marketpulse/logger"
	"marketpulse/models"
	"marketpulse/postcache"
	"marketpulse/quota"
	"marketpulse/slugger"
)

// DefaultAuthor is attributed to AI-generated posts.
const DefaultAuthor = "MarketPulse AI"

// GenerationService runs the AI content pipeline: generate text, resolve the
// category, attach an image (placeholder on failure), assign a unique slug,
// persist, cache, publish.
type GenerationService struct {
	gen      generator.ContentGenerator
	store    PostStore
	cache    *postcache.Cache
	assigner *slugger.Assigner
	limiter  *quota.GenerationLimiter
	bus      eventbus.EventBus
	aiLogs   AILogSink
	cfg      config.AppConfig

	// fetchArticle is swapped out in tests.
	fetchArticle func(ctx context.Context, url string) (string, error)
}

// GenerationDeps carries the optional collaborators. Nil limiter disables
// quota enforcement; nil bus disables event publishing; nil aiLogs disables
// usage logging.
type GenerationDeps struct {
	Limiter *quota.GenerationLimiter
	Bus     eventbus.EventBus
	AILogs  AILogSink
}

func NewGenerationService(cfg config.AppConfig, gen generator.ContentGenerator, store PostStore, cache *postcache.Cache, deps GenerationDeps) *GenerationService {
	return &GenerationService{
		gen:          gen,
		store:        store,
		cache:        cache,
		assigner:     slugger.NewAssigner(slugger.StrategyCounter),
		limiter:      deps.Limiter,
		bus:          deps.Bus,
		aiLogs:       deps.AILogs,
		cfg:          cfg,
		fetchArticle: extractor.FetchArticleText,
	}
}

// GenerateInput describes one generation attempt. SourceURL, when set, is an
// article the draft should be based on.
type GenerateInput struct {
	Topic        string
	SourceURL    string
	CategoryHint string
}

// GenerateSingle runs the full pipeline for one topic. It fails only on text
// generation, schema validation, slug pre-check or store write errors; image
// generation failure degrades to the placeholder silently.
func (s *GenerationService) GenerateSingle(ctx context.Context, in GenerateInput) (*models.Post, error) {
	if s.limiter != nil {
		ok, err := s.limiter.WaitAndReserve(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: daily generation quota exhausted", models.ErrGeneratorUnavailable)
		}
	}

	var sourceText string
	if in.SourceURL != "" {
		text, err := s.fetchArticle(ctx, in.SourceURL)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching source article: %v", models.ErrGeneratorUnavailable, err)
		}
		sourceText = text
	}

	start := time.Now()
	out, rl, err := s.gen.GeneratePost(ctx, generator.PostInput{
		Topic:        in.Topic,
		CategoryHint: in.CategoryHint,
		SourceText:   sourceText,
	})
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	if err != nil {
		return nil, err
	}

	cat := resolveCategory(s.cfg, out.CategorySlug)

	imageURL, imageHint := s.resolveImage(ctx, out, cat)

	slug, err := s.assigner.AssignFromTitle(ctx, out.Title, s.store.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("%w: slug pre-check: %v", models.ErrStoreWrite, err)
	}

	now := time.Now()
	post := &models.Post{
		Slug:                slug,
		Title:               out.Title,
		Summary:             out.Summary,
		Content:             out.Content,
		Tags:                out.Tags,
		CategorySlug:        cat.Slug,
		CategoryName:        cat.Name,
		Author:              DefaultAuthor,
		IsAiGenerated:       true,
		ImageURL:            imageURL,
		ImageAiHint:         imageHint,
		ChartType:           out.ChartType,
		ChartDataJSON:       out.ChartDataJSON,
		DetailedInformation: out.DetailedInformation,
		PublishedAt:         now,
	}

	if err := s.store.Insert(ctx, post); err != nil {
		return nil, err
	}

	s.cache.Set(post.Slug, *post, cacheTTL(s.cfg))
	publishPostEvent(ctx, s.bus, events.PostGenerated, "api", post)

	return post, nil
}

// resolveImage asks the generator for an illustration and falls back to the
// configured placeholder on any failure. Image errors never fail the post.
func (s *GenerationService) resolveImage(ctx context.Context, out *generator.GeneratedPost, cat config.Category) (string, string) {
	start := time.Now()
	img, rl, err := s.gen.GenerateImage(ctx, generator.ImageInput{
		Title:        out.Title,
		Summary:      out.Summary,
		CurrentTags:  out.Tags,
		CategoryName: cat.Name,
	})
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	if err != nil || img == nil || img.ImageURL == "" {
		logger.Log.Warnf("image generation failed for %q, using placeholder: %v", out.Title, err)
		return s.placeholderImage(), truncate(out.Title, 40)
	}
	return img.ImageURL, img.ImageAiHint
}

func (s *GenerationService) placeholderImage() string {
	if s.cfg.Generator.PlaceholderImageURL != "" {
		return s.cfg.Generator.PlaceholderImageURL
	}
	return "https://placehold.co/1200x630.png"
}

// BatchResult reports the lossy batch outcome: how many attempts were
// requested versus how many posts were actually created, in attempt order.
type BatchResult struct {
	Requested int
	Posts     []models.Post
}

func (r BatchResult) Succeeded() int { return len(r.Posts) }

// GenerateBatch runs count independent generation attempts sequentially.
// Supplied topics fill the first slots; generic fallback topics fill the
// rest so exactly count attempts are always made. Per-item failures are
// logged and skipped, never aborting the batch; only context cancellation
// stops it early.
func (s *GenerationService) GenerateBatch(ctx context.Context, count int, topics []string, categoryHint string) (BatchResult, error) {
	if count < 1 {
		return BatchResult{}, fmt.Errorf("count must be at least 1, got %d", count)
	}

	result := BatchResult{Requested: count}
	for i := 0; i < count; i++ {
		topic := ""
		if i < len(topics) {
			topic = topics[i]
		}
		if topic == "" {
			topic = fmt.Sprintf("a diverse financial topic, variation %d", i+1)
		}

		post, err := s.GenerateSingle(ctx, GenerateInput{Topic: topic, CategoryHint: categoryHint})
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Log.Warnf("batch item %d/%d failed (topic=%q): %v", i+1, count, topic, err)
			continue
		}
		result.Posts = append(result.Posts, *post)
	}

	logger.Log.Infof("batch generation finished: %d/%d succeeded", result.Succeeded(), count)
	return result, nil
}

// RegenerateSummary replaces the summary of an existing post.
func (s *GenerationService) RegenerateSummary(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	newSummary, rl, err := s.gen.RegenerateSummary(ctx, generator.SummaryInput{
		Title:           post.Title,
		CurrentContent:  post.Content,
		ExistingSummary: post.Summary,
	})
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	if err != nil {
		return nil, err
	}

	post.Summary = newSummary
	return s.saveRegenerated(ctx, post)
}

// RegenerateTags replaces the tags of an existing post.
func (s *GenerationService) RegenerateTags(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	newTags, rl, err := s.gen.RegenerateTags(ctx, generator.TagsInput{
		Title:          post.Title,
		Summary:        post.Summary,
		CurrentContent: post.Content,
	})
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	if err != nil {
		return nil, err
	}

	post.Tags = newTags
	return s.saveRegenerated(ctx, post)
}

// RegenerateContent rewrites the body of an existing post.
func (s *GenerationService) RegenerateContent(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	newContent, rl, err := s.gen.RegenerateContent(ctx, generator.ContentInput{
		Title:           post.Title,
		Summary:         post.Summary,
		ExistingContent: post.Content,
	})
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	if err != nil {
		return nil, err
	}

	post.Content = newContent
	return s.saveRegenerated(ctx, post)
}

// RegenerateImage replaces the illustration of an existing post. Unlike the
// creation path this propagates image failures: the editor asked for a new
// image specifically, so a silent placeholder would be misleading.
func (s *GenerationService) RegenerateImage(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	img, rl, err := s.gen.GenerateImage(ctx, generator.ImageInput{
		Title:        post.Title,
		Summary:      post.Summary,
		CurrentTags:  post.Tags,
		CategoryName: post.CategoryName,
	})
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	if err != nil {
		return nil, err
	}

	post.ImageURL = img.ImageURL
	post.ImageAiHint = img.ImageAiHint
	return s.saveRegenerated(ctx, post)
}

func (s *GenerationService) saveRegenerated(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := s.store.UpdateBySlug(ctx, post.Slug, post); err != nil {
		return nil, err
	}
	// Refresh the ephemeral copy only when one is live; regeneration must
	// not resurrect an expired entry.
	if _, ok := s.cache.Get(post.Slug); ok {
		s.cache.Set(post.Slug, *post, cacheTTL(s.cfg))
	}
	publishPostEvent(ctx, s.bus, events.PostUpdated, "api", post)
	return post, nil
}

// SynthesizeSpeech narrates the given text (1..5000 chars) as a WAV data URI.
func (s *GenerationService) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	start := time.Now()
	audio, rl, err := s.gen.SynthesizeSpeech(ctx, text)
	recordRequestLog(ctx, s.aiLogs, rl, start, err)
	return audio, err
}
