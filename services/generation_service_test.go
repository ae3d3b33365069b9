package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/config"
	"marketpulse/generator"
	"marketpulse/models"
	"marketpulse/postcache"
	"marketpulse/repositories"
	"marketpulse/services"
)

// fakeStore is an in-memory PostStore keyed by slug.
type fakeStore struct {
	posts     map[string]models.Post
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{posts: map[string]models.Post{}}
}

func (f *fakeStore) Insert(ctx context.Context, p *models.Post) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.posts[p.Slug]; ok {
		return fmt.Errorf("%w: %s", models.ErrDuplicateIdentity, p.Slug)
	}
	f.posts[p.Slug] = *p
	return nil
}

func (f *fakeStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, ok := f.posts[slug]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, ok := f.posts[slug]
	return ok, nil
}

func (f *fakeStore) List(ctx context.Context, opts repositories.ListPostsOptions) ([]models.Post, error) {
	var out []models.Post
	for _, p := range f.posts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context, opts repositories.ListPostsOptions) (int64, error) {
	return int64(len(f.posts)), nil
}

func (f *fakeStore) UpdateBySlug(ctx context.Context, slug string, p *models.Post) error {
	if _, ok := f.posts[slug]; !ok {
		return models.ErrNotFound
	}
	if p.Slug != slug {
		if _, taken := f.posts[p.Slug]; taken {
			return fmt.Errorf("%w: %s", models.ErrDuplicateIdentity, p.Slug)
		}
		delete(f.posts, slug)
	}
	f.posts[p.Slug] = *p
	return nil
}

func (f *fakeStore) DeleteBySlug(ctx context.Context, slug string) error {
	if _, ok := f.posts[slug]; !ok {
		return models.ErrNotFound
	}
	delete(f.posts, slug)
	return nil
}

// fakeGenerator scripts per-topic outcomes.
type fakeGenerator struct {
	postByTopic map[string]*generator.GeneratedPost
	failTopics  map[string]error
	imageErr    error
	imageResult *generator.ImageResult

	newSummary string
	newContent string
	newTags    []string
}

func (f *fakeGenerator) GeneratePost(ctx context.Context, in generator.PostInput) (*generator.GeneratedPost, *generator.RequestLog, error) {
	if err, ok := f.failTopics[in.Topic]; ok {
		return nil, nil, err
	}
	if p, ok := f.postByTopic[in.Topic]; ok {
		cp := *p
		return &cp, &generator.RequestLog{Operation: "generate_post"}, nil
	}
	return &generator.GeneratedPost{
		Title:        "Article on " + in.Topic,
		Summary:      "Summary of " + in.Topic,
		Content:      "<p>" + in.Topic + "</p>",
		CategorySlug: "markets",
		Tags:         []string{"markets"},
	}, &generator.RequestLog{Operation: "generate_post"}, nil
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, in generator.ImageInput) (*generator.ImageResult, *generator.RequestLog, error) {
	if f.imageErr != nil {
		return nil, nil, f.imageErr
	}
	if f.imageResult != nil {
		return f.imageResult, nil, nil
	}
	return &generator.ImageResult{ImageURL: "https://img.example/gen.png", ImageAiHint: "markets"}, nil, nil
}

func (f *fakeGenerator) RegenerateContent(ctx context.Context, in generator.ContentInput) (string, *generator.RequestLog, error) {
	return f.newContent, nil, nil
}

func (f *fakeGenerator) RegenerateSummary(ctx context.Context, in generator.SummaryInput) (string, *generator.RequestLog, error) {
	return f.newSummary, nil, nil
}

func (f *fakeGenerator) RegenerateTags(ctx context.Context, in generator.TagsInput) ([]string, *generator.RequestLog, error) {
	return f.newTags, nil, nil
}

func (f *fakeGenerator) SynthesizeSpeech(ctx context.Context, text string) (string, *generator.RequestLog, error) {
	return "data:audio/wav;base64,UklGRg==", nil, nil
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		Categories: []config.Category{
			{Slug: "general", Name: "General"},
			{Slug: "markets", Name: "Markets"},
			{Slug: "banking", Name: "Banking"},
		},
		Cache: config.CacheConfig{TTLMinutes: 15},
	}
}

func newService(gen generator.ContentGenerator, store services.PostStore, cache *postcache.Cache) *services.GenerationService {
	return services.NewGenerationService(testConfig(), gen, store, cache, services.GenerationDeps{})
}

func TestGenerateSingleCompletes(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{}

	svc := newService(gen, store, cache)
	post, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "rate cuts"})
	assert.NoError(t, err)
	assert.Equal(t, "article-on-rate-cuts", post.Slug)
	assert.Equal(t, "markets", post.CategorySlug)
	assert.Equal(t, "Markets", post.CategoryName)
	assert.True(t, post.IsAiGenerated)
	assert.Equal(t, services.DefaultAuthor, post.Author)

	// persisted and immediately servable from the cache
	_, err = store.FindBySlug(context.Background(), post.Slug)
	assert.NoError(t, err)
	cached, ok := cache.Get(post.Slug)
	assert.True(t, ok)
	assert.Equal(t, post.Title, cached.Title)
}

func TestGenerateSingleCategoryFallback(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{
		postByTopic: map[string]*generator.GeneratedPost{
			"crypto": {
				Title:        "Bitcoin Wobbles",
				Summary:      "s",
				Content:      "<p>c</p>",
				CategorySlug: "nonexistent-slug",
				Tags:         []string{"bitcoin"},
			},
		},
	}

	svc := newService(gen, store, cache)
	post, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "crypto"})
	assert.NoError(t, err)
	// Unknown category silently falls back to the first configured one.
	assert.Equal(t, "general", post.CategorySlug)
	assert.Equal(t, "General", post.CategoryName)
}

func TestGenerateSingleImageFallback(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{imageErr: errors.New("upstream image error")}

	svc := newService(gen, store, cache)
	post, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "oil"})
	assert.NoError(t, err)
	assert.NotEmpty(t, post.ImageURL)
	assert.Contains(t, post.ImageURL, "placehold")
}

func TestGenerateSinglePropagatesGeneratorFailure(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{
		failTopics: map[string]error{"doomed": fmt.Errorf("%w: timeout", models.ErrGeneratorUnavailable)},
	}

	svc := newService(gen, store, cache)
	_, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "doomed"})
	assert.ErrorIs(t, err, models.ErrGeneratorUnavailable)
	assert.Empty(t, store.posts)
}

func TestGenerateSinglePropagatesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = fmt.Errorf("%w: connection reset", models.ErrStoreWrite)
	cache := postcache.New()
	defer cache.ClearAll()

	svc := newService(&fakeGenerator{}, store, cache)
	_, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "anything"})
	assert.ErrorIs(t, err, models.ErrStoreWrite)
	// Nothing must be cached when persistence failed.
	_, ok := cache.Get("article-on-anything")
	assert.False(t, ok)
}

func TestGenerateSingleSlugCollision(t *testing.T) {
	store := newFakeStore()
	store.posts["article-on-gold"] = models.Post{Slug: "article-on-gold"}
	cache := postcache.New()
	defer cache.ClearAll()

	svc := newService(&fakeGenerator{}, store, cache)
	post, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "gold"})
	assert.NoError(t, err)
	assert.Equal(t, "article-on-gold-1", post.Slug)
}

func TestGenerateBatchPartialFailure(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{
		failTopics: map[string]error{"second": fmt.Errorf("%w: boom", models.ErrGeneratorUnavailable)},
	}

	svc := newService(gen, store, cache)
	res, err := svc.GenerateBatch(context.Background(), 3, []string{"first", "second", "third"}, "")
	assert.NoError(t, err)
	assert.Equal(t, 3, res.Requested)
	assert.Equal(t, 2, res.Succeeded())
	// Attempt order is preserved for the successes.
	assert.Equal(t, "Article on first", res.Posts[0].Title)
	assert.Equal(t, "Article on third", res.Posts[1].Title)
}

func TestGenerateBatchSynthesizesMissingTopics(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()

	svc := newService(&fakeGenerator{}, store, cache)
	res, err := svc.GenerateBatch(context.Background(), 3, []string{"only-topic"}, "")
	assert.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded())
	assert.Equal(t, "Article on only-topic", res.Posts[0].Title)
	assert.Contains(t, res.Posts[1].Title, "variation 2")
	assert.Contains(t, res.Posts[2].Title, "variation 3")
}

func TestGenerateBatchAllFail(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{
		failTopics: map[string]error{
			"a": models.ErrGeneratorUnavailable,
			"b": models.ErrSchemaViolation,
		},
	}

	svc := newService(gen, store, cache)
	res, err := svc.GenerateBatch(context.Background(), 2, []string{"a", "b"}, "")
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Requested)
	assert.Equal(t, 0, res.Succeeded())
}

func TestRegenerateSummary(t *testing.T) {
	store := newFakeStore()
	store.posts["fed-watch"] = models.Post{Slug: "fed-watch", Title: "Fed Watch", Summary: "old", Content: "<p>c</p>"}
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{newSummary: "fresh take"}

	svc := newService(gen, store, cache)
	post, err := svc.RegenerateSummary(context.Background(), "fed-watch")
	assert.NoError(t, err)
	assert.Equal(t, "fresh take", post.Summary)
	assert.Equal(t, "fresh take", store.posts["fed-watch"].Summary)
}

func TestRegenerateOnMissingSlug(t *testing.T) {
	svc := newService(&fakeGenerator{}, newFakeStore(), postcache.New())
	_, err := svc.RegenerateTags(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// End-to-end example from the product brief: an unrecognized category slug
// falls back, the slug derives from the generated title, and the post is
// immediately readable through the cache.
func TestEndToEndQ3BankEarnings(t *testing.T) {
	store := newFakeStore()
	cache := postcache.New()
	defer cache.ClearAll()
	gen := &fakeGenerator{
		postByTopic: map[string]*generator.GeneratedPost{
			"Q3 bank earnings": {
				Title:        "Banks Beat Estimates in Q3",
				Summary:      "Major lenders topped profit forecasts.",
				Content:      "<p>Earnings season opened strong.</p>",
				CategorySlug: "nonexistent-slug",
				Tags:         []string{"banking", "earnings"},
			},
		},
	}

	svc := newService(gen, store, cache)
	post, err := svc.GenerateSingle(context.Background(), services.GenerateInput{Topic: "Q3 bank earnings"})
	assert.NoError(t, err)
	assert.Equal(t, "banks-beat-estimates-in-q3", post.Slug)
	assert.Equal(t, "general", post.CategorySlug)

	cached, ok := cache.Get("banks-beat-estimates-in-q3")
	assert.True(t, ok)
	assert.Equal(t, "Banks Beat Estimates in Q3", cached.Title)
}
