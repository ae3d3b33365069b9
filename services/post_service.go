package services

import (
	"context"
	"fmt"

	"marketpulse/config"
	"marketpulse/dto"
	"marketpulse/eventbus"
	"marketpulse/events"
	"marketpulse/generator"
	"marketpulse/logger"
	"marketpulse/models"
	"marketpulse/postcache"
	"marketpulse/repositories"
	"marketpulse/slugger"
)

// ImageCleaner removes an externally hosted image asset. Best-effort on
// delete paths.
type ImageCleaner func(ctx context.Context, imageURL string) error

// PostService covers the manual content-management operations: create, read,
// update (with slug reassignment on title change) and delete.
type PostService struct {
	store    PostStore
	cache    *postcache.Cache
	assigner *slugger.Assigner
	bus      eventbus.EventBus
	cleaner  ImageCleaner
	cfg      config.AppConfig
}

func NewPostService(cfg config.AppConfig, store PostStore, cache *postcache.Cache, bus eventbus.EventBus, cleaner ImageCleaner) *PostService {
	return &PostService{
		store:    store,
		cache:    cache,
		assigner: slugger.NewAssigner(slugger.StrategyCounter),
		bus:      bus,
		cleaner:  cleaner,
		cfg:      cfg,
	}
}

// Create persists a manually authored post.
func (s *PostService) Create(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error) {
	tags := generator.NormalizeTags(req.Tags)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: at least one non-empty tag is required", models.ErrSchemaViolation)
	}

	cat := resolveCategory(s.cfg, req.CategorySlug)

	slug, err := s.assigner.AssignFromTitle(ctx, req.Title, s.store.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("%w: slug pre-check: %v", models.ErrStoreWrite, err)
	}

	author := req.Author
	if author == "" {
		author = "MarketPulse Editorial"
	}

	post := &models.Post{
		Slug:         slug,
		Title:        req.Title,
		Summary:      req.Summary,
		Content:      req.Content,
		Tags:         tags,
		CategorySlug: cat.Slug,
		CategoryName: cat.Name,
		Author:       author,
		ImageURL:     req.ImageURL,
	}

	if err := s.store.Insert(ctx, post); err != nil {
		return nil, err
	}

	publishPostEvent(ctx, s.bus, events.PostCreated, "api", post)
	return post, nil
}

// GetBySlug serves the ephemeral cache first so freshly generated posts are
// readable before the durable read path catches up.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if cached, ok := s.cache.Get(slug); ok {
		return &cached, nil
	}
	return s.store.FindBySlug(ctx, slug)
}

// ListInput filters and paginates the public listing.
type ListInput struct {
	Page         int
	PageSize     int
	CategorySlug string
	Tag          string
}

// List returns a page of posts, newest first, with the total match count.
func (s *PostService) List(ctx context.Context, in ListInput) (dto.PostListDTO, error) {
	opts := repositories.ListPostsOptions{
		Page:         in.Page,
		PageSize:     in.PageSize,
		CategorySlug: in.CategorySlug,
		Tag:          in.Tag,
	}

	items, err := s.store.List(ctx, opts)
	if err != nil {
		return dto.PostListDTO{}, err
	}
	total, err := s.store.Count(ctx, opts)
	if err != nil {
		return dto.PostListDTO{}, err
	}

	out := dto.PostListDTO{
		Items:    make([]dto.PostDTO, 0, len(items)),
		Total:    total,
		Page:     in.Page,
		PageSize: in.PageSize,
	}
	for _, p := range items {
		out.Items = append(out.Items, dto.NewPostDTO(p))
	}
	return out, nil
}

// Categories exposes the fixed category list.
func (s *PostService) Categories() []dto.CategoryDTO {
	cats := s.cfg.Categories
	out := make([]dto.CategoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.CategoryDTO{Slug: c.Slug, Name: c.Name})
	}
	return out
}

// Update edits the post identified by slug. A changed title reassigns the
// slug (re-running the uniqueness probe); other nil fields stay untouched.
func (s *PostService) Update(ctx context.Context, slug string, req dto.UpdatePostRequest) (*models.Post, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != post.Title {
		post.Title = *req.Title
		newBase := slugger.DeriveBaseSlug(*req.Title)
		if newBase != post.Slug {
			newSlug, err := s.assigner.AssignFromTitle(ctx, *req.Title, s.store.SlugExists)
			if err != nil {
				return nil, fmt.Errorf("%w: slug pre-check: %v", models.ErrStoreWrite, err)
			}
			post.Slug = newSlug
		}
	}
	if req.Summary != nil {
		post.Summary = *req.Summary
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Tags != nil {
		tags := generator.NormalizeTags(*req.Tags)
		if len(tags) == 0 {
			return nil, fmt.Errorf("%w: at least one non-empty tag is required", models.ErrSchemaViolation)
		}
		post.Tags = tags
	}
	if req.CategorySlug != nil {
		cat := resolveCategory(s.cfg, *req.CategorySlug)
		post.CategorySlug = cat.Slug
		post.CategoryName = cat.Name
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}

	if err := s.store.UpdateBySlug(ctx, slug, post); err != nil {
		return nil, err
	}

	// Move any live ephemeral entry along with the rename.
	if _, ok := s.cache.Get(slug); ok {
		s.cache.Clear(slug)
		s.cache.Set(post.Slug, *post, cacheTTL(s.cfg))
	}

	publishPostEvent(ctx, s.bus, events.PostUpdated, "api", post)
	return post, nil
}

// Delete removes the post, evicts its cache entry and best-effort cleans up
// the hosted image asset.
func (s *PostService) Delete(ctx context.Context, slug string) error {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	s.cache.Clear(slug)

	if s.cleaner != nil && post.ImageURL != "" {
		if err := s.cleaner(ctx, post.ImageURL); err != nil {
			logger.Log.Warnf("image cleanup failed for %s: %v", slug, err)
		}
	}

	publishPostEvent(ctx, s.bus, events.PostDeleted, "api", post)
	return nil
}
