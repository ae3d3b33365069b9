package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketpulse/models"
)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// Insert persists a new post. A violation of the unique slug index is mapped
// to models.ErrDuplicateIdentity so the pipeline can distinguish a lost
// check-then-act race from any other write failure.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	p.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateIdentity, p.Slug)
		}
		return fmt.Errorf("%w: %v", models.ErrStoreWrite, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// FindBySlug returns the post with the given slug.
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SlugExists reports whether a post with the given slug is already stored.
func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPostsOptions filters and paginates the post listing.
type ListPostsOptions struct {
	Page         int
	PageSize     int
	CategorySlug string
	Tag          string
}

func (o ListPostsOptions) filter() bson.M {
	filter := bson.M{}
	if o.CategorySlug != "" {
		filter["category_slug"] = o.CategorySlug
	}
	if o.Tag != "" {
		filter["tags"] = o.Tag
	}
	return filter
}

// List returns posts sorted by published_at descending.
func (r *PostRepository) List(ctx context.Context, opts ListPostsOptions) ([]models.Post, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, opts.filter(), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Post
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of posts matching the filter.
func (r *PostRepository) Count(ctx context.Context, opts ListPostsOptions) (int64, error) {
	return r.col.CountDocuments(ctx, opts.filter())
}

// UpdateBySlug replaces the mutable fields of the post identified by slug.
// The replacement document may itself carry a new slug (title rename); the
// unique index guards against collisions the same way Insert does.
func (r *PostRepository) UpdateBySlug(ctx context.Context, slug string, p *models.Post) error {
	p.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"updated_at":           p.UpdatedAt,
			"slug":                 p.Slug,
			"title":                p.Title,
			"summary":              p.Summary,
			"content":              p.Content,
			"tags":                 p.Tags,
			"category_slug":        p.CategorySlug,
			"category_name":        p.CategoryName,
			"author":               p.Author,
			"is_ai_generated":      p.IsAiGenerated,
			"image_url":            p.ImageURL,
			"image_ai_hint":        p.ImageAiHint,
			"chart_type":           p.ChartType,
			"chart_data_json":      p.ChartDataJSON,
			"detailed_information": p.DetailedInformation,
		},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"slug": slug}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateIdentity, p.Slug)
		}
		return fmt.Errorf("%w: %v", models.ErrStoreWrite, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteBySlug removes the post identified by slug.
func (r *PostRepository) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreWrite, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
