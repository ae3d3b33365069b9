package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a published article document.
// Collection: posts
//
// slug carries a unique index (see db.ensureIndexes); it is the canonical
// identity of a post and only changes through an explicit title rename.
type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	Slug        string             `bson:"slug" json:"slug"`
	Title       string             `bson:"title" json:"title"`
	Summary     string             `bson:"summary" json:"summary"`
	Content     string             `bson:"content" json:"content"`
	Tags        []string           `bson:"tags" json:"tags"`
	PublishedAt time.Time          `bson:"published_at" json:"published_at"`

	// Classification. CategoryName is a denormalized display copy resolved
	// from CategorySlug at write time.
	CategorySlug string `bson:"category_slug" json:"category_slug"`
	CategoryName string `bson:"category_name" json:"category_name"`

	// Provenance
	Author        string `bson:"author" json:"author"`
	IsAiGenerated bool   `bson:"is_ai_generated" json:"is_ai_generated"`
	ImageURL      string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImageAiHint   string `bson:"image_ai_hint,omitempty" json:"image_ai_hint,omitempty"`

	// Opaque chart metadata, passed through untouched.
	ChartType           string `bson:"chart_type,omitempty" json:"chart_type,omitempty"`
	ChartDataJSON       string `bson:"chart_data_json,omitempty" json:"chart_data_json,omitempty"`
	DetailedInformation string `bson:"detailed_information,omitempty" json:"detailed_information,omitempty"`
}
