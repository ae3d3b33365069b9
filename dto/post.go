package dto

import (
	"time"

	"marketpulse/models"
)

// PostDTO exposes post fields to API consumers. Timestamps serialize as
// ISO-8601 via time.Time's JSON encoding.
type PostDTO struct {
	ID                  string    `json:"id"`
	Slug                string    `json:"slug"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary"`
	Content             string    `json:"content"`
	Tags                []string  `json:"tags"`
	CategorySlug        string    `json:"category_slug"`
	CategoryName        string    `json:"category_name"`
	Author              string    `json:"author"`
	IsAiGenerated       bool      `json:"is_ai_generated"`
	ImageURL            string    `json:"image_url,omitempty"`
	ImageAiHint         string    `json:"image_ai_hint,omitempty"`
	ChartType           string    `json:"chart_type,omitempty"`
	ChartDataJSON       string    `json:"chart_data_json,omitempty"`
	DetailedInformation string    `json:"detailed_information,omitempty"`
	PublishedAt         time.Time `json:"published_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewPostDTO constructs PostDTO from models.Post
func NewPostDTO(p models.Post) PostDTO {
	return PostDTO{
		ID:            p.ID.Hex(),
		Slug:          p.Slug,
		Title:         p.Title,
		Summary:       p.Summary,
		Content:       p.Content,
		Tags:          p.Tags,
		CategorySlug:  p.CategorySlug,
		CategoryName:  p.CategoryName,
		Author:        p.Author,
		IsAiGenerated: p.IsAiGenerated,
		ImageURL:      p.ImageURL,
		ImageAiHint:   p.ImageAiHint,
		ChartType:     p.ChartType,
		ChartDataJSON: p.ChartDataJSON,
		DetailedInformation: p.DetailedInformation,
		PublishedAt:   p.PublishedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CategoryDTO is one entry of the fixed category list.
type CategoryDTO struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// PostListDTO wraps a page of posts with the total match count.
type PostListDTO struct {
	Items    []PostDTO `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
