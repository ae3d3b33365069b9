package dto

// LoginRequest authenticates the content editor.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreatePostRequest is the manual (non-AI) creation form.
type CreatePostRequest struct {
	Title        string   `json:"title" binding:"required"`
	Summary      string   `json:"summary" binding:"required"`
	Content      string   `json:"content" binding:"required"`
	Tags         []string `json:"tags" binding:"required"`
	CategorySlug string   `json:"category_slug" binding:"required"`
	Author       string   `json:"author"`
	ImageURL     string   `json:"image_url"`
}

// UpdatePostRequest edits an existing post. Nil fields are left untouched;
// a changed title reassigns the slug.
type UpdatePostRequest struct {
	Title        *string   `json:"title"`
	Summary      *string   `json:"summary"`
	Content      *string   `json:"content"`
	Tags         *[]string `json:"tags"`
	CategorySlug *string   `json:"category_slug"`
	ImageURL     *string   `json:"image_url"`
}

// GenerateSingleRequest triggers one AI post generation. Exactly one of
// Topic or SourceURL must be set; SourceURL drafts from an extracted article.
type GenerateSingleRequest struct {
	Topic        string `json:"topic"`
	SourceURL    string `json:"source_url"`
	CategoryHint string `json:"category_hint"`
}

// GenerateBatchRequest triggers 1-10 independent generation attempts.
type GenerateBatchRequest struct {
	Count        int      `json:"count" binding:"required,min=1,max=10"`
	Topics       []string `json:"topics"`
	CategoryHint string   `json:"category_hint"`
}

// BatchResultDTO reports the lossy batch outcome: counts plus the posts that
// succeeded, in attempt order. Per-item failure reasons are logged
// server-side only.
type BatchResultDTO struct {
	Requested int       `json:"requested"`
	Succeeded int       `json:"succeeded"`
	Posts     []PostDTO `json:"posts"`
}

// SpeechRequest synthesizes narration for arbitrary text (1..5000 chars).
type SpeechRequest struct {
	Text string `json:"text" binding:"required"`
}

// SpeechResponseDTO carries the synthesized audio as a base64 WAV data URI.
type SpeechResponseDTO struct {
	AudioDataURI string `json:"audio_data_uri"`
}

type ErrorResponseDTO struct {
	Error string `json:"error"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}
