package services

import (
	"context"
	"encoding/json"
	"time"

	"marketpulse/config"
	"marketpulse/eventbus"
	"marketpulse/events"
	"marketpulse/generator"
	"marketpulse/logger"
	"marketpulse/models"
	"marketpulse/repositories"
)

// PostStore is the durable storage the services depend on. Implemented by
// repositories.PostRepository; faked in tests.
type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, opts repositories.ListPostsOptions) ([]models.Post, error)
	Count(ctx context.Context, opts repositories.ListPostsOptions) (int64, error)
	UpdateBySlug(ctx context.Context, slug string, p *models.Post) error
	DeleteBySlug(ctx context.Context, slug string) error
}

// AILogSink records generator request logs. Implemented by
// repositories.AILogRepository via aiLogAdapter; nil-safe at call sites.
type AILogSink interface {
	Record(ctx context.Context, log models.AILog)
}

// NewAILogSink adapts the Mongo repository into an AILogSink. Failures to
// write a usage log are logged and swallowed; they must never fail the
// operation being logged.
func NewAILogSink(repo *repositories.AILogRepository) AILogSink {
	return &aiLogAdapter{repo: repo}
}

type aiLogAdapter struct {
	repo *repositories.AILogRepository
}

func (a *aiLogAdapter) Record(ctx context.Context, log models.AILog) {
	if a.repo == nil {
		return
	}
	if _, err := a.repo.Insert(ctx, log); err != nil {
		logger.Log.Warnf("failed to record ai log: %v", err)
	}
}

// recordRequestLog maps a generator.RequestLog onto an AILog document.
func recordRequestLog(ctx context.Context, sink AILogSink, rl *generator.RequestLog, start time.Time, callErr error) {
	if sink == nil || rl == nil {
		return
	}
	log := models.AILog{
		Operation:       rl.Operation,
		ModelName:       rl.ModelName,
		ModelVersion:    rl.ModelVersion,
		InputTokens:     rl.TokenUsage.InputTokens,
		OutputTokens:    rl.TokenUsage.OutputTokens,
		TotalTokens:     rl.TokenUsage.TotalTokens,
		DurationMs:      rl.LatencyMs,
		Success:         callErr == nil,
		ResponseExcerpt: truncate(rl.Response, 200),
		RequestedAt:     start,
		CompletedAt:     time.Now(),
	}
	if callErr != nil {
		msg := callErr.Error()
		log.ErrorMessage = &msg
	}
	sink.Record(ctx, log)
}

// publishPostEvent emits a post lifecycle event. Best-effort: a publish
// failure is logged and never surfaced to the caller.
func publishPostEvent(ctx context.Context, bus eventbus.EventBus, t events.EventType, source string, p *models.Post) {
	if bus == nil {
		return
	}
	ev := events.NewPostEvent(t, source, p.Slug, p.Title, p.CategorySlug, p.Tags, p.IsAiGenerated)
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Warnf("failed to marshal %s event: %v", t, err)
		return
	}
	if err := bus.Publish(ctx, eventbus.TopicPostEvents, eventbus.Event{ID: ev.ID, Payload: payload}); err != nil {
		logger.Log.Warnf("failed to publish %s event for %s: %v", t, p.Slug, err)
	}
}

// resolveCategory maps a generator- or editor-supplied category slug onto the
// configured list, silently substituting the fallback for unknown values.
func resolveCategory(cfg config.AppConfig, slug string) config.Category {
	if cat, ok := cfg.CategoryBySlug(slug); ok {
		return cat
	}
	fb := cfg.FallbackCategory()
	if slug != "" {
		logger.Log.Debugf("unknown category %q, falling back to %q", slug, fb.Slug)
	}
	return fb
}

func cacheTTL(cfg config.AppConfig) time.Duration {
	if cfg.Cache.TTLMinutes > 0 {
		return time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	}
	return 15 * time.Minute
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
