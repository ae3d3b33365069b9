package main

import (
	"context"
	"fmt"
	"log"

	"marketpulse/config"
	"marketpulse/db"
	"marketpulse/eventbus"
	"marketpulse/feeder"
	"marketpulse/generator"
	"marketpulse/logger"
	"marketpulse/newsapi"
	"marketpulse/postcache"
	"marketpulse/quota"
	"marketpulse/repositories"
	"marketpulse/services"
	"marketpulse/slugger"
)

const headlinesPerSource = 10

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	// Initialize MongoDB
	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	gen, err := generator.NewGemini(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	var bus eventbus.EventBus = eventbus.Nop{}
	if cfg.Kafka.Brokers != "" {
		kafkaBus, err := eventbus.NewKafkaEventBus(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatal(err)
		}
		defer kafkaBus.Close()
		bus = kafkaBus
	}

	store := repositories.NewPostRepository(db.Database())
	aiLogs := services.NewAILogSink(repositories.NewAILogRepository(db.Database()))
	cache := postcache.New()
	defer cache.ClearAll()

	svc := services.NewGenerationService(cfg, gen, store, cache, services.GenerationDeps{
		Limiter: quota.NewFromConfig(cfg),
		Bus:     bus,
		AILogs:  aiLogs,
	})

	// 1) Collect candidate topics from the configured RSS feeds.
	var headlines []feeder.Headline
	for _, feed := range cfg.NewsFeeds {
		items, err := feeder.FetchHeadlines(feed.Name, feed.RSSURL, headlinesPerSource)
		if err != nil {
			log.Printf("failed to fetch feed %s: %v", feed.Name, err)
			continue
		}
		headlines = append(headlines, items...)
	}

	// 2) MarketAux headlines, when a token is configured.
	if cfg.MarketauxToken != "" {
		articles, err := newsapi.New(cfg.MarketauxToken).TopHeadlines(ctx, "", headlinesPerSource)
		if err != nil {
			log.Printf("failed to fetch marketaux headlines: %v", err)
		}
		for _, a := range articles {
			headlines = append(headlines, feeder.Headline{
				Title:       a.Title,
				Link:        a.URL,
				Source:      a.Source,
				PublishedAt: a.PublishedAt,
			})
		}
	}

	if len(headlines) == 0 {
		log.Fatal("no headlines collected, nothing to generate")
	}

	// 3) Generate a post per fresh headline. A headline whose derived slug
	// already exists was covered by an earlier run and is skipped.
	generated := 0
	for i, h := range headlines {
		fmt.Printf("%s \t%d. title: %s\nlink: %s\npublished: %s\n\n", h.Source, i, h.Title, h.Link, h.PublishedAt)

		base := slugger.DeriveBaseSlug(h.Title)
		if base != "" {
			if exists, err := store.SlugExists(ctx, base); err == nil && exists {
				log.Printf("skip %q: already covered", h.Title)
				continue
			}
		}

		post, err := svc.GenerateSingle(ctx, services.GenerateInput{
			Topic:     h.Title,
			SourceURL: h.Link,
		})
		if err != nil {
			log.Printf("failed to generate post for %q: %v", h.Title, err)
			continue
		}
		generated++
		log.Printf("generated %s (%s)", post.Slug, post.CategoryName)
	}

	log.Printf("aggregation run finished: %d/%d headlines turned into posts", generated, len(headlines))
}
