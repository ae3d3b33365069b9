package main

import (
	"context"
	"log"
	"net/http"

	"github.com/rs/cors"

	"marketpulse/api/router"
	"marketpulse/auth"
	"marketpulse/config"
	"marketpulse/db"
	"marketpulse/eventbus"
	"marketpulse/generator"
	"marketpulse/logger"
	"marketpulse/postcache"
	"marketpulse/quota"
	"marketpulse/repositories"
	"marketpulse/services"
)

// @title           MarketPulse API
// @version         1.0
// @description     API for the MarketPulse financial news platform
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal(err)
	}

	gen, err := generator.NewGemini(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, "marketpulse")
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

	posts := services.NewPostService(cfg, store, cache, bus, nil)
	generation := services.NewGenerationService(cfg, gen, store, cache, services.GenerationDeps{
		Limiter: quota.NewFromConfig(cfg),
		Bus:     bus,
		AILogs:  aiLogs,
	})

	r := router.New(router.Deps{
		Cfg:        cfg,
		JWT:        jwtManager,
		Posts:      posts,
		Generation: generation,
	})

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	handler := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}).Handler(r)

	logger.Log.Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
