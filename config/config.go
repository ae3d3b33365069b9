package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging    LoggingConfig   `yaml:"logging"`
	Server     ServerConfig    `yaml:"server"`
	Mongo      MongoConfig     `yaml:"mongo"`
	Generator  GeneratorConfig `yaml:"generator"`
	Cache      CacheConfig     `yaml:"cache"`
	Quota      QuotaConfig     `yaml:"generation_quota"`
	Kafka      KafkaConfig     `yaml:"kafka"`
	NewsFeeds  []NewsFeed      `yaml:"news_feeds"`
	Categories []Category      `yaml:"categories"`

	// Secrets are only read from the environment, never from config.yaml.
	GeminiApiKey   string `yaml:"-"`
	MarketauxToken string `yaml:"-"`
	JWTSecret      string `yaml:"-"`
	AdminPassword  string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

type GeneratorConfig struct {
	Model string `yaml:"model"`
	// ImageModel is the model used for post image generation.
	ImageModel string `yaml:"image_model"`
	// TTSModel is the model used for speech synthesis.
	TTSModel string `yaml:"tts_model"`
	// TimeoutSeconds bounds every generator call. 0 or less means 45.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// PlaceholderImageURL is served whenever image generation fails.
	PlaceholderImageURL string `yaml:"placeholder_image_url"`
}

type CacheConfig struct {
	// TTLMinutes is how long freshly generated posts stay servable from
	// memory before the durable read path is trusted. 0 or less means 15.
	TTLMinutes int `yaml:"ttl_minutes"`
}

// QuotaConfig defines rate/daily limits for generator LLM calls.
// A value of 0 or less means no limit in that direction.
type QuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type KafkaConfig struct {
	// Brokers empty disables event publishing entirely.
	Brokers string `yaml:"brokers"`
}

// NewsFeed is a single market-news RSS source used to suggest topics.
type NewsFeed struct {
	Name   string `yaml:"name"`
	RSSURL string `yaml:"rss_url"`
}

// Category is one entry of the fixed category list. The first entry is the
// fallback used when generator output names an unknown category.
type Category struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}

	c.GeminiApiKey = os.Getenv("GEMINI_API_KEY")
	c.MarketauxToken = os.Getenv("MARKETAUX_API_TOKEN")
	c.JWTSecret = os.Getenv("JWT_SECRET")
	c.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// SetConfigForTest overrides the global config. Tests only.
func SetConfigForTest(c AppConfig) {
	config = &c
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// FallbackCategory returns the category substituted when the generator emits
// an unrecognized category slug: the first configured category, or a literal
// "general" when the list is empty.
func (c AppConfig) FallbackCategory() Category {
	if len(c.Categories) == 0 {
		return Category{Slug: "general", Name: "General"}
	}
	return c.Categories[0]
}

// CategoryBySlug resolves a configured category by slug.
func (c AppConfig) CategoryBySlug(slug string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Slug == slug {
			return cat, true
		}
	}
	return Category{}, false
}
