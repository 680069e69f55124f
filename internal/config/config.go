// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"ramadan-timetable-bot/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token              string  `yaml:"token"`
	Username           string  `yaml:"username"`
	Workers            int     `yaml:"workers"`     // polling workers
	JobWorkers         int     `yaml:"job_workers"` // concurrent photo conversions
	JobQueue           int     `yaml:"job_queue"`
	RateLimitPerMinute int     `yaml:"rate_limit_per_minute"` // photos per user, 0 disables
	DefaultLanguage    string  `yaml:"default_language"`      // en|ar
	AdminIDs           []int64 `yaml:"admin_ids"`             // empty: /stats is public
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port   int    `yaml:"port"`    // 0 disables the admin server
	APIKey string `yaml:"api_key"` // bearer token for /api/v1, empty leaves it open
}

type RedisConfig struct {
	URL      string `yaml:"url"` // host:port or redis:// URL, empty uses in-memory counters
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"` // postgres DSN, empty disables durable stats
	MaxConns int    `yaml:"max_conns"`
}

type AIConfig struct {
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	DefaultModel    string        `yaml:"default_model"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxRetries      int           `yaml:"max_retries"`      // client library retries
	Timeout         time.Duration `yaml:"timeout"`
	MaxTokens       int           `yaml:"max_tokens"`
}

type ExtractionConfig struct {
	MaxImageSide int `yaml:"max_image_side"`
	MaxEntries   int `yaml:"max_entries"`
}

type ExtractionLogConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Dir              string        `yaml:"dir"`
	SaveFailedImages bool          `yaml:"save_failed_images"`
	Retention        time.Duration `yaml:"retention"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"`
}

type MappingConfig struct {
	File           string        `yaml:"file"`
	FuzzyTolerance time.Duration `yaml:"fuzzy_tolerance"` // negative disables fuzzy matching
}

type RenderConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	FontPath string `yaml:"font_path"` // optional TTF, Go fonts otherwise
}

// DefaultTimezone is where the mapped Ramadan slots are meant to be read.
const DefaultTimezone = "Asia/Riyadh"

type CalendarConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Weeks    int    `yaml:"weeks"` // weekly recurrences per event
	Timezone string `yaml:"timezone"` // IANA name, DefaultTimezone when empty
}

type Config struct {
	Bot           BotConfig           `yaml:"bot"`
	Log           LogConfig           `yaml:"log"`
	Admin         AdminConfig         `yaml:"admin"`
	Redis         RedisConfig         `yaml:"redis"`
	Database      DatabaseConfig      `yaml:"database"`
	AI            AIConfig            `yaml:"ai"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	ExtractionLog ExtractionLogConfig `yaml:"extraction_log"`
	Mapping       MappingConfig       `yaml:"mapping"`
	Render        RenderConfig        `yaml:"render"`
	Calendar      CalendarConfig      `yaml:"calendar"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads -config, -env and -dev flags and loads the configuration.
func LoadConfig() (*Config, error) {
	var configPath, envPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml (optional)")
	flag.StringVar(&envPath, "env", ".env", "path to dotenv file (optional)")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load %s: %v", domain.ErrConfiguration, envPath, err)
	}
	return Load(configPath, dev)
}

// Load builds the configuration from an optional YAML file and the process
// environment. Environment variables win over the file.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: read config: %v", domain.ErrConfiguration, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("%w: parse config: %v", domain.ErrConfiguration, err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	envString("TELEGRAM_BOT_TOKEN", &cfg.Bot.Token)
	envString("OPENAI_API_KEY", &cfg.AI.OpenAIKey)
	envString("OPENAI_BASE_URL", &cfg.AI.OpenAIBaseURL)
	envString("GEMINI_API_KEY", &cfg.AI.GeminiKey)
	envString("AI_MODEL", &cfg.AI.DefaultModel)
	envString("REDIS_URL", &cfg.Redis.URL)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envString("DATABASE_URL", &cfg.Database.URL)
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("MAPPING_FILE", &cfg.Mapping.File)
	envString("ADMIN_API_KEY", &cfg.Admin.APIKey)
	if v := os.Getenv("ADMIN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Admin.Port = p
		}
	}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Bot.JobWorkers <= 0 {
		cfg.Bot.JobWorkers = 4
	}
	if cfg.Bot.JobQueue <= 0 {
		cfg.Bot.JobQueue = 32
	}
	if cfg.Bot.RateLimitPerMinute < 0 {
		cfg.Bot.RateLimitPerMinute = 0
	}
	if cfg.Bot.DefaultLanguage == "" {
		cfg.Bot.DefaultLanguage = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 4
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o"
		if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey != "" {
			cfg.AI.DefaultModel = "gemini-2.0-flash"
		}
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	if cfg.AI.MaxRetries < 0 {
		cfg.AI.MaxRetries = 0
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 90 * time.Second
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 4096
	}
	if cfg.Extraction.MaxImageSide <= 0 {
		cfg.Extraction.MaxImageSide = 2048
	}
	if cfg.Extraction.MaxEntries <= 0 {
		cfg.Extraction.MaxEntries = 50
	}
	if cfg.ExtractionLog.Dir == "" {
		cfg.ExtractionLog.Dir = "extraction_logs"
	}
	if cfg.ExtractionLog.Retention <= 0 {
		cfg.ExtractionLog.Retention = 7 * 24 * time.Hour
	}
	if cfg.ExtractionLog.CleanupInterval <= 0 {
		cfg.ExtractionLog.CleanupInterval = 6 * time.Hour
	}
	if cfg.Mapping.File == "" {
		cfg.Mapping.File = "time_mapping.json"
	}
	switch {
	case cfg.Mapping.FuzzyTolerance == 0:
		cfg.Mapping.FuzzyTolerance = 5 * time.Minute
	case cfg.Mapping.FuzzyTolerance < 0:
		cfg.Mapping.FuzzyTolerance = 0
	}
	if cfg.Render.Width <= 0 {
		cfg.Render.Width = 1000
	}
	if cfg.Render.Height <= 0 {
		cfg.Render.Height = 800
	}
	if cfg.Calendar.Weeks <= 0 {
		cfg.Calendar.Weeks = 4
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = DefaultTimezone
	}
}

// Validate checks required settings. Errors wrap domain.ErrConfiguration.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN (bot.token) is required", domain.ErrConfiguration)
	}
	if c.AI.OpenAIKey == "" && c.AI.GeminiKey == "" && !(c.Runtime.Dev && c.AI.DefaultModel == "noop") {
		return fmt.Errorf("%w: OPENAI_API_KEY or GEMINI_API_KEY is required", domain.ErrConfiguration)
	}
	switch {
	case c.AI.DefaultModel == "noop":
	case strings.HasPrefix(c.AI.DefaultModel, "gemini"):
		if c.AI.GeminiKey == "" {
			return fmt.Errorf("%w: model %q needs GEMINI_API_KEY", domain.ErrConfiguration, c.AI.DefaultModel)
		}
	default:
		if c.AI.OpenAIKey == "" {
			return fmt.Errorf("%w: model %q needs OPENAI_API_KEY", domain.ErrConfiguration, c.AI.DefaultModel)
		}
	}
	switch c.Bot.DefaultLanguage {
	case "en", "ar":
	default:
		return fmt.Errorf("%w: bot.default_language must be en or ar, got %q", domain.ErrConfiguration, c.Bot.DefaultLanguage)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("%w: admin.port out of range: %d", domain.ErrConfiguration, c.Admin.Port)
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("%w: calendar.timezone: %v", domain.ErrConfiguration, err)
	}
	return nil
}
