// File: cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ramadan-timetable-bot/internal/application"
	"ramadan-timetable-bot/internal/config"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/domain/ports/repository"
	aiAdapters "ramadan-timetable-bot/internal/infra/adapters/ai"
	tele "ramadan-timetable-bot/internal/infra/adapters/telegram"
	pg "ramadan-timetable-bot/internal/infra/db/postgres"
	"ramadan-timetable-bot/internal/infra/api"
	"ramadan-timetable-bot/internal/infra/api/apiv1"
	"ramadan-timetable-bot/internal/infra/calendar"
	"ramadan-timetable-bot/internal/infra/extractlog"
	"ramadan-timetable-bot/internal/infra/i18n"
	"ramadan-timetable-bot/internal/infra/imaging"
	"ramadan-timetable-bot/internal/infra/logging"
	"ramadan-timetable-bot/internal/infra/mapping"
	"ramadan-timetable-bot/internal/infra/memory"
	"ramadan-timetable-bot/internal/infra/metrics"
	red "ramadan-timetable-bot/internal/infra/redis"
	"ramadan-timetable-bot/internal/infra/render"
	"ramadan-timetable-bot/internal/infra/sched"
	"ramadan-timetable-bot/internal/infra/worker"
	"ramadan-timetable-bot/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Locales ----
	locales, err := i18n.NewBundle(i18n.LocalesFS, cfg.Bot.DefaultLanguage, "en", "ar")
	if err != nil {
		logger.Fatal().Err(err).Msg("locales")
	}

	// ---- Time mapping table ----
	mappingUC, err := usecase.NewMappingUseCase(ctx, mapping.NewJSONFileSource(cfg.Mapping.File), cfg.Mapping.FuzzyTolerance, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.Mapping.File).Msg("time mapping")
	}
	metrics.SetMappingsLoaded(len(mappingUC.All()))

	// ---- Vision providers (OpenAI / Gemini, routed by model) ----
	vision, provider := buildVision(ctx, cfg, logger)
	logger.Info().Str("provider", provider).Str("model", cfg.AI.DefaultModel).Msg("vision adapter ready")

	// ---- Counters: Postgres > Redis > in-memory ----
	var (
		statsRepo   repository.StatsRepository
		rateLimiter repository.RateLimiter
		checks      []api.HealthFunc
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		statsRepo = red.NewStatsRepo(redisClient)
		rateLimiter = red.NewRateLimiter(redisClient)
		checks = append(checks, redisClient.Ping)
	} else {
		logger.Warn().Msg("redis.url not set; rate limits are kept in memory")
		statsRepo = memory.NewStatsRepo()
		rateLimiter = memory.NewRateLimiter()
	}
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		statsRepo = pg.NewStatsRepo(pool)
		checks = append(checks, pool.Ping)
	}
	health := func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	// ---- Extraction logs ----
	var logs repository.ExtractionLogRepository
	if cfg.ExtractionLog.Enabled {
		fileRepo, err := extractlog.NewFileRepo(cfg.ExtractionLog.Dir, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("extraction log")
		}
		logs = fileRepo
		cleanup := sched.NewLogCleanupWorker(cfg.ExtractionLog.CleanupInterval, cfg.ExtractionLog.Retention, fileRepo, logger)
		go func() { _ = cleanup.Run(ctx) }()
	}

	// ---- Renderer / calendar ----
	renderer, err := render.NewTimetableRenderer(render.Options{
		Width:    cfg.Render.Width,
		Height:   cfg.Render.Height,
		FontPath: cfg.Render.FontPath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("renderer")
	}
	var cal adapter.CalendarExporter
	if cfg.Calendar.Enabled {
		exporter, err := calendar.NewICSExporter(cfg.Calendar.Timezone, cfg.Calendar.Weeks)
		if err != nil {
			logger.Fatal().Err(err).Msg("calendar")
		}
		cal = exporter
	}

	// ---- Use cases ----
	extractUC := usecase.NewExtractUseCase(vision, imaging.NewDownscaler(cfg.Extraction.MaxImageSide), logs, usecase.ExtractOptions{
		Model:            cfg.AI.DefaultModel,
		MaxEntries:       cfg.Extraction.MaxEntries,
		MaxTokens:        cfg.AI.MaxTokens,
		SaveFailedImages: cfg.ExtractionLog.SaveFailedImages,
	}, logger)
	convertUC := usecase.NewConvertUseCase(extractUC, mappingUC, renderer, cal, statsRepo, logger)
	statsUC := usecase.NewStatsUseCase(statsRepo, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(mappingUC, convertUC, statsUC, cfg.Bot.AdminIDs)

	// ---- Conversion pool ----
	pool := worker.NewPool(cfg.Bot.JobWorkers, cfg.Bot.JobQueue, logger)
	pool.Start(ctx)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, locales, rateLimiter, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin HTTP server ----
	var admin *api.AdminServer
	if cfg.Admin.Port > 0 {
		if cfg.Admin.APIKey == "" {
			logger.Warn().Msg("admin.api_key not set; /api/v1 is unauthenticated")
		}
		admin = api.NewAdminServer(cfg.Admin.Port, cfg.Admin.APIKey, apiv1.NewServer(mappingUC, statsUC, logger), health, logger)
		go func() {
			if err := admin.Start(); err != nil {
				logger.Error().Err(err).Msg("admin server error")
			}
		}()
	}

	logger.Info().Str("version", version).Int("mappings", len(mappingUC.All())).Msg("bot started")

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	botAdapter.StopPolling()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("admin server shutdown")
		}
	}
	pool.Stop()
}

// buildVision wires every provider that has a key and routes calls by model
// name. The chain is multi -> concurrency limit -> metrics.
func buildVision(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.VisionAdapter, string) {
	byProvider := map[string]adapter.VisionAdapter{}

	if cfg.AI.OpenAIKey != "" {
		model := cfg.AI.DefaultModel
		if aiAdapters.ProviderFor(model, "openai") != "openai" {
			model = ""
		}
		oa, err := aiAdapters.NewOpenAIAdapter(aiAdapters.OpenAIOptions{
			APIKey:     cfg.AI.OpenAIKey,
			BaseURL:    cfg.AI.OpenAIBaseURL,
			Model:      model,
			MaxRetries: cfg.AI.MaxRetries,
			Timeout:    cfg.AI.Timeout,
		}, aiAdapters.NewTokenCounter())
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		byProvider["openai"] = oa
	}
	if cfg.AI.GeminiKey != "" {
		model := cfg.AI.DefaultModel
		if !strings.HasPrefix(strings.ToLower(model), "gemini") {
			model = ""
		}
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, model)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		byProvider["gemini"] = ga
	}
	if cfg.Runtime.Dev {
		byProvider["noop"] = aiAdapters.NewNoopAIAdapter(logger)
	}

	defaultProvider := "openai"
	if byProvider["openai"] == nil {
		defaultProvider = "gemini"
	}
	defaultProvider = aiAdapters.ProviderFor(cfg.AI.DefaultModel, defaultProvider)

	multi := aiAdapters.NewMultiAIAdapter(defaultProvider, cfg.AI.DefaultModel, byProvider, nil)
	return aiAdapters.NewInstrumentedAI(aiAdapters.NewLimitedAI(multi, cfg.AI.ConcurrentLimit)), multi.Provider()
}
