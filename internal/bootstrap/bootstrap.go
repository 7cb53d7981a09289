package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"teardown-leads/internal/config"
	"teardown-leads/internal/db"
	"teardown-leads/internal/email"
	"teardown-leads/internal/export"
	"teardown-leads/internal/geo"
	"teardown-leads/internal/llm"
	"teardown-leads/internal/notify"
	"teardown-leads/internal/repository"
	"teardown-leads/internal/scoring"
	"teardown-leads/internal/service"
	"teardown-leads/internal/source"
)

// App agrupa las dependencias compartidas por los binarios.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client

	Listings        repository.ListingRepository
	Classifications repository.ClassificationRepository
	Runs            repository.ScanRunRepository

	Enricher *service.EnrichmentService
	Scorer   *service.OpportunityService
	Alerts   *service.AlertService
	Pipeline *service.PipelineService
}

// New conecta Postgres y, si esta configurado, Redis, y arma los servicios.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	tables, err := cfg.ScoringTables()
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	a := &App{
		Config:          cfg,
		Logger:          logger,
		Pool:            pool,
		Redis:           connectRedis(ctx, cfg, logger),
		Listings:        repository.NewPgListingRepository(pool),
		Classifications: repository.NewPgClassificationRepository(pool),
		Runs:            repository.NewPgScanRunRepository(pool),
	}

	zoning, err := loadZoning(cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.Enricher = service.NewEnrichmentService(zoning, logger)

	classifier := service.NewClassifierService(
		newLLMClient(cfg, logger),
		service.NewRedisClassificationCache(a.Redis, cfg.ClassifyCacheTTL),
		logger,
	)
	a.Scorer = service.NewOpportunityService(classifier, scoring.NewCalculator(tables), cfg.ScoringConcurrency, logger)

	a.Alerts = service.NewAlertService(
		Notifiers(cfg, logger),
		service.NewRedisAlertDeduper(a.Redis, cfg.AlertDedupTTL),
		cfg.AlertScoreThreshold,
		cfg.ScanLocation,
		logger,
	)

	a.Pipeline = service.NewPipelineService(
		source.NewFileSource(cfg.ListingsFile),
		a.Enricher,
		a.Scorer,
		a.Listings,
		a.Classifications,
		a.Runs,
		export.NewExporter(cfg.ExportDir, objectStore(ctx, cfg, logger), logger),
		a.Alerts,
		service.PipelineOptions{
			MinScore:         cfg.MinDevScore,
			IncludePotential: cfg.IncludePotential,
			ModelVersion:     cfg.LLMModel,
		},
		logger,
	)
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("redis close", zap.Error(err))
		}
	}
	a.Pool.Close()
}

func connectRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		logger.Warn("redis ping failed, cache and alert dedup disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func newLLMClient(cfg *config.Config, logger *zap.Logger) llm.LLMClient {
	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured, classifications will fail and score as \"no\"")
	}
	return llm.NewHTTPClient(llm.Options{
		BaseURL:       cfg.LLMBaseURL,
		APIKey:        cfg.LLMAPIKey,
		Model:         cfg.LLMModel,
		Temperature:   cfg.LLMTemperature,
		MaxTokens:     cfg.LLMMaxTokens,
		JSONMode:      true,
		RatePerSecond: cfg.LLMRatePerSecond,
		MaxElapsed:    cfg.LLMMaxRetry,
	}, logger)
}

// loadZoning devuelve nil sin shapefile configurado.
func loadZoning(cfg *config.Config, logger *zap.Logger) (service.ZoningLookup, error) {
	if cfg.ZoningShapefile == "" {
		return nil, nil
	}
	layer, err := geo.LoadZoningLayer(cfg.ZoningShapefile, cfg.ZoningAttribute)
	if err != nil {
		return nil, fmt.Errorf("zoning layer: %w", err)
	}
	logger.Info("zoning layer loaded", zap.String("path", cfg.ZoningShapefile), zap.Int("features", layer.Len()))
	return layer, nil
}

// objectStore devuelve nil si no hay endpoint o si el bucket no esta disponible;
// los exports quedan solo en disco.
func objectStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) export.Uploader {
	if cfg.ExportEndpoint == "" {
		return nil
	}
	store, err := export.NewMinIOStore(cfg.ExportEndpoint, cfg.ExportAccessKey, cfg.ExportSecretKey, cfg.ExportBucket, cfg.ExportUseSSL)
	if err != nil {
		logger.Warn("object store init failed", zap.Error(err))
		return nil
	}
	ctxBucket, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctxBucket); err != nil {
		logger.Warn("object store bucket unavailable", zap.String("bucket", cfg.ExportBucket), zap.Error(err))
		return nil
	}
	return store
}

// Notifiers arma los canales configurados. Con destinatarios de email pero sin SMTP
// usable el canal queda registrado y cada envio falla.
func Notifiers(cfg *config.Config, logger *zap.Logger) []notify.Notifier {
	var out []notify.Notifier
	if len(cfg.AlertEmailTo) > 0 {
		emailSender := email.NewDisabledSender("email sender not configured")
		if cfg.SMTPHost != "" {
			sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
			if err != nil {
				logger.Warn("smtp sender init failed", zap.Error(err))
			} else {
				emailSender = sender
			}
		}
		out = append(out, notify.NewEmailNotifier(emailSender, cfg.AlertEmailTo))
	}
	if cfg.SlackWebhookURL != "" {
		out = append(out, notify.NewSlackNotifier(cfg.SlackWebhookURL))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram notifier init failed", zap.Error(err))
		} else {
			out = append(out, tg)
		}
	}
	if len(out) == 0 {
		logger.Info("no notification channels configured")
	}
	return out
}
