package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"teardown-leads/internal/scoring"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey        string        `env:"LLM_API_KEY"`
	LLMBaseURL       string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel         string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTemperature   float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMMaxTokens     int           `env:"LLM_MAX_TOKENS" envDefault:"200"`
	LLMRatePerSecond float64       `env:"LLM_RATE_PER_SECOND" envDefault:"2"`
	LLMMaxRetry      time.Duration `env:"LLM_MAX_RETRY" envDefault:"30s"`

	SMTPHost     string   `env:"SMTP_HOST"`
	SMTPPort     int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string   `env:"SMTP_USER"`
	SMTPPass     string   `env:"SMTP_PASS"`
	SMTPFrom     string   `env:"SMTP_FROM"`
	SMTPFromName string   `env:"SMTP_FROM_NAME" envDefault:"Teardown Leads"`
	SMTPUseTLS   bool     `env:"SMTP_USE_TLS" envDefault:"false"`
	AlertEmailTo []string `env:"ALERT_EMAIL_TO" envSeparator:","`

	SlackWebhookURL  string `env:"SLACK_WEBHOOK_URL"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	AlertScoreThreshold float64       `env:"ALERT_SCORE_THRESHOLD" envDefault:"70"`
	AlertDedupTTL       time.Duration `env:"ALERT_DEDUP_TTL" envDefault:"168h"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	ClassifyCacheTTL time.Duration `env:"CLASSIFY_CACHE_TTL" envDefault:"24h"`

	JWTSecret string        `env:"API_JWT_SECRET"`
	JWTTTL    time.Duration `env:"API_JWT_TTL" envDefault:"720h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	ExportDir       string `env:"EXPORT_DIR" envDefault:"data"`
	ExportEndpoint  string `env:"EXPORT_S3_ENDPOINT"`
	ExportAccessKey string `env:"EXPORT_S3_ACCESS_KEY"`
	ExportSecretKey string `env:"EXPORT_S3_SECRET_KEY"`
	ExportBucket    string `env:"EXPORT_S3_BUCKET" envDefault:"teardown-leads"`
	ExportUseSSL    bool   `env:"EXPORT_S3_USE_SSL" envDefault:"true"`

	ZoningShapefile string `env:"ZONING_SHAPEFILE"`
	ZoningAttribute string `env:"ZONING_ATTRIBUTE" envDefault:"ZONE_CODE"`

	ScanCron     string `env:"SCAN_CRON" envDefault:"0 6 * * *"`
	WeeklyCron   string `env:"SCAN_WEEKLY_CRON" envDefault:"0 7 * * 1"`
	ScanLocation string `env:"SCAN_LOCATION" envDefault:"Newton, MA"`
	ScanTimezone string `env:"SCAN_TIMEZONE" envDefault:"America/New_York"`
	ScanQuery    string `env:"SCAN_QUERY" envDefault:"teardown OR builder special OR as-is"`
	ListingsFile string `env:"LISTINGS_FILE"`
	QueueName    string `env:"ASYNQ_QUEUE" envDefault:"scans"`

	MinDevScore        float64 `env:"MIN_DEV_SCORE" envDefault:"50"`
	IncludePotential   bool    `env:"INCLUDE_POTENTIAL" envDefault:"true"`
	ScoringConcurrency int     `env:"SCORING_CONCURRENCY" envDefault:"5"`

	ROIConstructionCosts map[string]float64 `env:"ROI_CONSTRUCTION_COSTS" envKeyValSeparator:":"`
	ROIMarketPrices      map[string]float64 `env:"ROI_MARKET_PRICES" envKeyValSeparator:":"`
	ROIBuildableRatios   map[string]float64 `env:"ROI_BUILDABLE_RATIOS" envKeyValSeparator:":"`
	ROIDefaultCost       *float64           `env:"ROI_DEFAULT_COST"`
	ROIDefaultPrice      *float64           `env:"ROI_DEFAULT_PRICE"`
	ROIDefaultRatio      *float64           `env:"ROI_DEFAULT_RATIO"`
	ROITaxRate           *float64           `env:"ROI_TAX_RATE"`
	ROIExpansionFactor   *float64           `env:"ROI_EXPANSION_FACTOR"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.ScoringTables(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScoringTables mezcla los overrides regionales sobre las tablas de Newton, MA.
func (c *Config) ScoringTables() (scoring.Tables, error) {
	ratios, err := zoningMap("ROI_BUILDABLE_RATIOS", c.ROIBuildableRatios)
	if err != nil {
		return scoring.Tables{}, err
	}
	costs, err := zoningMap("ROI_CONSTRUCTION_COSTS", c.ROIConstructionCosts)
	if err != nil {
		return scoring.Tables{}, err
	}
	prices, err := zoningMap("ROI_MARKET_PRICES", c.ROIMarketPrices)
	if err != nil {
		return scoring.Tables{}, err
	}

	t := scoring.DefaultTables().WithOverrides(ratios, costs, prices)
	setIf(&t.DefaultCost, c.ROIDefaultCost)
	setIf(&t.DefaultPrice, c.ROIDefaultPrice)
	setIf(&t.DefaultRatio, c.ROIDefaultRatio)
	setIf(&t.TaxRate, c.ROITaxRate)
	setIf(&t.ExpansionFactor, c.ROIExpansionFactor)

	if err := t.Validate(); err != nil {
		return scoring.Tables{}, fmt.Errorf("roi tables: %w", err)
	}
	return t, nil
}

func zoningMap(name string, in map[string]float64) (map[scoring.ZoningCategory]float64, error) {
	out := make(map[scoring.ZoningCategory]float64, len(in))
	for k, v := range in {
		cat, ok := scoring.ParseZoningCategory(k)
		if !ok {
			return nil, fmt.Errorf("%s: unknown zoning category %q", name, k)
		}
		out[cat] = v
	}
	return out, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
