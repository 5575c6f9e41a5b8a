package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"receiptmatch"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"receiptmatch"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		// An empty secret disables bearer auth.
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Matching struct {
		AmountTolerance       float64 `envconfig:"MATCH_AMOUNT_TOLERANCE" default:"0.02"`
		DateWindow            int     `envconfig:"MATCH_DATE_WINDOW" default:"14"`
		TieEpsilon            float64 `envconfig:"MATCH_TIE_EPSILON" default:"0.01"`
		AutoThreshold         float64 `envconfig:"MATCH_AUTO_THRESHOLD" default:"0.90"`
		ReviewThreshold       float64 `envconfig:"MATCH_REVIEW_THRESHOLD" default:"0.60"`
		VendorWeight          float64 `envconfig:"MATCH_VENDOR_WEIGHT" default:"0.6"`
		CategoryWeight        float64 `envconfig:"MATCH_CATEGORY_WEIGHT" default:"0.4"`
		Workers               int     `envconfig:"MATCH_WORKERS"`
		CategoryMapFile       string  `envconfig:"MATCH_CATEGORY_MAP"`
		AllowVerifierTieBreak bool    `envconfig:"ALLOW_VERIFIER_TIE_BREAK" default:"false"`
	}

	Verifier struct {
		Provider      string        `envconfig:"VERIFIER_PROVIDER" default:"none"`
		TopK          int           `envconfig:"VERIFIER_TOP_K" default:"3"`
		Timeout       time.Duration `envconfig:"VERIFIER_TIMEOUT" default:"10s"`
		MinConfidence float64       `envconfig:"VERIFIER_MIN_CONFIDENCE" default:"0.80"`
		Concurrency   int           `envconfig:"VERIFIER_CONCURRENCY" default:"4"`
		GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
		GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
		OllamaURL     string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
		OllamaModel   string        `envconfig:"OLLAMA_MODEL" default:"llama3.1"`
		CachePath     string        `envconfig:"VERIFIER_CACHE_PATH"`
	}

	Poster struct {
		Provider       string `envconfig:"POSTER_PROVIDER" default:"log"`
		FikenURL       string `envconfig:"FIKEN_URL" default:"https://api.fiken.no/api/v2"`
		FikenToken     string `envconfig:"FIKEN_TOKEN"`
		FikenCompany   string `envconfig:"FIKEN_COMPANY"`
		AccountMapFile string `envconfig:"FIKEN_ACCOUNT_MAP"`
	}

	Export struct {
		DocumentToken string `envconfig:"EXPORT_DOCUMENT_TOKEN"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// MatchingOptions splits the matching section into engine and router settings.
func (c *Config) MatchingOptions() (matching.Config, escalation.Config) {
	m := c.Matching

	engine := matching.Config{
		AmountTolerance: m.AmountTolerance,
		DateWindow:      m.DateWindow,
		TieEpsilon:      m.TieEpsilon,
		VendorWeight:    m.VendorWeight,
		CategoryWeight:  m.CategoryWeight,
	}

	router := escalation.Config{
		AutoThreshold:         m.AutoThreshold,
		ReviewThreshold:       m.ReviewThreshold,
		TopK:                  c.Verifier.TopK,
		Timeout:               c.Verifier.Timeout,
		MinConfidence:         c.Verifier.MinConfidence,
		Concurrency:           c.Verifier.Concurrency,
		AllowVerifierTieBreak: m.AllowVerifierTieBreak,
	}

	return engine, router
}

// Workers is the scoring parallelism, NumCPU unless set.
func (c *Config) Workers() int {
	if c.Matching.Workers > 0 {
		return c.Matching.Workers
	}

	return runtime.NumCPU()
}

func (c *Config) Validate() error {
	m := c.Matching

	switch {
	case m.AmountTolerance <= 0 || m.AmountTolerance >= 1:
		return fmt.Errorf("MATCH_AMOUNT_TOLERANCE must be between 0 and 1, got %v", m.AmountTolerance)
	case m.DateWindow < 0:
		return fmt.Errorf("MATCH_DATE_WINDOW must not be negative, got %d", m.DateWindow)
	case m.TieEpsilon < 0:
		return fmt.Errorf("MATCH_TIE_EPSILON must not be negative, got %v", m.TieEpsilon)
	case m.ReviewThreshold < 0 || m.ReviewThreshold > m.AutoThreshold || m.AutoThreshold > 1:
		return fmt.Errorf("thresholds must satisfy 0 <= review (%v) <= auto (%v) <= 1", m.ReviewThreshold, m.AutoThreshold)
	case m.VendorWeight < 0 || m.CategoryWeight < 0 || m.VendorWeight+m.CategoryWeight <= 0:
		return fmt.Errorf("signal weights must be non-negative with a positive sum")
	}

	v := c.Verifier

	switch v.Provider {
	case "none", "":
	case "gemini":
		if v.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini verifier")
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown VERIFIER_PROVIDER %q", v.Provider)
	}

	if v.MinConfidence < 0 || v.MinConfidence > 1 {
		return fmt.Errorf("VERIFIER_MIN_CONFIDENCE must be between 0 and 1, got %v", v.MinConfidence)
	}

	switch c.Poster.Provider {
	case "none", "", "log":
	case "fiken":
		if c.Poster.FikenToken == "" || c.Poster.FikenCompany == "" {
			return fmt.Errorf("FIKEN_TOKEN and FIKEN_COMPANY are required for the fiken poster")
		}
	default:
		return fmt.Errorf("unknown POSTER_PROVIDER %q", c.Poster.Provider)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
