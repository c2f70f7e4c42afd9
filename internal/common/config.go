package common

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Source   SourceConfig
	Render   RenderConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	Catalog  CatalogConfig
	Artifact ArtifactConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// SourceConfig holds native extraction configuration
type SourceConfig struct {
	Pdftotext string
}

// RenderConfig holds page rasterization configuration
type RenderConfig struct {
	Pdftoppm string
	DPI      int
	MaxPages int
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	Lang        string
	PSM         int
	OEM         int
	TessdataDir string
}

// PipelineConfig holds extraction pipeline configuration
type PipelineConfig struct {
	FTEYearlyHours float64
	MaxPages       int
	Workers        int
}

// CatalogConfig holds the local run catalog configuration
type CatalogConfig struct {
	Path string
}

// ArtifactConfig holds JSON artifact output configuration
type ArtifactConfig struct {
	OutDir string
}

// LoadConfig reads configuration through viper: an optional config file plus
// SOW_-prefixed environment variables (SOW_DB_URL, SOW_OCR_TESSERACT, ...).
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db.max_conns", 20)
	v.SetDefault("db.min_conns", 5)
	v.SetDefault("db.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("db.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("db.dial_timeout", 3*time.Second)
	v.SetDefault("db.statement_timeout", time.Duration(0))
	v.SetDefault("source.pdftotext", "pdftotext")
	v.SetDefault("render.pdftoppm", "pdftoppm")
	v.SetDefault("render.dpi", 600)
	v.SetDefault("render.max_pages", 10)
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.oem", -1)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("pipeline.fte_yearly_hours", 1800.0)
	v.SetDefault("pipeline.max_pages", 10)
	v.SetDefault("pipeline.workers", 0)
	v.SetDefault("catalog.path", "sow-runs.db")
	v.SetDefault("artifact.out_dir", "")

	// Env var aliases for the names operators actually set.
	_ = v.BindEnv("db.dsn", "SOW_DB_URL")
	_ = v.BindEnv("ocr.tessdata_dir", "TESSDATA_PREFIX")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, WrapError(err, "read config file")
		}
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:              v.GetString("db.dsn"),
			MaxConns:         v.GetInt32("db.max_conns"),
			MinConns:         v.GetInt32("db.min_conns"),
			MaxConnLifetime:  v.GetDuration("db.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("db.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("db.dial_timeout"),
			StatementTimeout: v.GetDuration("db.statement_timeout"),
		},
		Source: SourceConfig{
			Pdftotext: v.GetString("source.pdftotext"),
		},
		Render: RenderConfig{
			Pdftoppm: v.GetString("render.pdftoppm"),
			DPI:      v.GetInt("render.dpi"),
			MaxPages: v.GetInt("render.max_pages"),
		},
		OCR: OCRConfig{
			Tesseract:   v.GetString("ocr.tesseract"),
			Lang:        v.GetString("ocr.lang"),
			PSM:         v.GetInt("ocr.psm"),
			OEM:         v.GetInt("ocr.oem"),
			TessdataDir: v.GetString("ocr.tessdata_dir"),
		},
		Pipeline: PipelineConfig{
			FTEYearlyHours: v.GetFloat64("pipeline.fte_yearly_hours"),
			MaxPages:       v.GetInt("pipeline.max_pages"),
			Workers:        v.GetInt("pipeline.workers"),
		},
		Catalog: CatalogConfig{
			Path: v.GetString("catalog.path"),
		},
		Artifact: ArtifactConfig{
			OutDir: v.GetString("artifact.out_dir"),
		},
	}, nil
}

// Validate checks invariants that hold for every command.
func (c *Config) Validate() error {
	if c.Pipeline.FTEYearlyHours <= 0 {
		return NewAppError("CONFIG_ERROR", "pipeline.fte_yearly_hours must be positive", ErrInvalidInput)
	}
	if c.Render.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "render.dpi must be positive", ErrInvalidInput)
	}
	return nil
}

// ValidateForDB additionally requires a database DSN, for commands that
// persist results.
func (c *Config) ValidateForDB() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "SOW_DB_URL is required", ErrInvalidInput)
	}
	return nil
}
