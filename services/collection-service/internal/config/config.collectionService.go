// services/collection-service/internal/config/config.collectionService.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/shared/config"
	"github.com/google/uuid"
)

const (
	ProofStorageLocal = "local"
	ProofStorageOSS   = "oss"
)

type CollectionConfig struct {
	CommonConfig *config.CommonConfig

	HTTPPort  string
	JWTSecret string
	JWTIssuer string

	RequireVisitPhoto bool
	DefaultCurrency   string
	// Location decides which calendar day a payment belongs to.
	Location *time.Location

	ProofStorage   string
	ProofLocalDir  string
	ProofPublicURL string
	MaxProofBytes  int64
	OSSEndpoint    string
	OSSAccessKey   string
	OSSSecretKey   string
	OSSBucket      string
	OSSPrefix      string
	OSSPublicBase  string

	SubmitTimeout      time.Duration
	ReconcilerInterval time.Duration
	StaleDepositAfter  time.Duration

	ReportCron      string
	ReportDir       string
	ReportTenantIDs []uuid.UUID

	TemporalTaskQueue string
}

// LoadConfig loads the collection service configuration
func LoadConfig() (*CollectionConfig, error) {
	common := config.LoadCommonConfig()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &CollectionConfig{
		CommonConfig:      common,
		HTTPPort:          envOr("HTTP_PORT", "8080"),
		JWTSecret:         jwtSecret,
		JWTIssuer:         os.Getenv("JWT_ISSUER"),
		DefaultCurrency:   strings.ToUpper(envOr("DEFAULT_CURRENCY", "IDR")),
		ProofStorage:      strings.ToLower(envOr("PROOF_STORAGE", ProofStorageLocal)),
		ProofLocalDir:     envOr("PROOF_LOCAL_DIR", "./uploads"),
		ProofPublicURL:    envOr("PROOF_PUBLIC_URL", "/uploads"),
		OSSEndpoint:       os.Getenv("ALI_OSS_ENDPOINT"),
		OSSAccessKey:      os.Getenv("ALI_OSS_ACCESS_KEY"),
		OSSSecretKey:      os.Getenv("ALI_OSS_SECRET_KEY"),
		OSSBucket:         os.Getenv("ALI_OSS_BUCKET"),
		OSSPrefix:         os.Getenv("ALI_OSS_PREFIX"),
		OSSPublicBase:     os.Getenv("ALI_OSS_PUBLIC_BASE"),
		ReportCron:        envOr("REPORT_CRON", "0 1 * * *"),
		ReportDir:         envOr("REPORT_DIR", "./reports"),
		TemporalTaskQueue: os.Getenv("TEMPORAL_TASK_QUEUE"),
	}

	var err error
	if cfg.RequireVisitPhoto, err = envBool("REQUIRE_VISIT_PHOTO", false); err != nil {
		return nil, err
	}
	if cfg.MaxProofBytes, err = envInt64("MAX_PROOF_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.SubmitTimeout, err = envDuration("SUBMIT_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReconcilerInterval, err = envDuration("RECONCILER_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StaleDepositAfter, err = envDuration("STALE_DEPOSIT_AFTER", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Location, err = time.LoadLocation(envOr("COLLECTION_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("COLLECTION_TIMEZONE: %w", err)
	}
	if cfg.ReportTenantIDs, err = envUUIDs("REPORT_TENANT_IDS"); err != nil {
		return nil, err
	}

	switch cfg.ProofStorage {
	case ProofStorageLocal:
	case ProofStorageOSS:
		if cfg.OSSEndpoint == "" || cfg.OSSBucket == "" || cfg.OSSAccessKey == "" || cfg.OSSSecretKey == "" {
			return nil, fmt.Errorf("PROOF_STORAGE=oss needs ALI_OSS_ENDPOINT, ALI_OSS_BUCKET, ALI_OSS_ACCESS_KEY and ALI_OSS_SECRET_KEY")
		}
	default:
		return nil, fmt.Errorf("PROOF_STORAGE must be %q or %q, got %q", ProofStorageLocal, ProofStorageOSS, cfg.ProofStorage)
	}
	if len(cfg.DefaultCurrency) != 3 {
		return nil, fmt.Errorf("DEFAULT_CURRENCY must be an ISO 4217 code, got %q", cfg.DefaultCurrency)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func envUUIDs(key string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
