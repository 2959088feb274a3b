package app

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/formaplus/elearning-backend/internal/platform/envutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

// DefaultDomains is the catalog taxonomy shipped out of the box; a config
// file can replace it.
var DefaultDomains = []string{
	"Développement Web",
	"Intelligence Artificielle",
	"Finance et Comptabilité",
	"Marketing Digital",
	"Santé et Bien-être",
}

type Config struct {
	Port         string
	JWTSecretKey string
	AccessTTL    time.Duration

	StorageMode     string // local | gcs | emulator
	StorageRoot     string
	StorageBaseURL  string
	GCSBucket       string
	GCSEmulatorHost string

	DialogueTTL time.Duration
	TracingMode string

	Domains     []string
	CORSOrigins []string
}

type fileConfig struct {
	Domains     []string `yaml:"domains"`
	CORSOrigins []string `yaml:"cors_origins"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:         envutil.GetEnv("PORT", "8080", log),
		JWTSecretKey: envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTTL:    time.Duration(envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,

		StorageMode:     envutil.GetEnv("STORAGE_MODE", "local", log),
		StorageRoot:     envutil.GetEnv("STORAGE_ROOT", "./uploads", log),
		StorageBaseURL:  envutil.GetEnv("STORAGE_BASE_URL", "/uploads", log),
		GCSBucket:       envutil.GetEnv("GCS_BUCKET", "", log),
		GCSEmulatorHost: envutil.GetEnv("STORAGE_EMULATOR_HOST", "", log),

		DialogueTTL: time.Duration(envutil.GetEnvAsInt("DIALOGUE_SESSION_TTL", 1800, log)) * time.Second,
		TracingMode: envutil.GetEnv("TRACING_MODE", "off", log),

		Domains: DefaultDomains,
	}

	if path := envutil.GetEnv("CATALOG_CONFIG_PATH", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Catalog config unreadable, keeping defaults", "path", path, "error", err)
			return cfg
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			log.Warn("Catalog config unparseable, keeping defaults", "path", path, "error", err)
			return cfg
		}
		if len(fc.Domains) > 0 {
			cfg.Domains = trimAll(fc.Domains)
		}
		if len(fc.CORSOrigins) > 0 {
			cfg.CORSOrigins = trimAll(fc.CORSOrigins)
		}
	}
	return cfg
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
