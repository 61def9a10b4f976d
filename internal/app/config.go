package app

import (
	"strings"
	"time"

	"github.com/lnco/artifact-service/internal/platform/envutil"
	"github.com/lnco/artifact-service/internal/platform/logger"
)

type Config struct {
	Port         string
	JWTSecretKey string
	CORSOrigins  []string

	// DocstoreMode selects the document store backend: "firestore" or
	// "memory" (local development only; state is lost on restart).
	DocstoreMode string

	FetchTimeout      time.Duration
	FetchMaxRedirects int
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:              envutil.GetEnv("PORT", "8080", log),
		JWTSecretKey:      envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		DocstoreMode:      strings.ToLower(envutil.GetEnv("DOCSTORE_MODE", "firestore", log)),
		FetchTimeout:      time.Duration(envutil.GetEnvAsInt("MEDIA_FETCH_TIMEOUT_SECONDS", 10, log)) * time.Second,
		FetchMaxRedirects: envutil.GetEnvAsInt("MEDIA_FETCH_MAX_REDIRECTS", 5, log),
	}
	if origins := envutil.GetEnv("CORS_ORIGINS", "", log); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}
