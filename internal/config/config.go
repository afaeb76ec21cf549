package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceEnvironment           string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	ServiceAPIPort               string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Timezone                     string `envconfig:"TIMEZONE" default:"Europe/Berlin"`
	SourceDataDir                string `envconfig:"SOURCE_DATA_DIR" default:"data/sources"`
	AdCoercionMode               string `envconfig:"AD_COERCION_MODE" default:"strict"`
	AttributionSnapshotPath      string `envconfig:"ATTRIBUTION_SNAPSHOT_PATH" default:"data/attribution.db"`
	AttributionRefreshTimeoutSec int    `envconfig:"ATTRIBUTION_REFRESH_TIMEOUT_SEC" default:"30"`
	ResultCacheSize              int    `envconfig:"RESULT_CACHE_SIZE" default:"128"`
	ResultCacheTTLSec            int    `envconfig:"RESULT_CACHE_TTL_SEC" default:"3600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
