package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config points the suites at a running server. Suites are skipped when
// E2E_SERVER_URL is empty.
type Config struct {
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	GRPCAddr  string `envconfig:"E2E_GRPC_ADDR" default:"localhost:5001"`
	// E2E_DEBUG_JSON dumps gRPC responses as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized step headers
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
