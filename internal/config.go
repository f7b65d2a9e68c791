package internal

import (
	"fmt"
	"time"
)

// Config is the server environment. Durations use Go syntax ("15s", "24h").
type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	HTTPPort          int           `env:"HTTP_PORT,default=5000"`
	GRPCPort          int           `env:"GRPC_PORT,default=5001"`
	DebugPort         int           `env:"DEBUG_PORT"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HealthInterval    time.Duration `env:"HEALTH_INTERVAL,default=10s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT,default=10s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	AdminName         string        `env:"ADMIN_NAME,default=Administrator"`
	AdminEmail        string        `env:"ADMIN_EMAIL"`
	AdminPassword     string        `env:"ADMIN_PASSWORD"`
}

const minSecretLength = 32

func (c Config) Validate() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes long", minSecretLength)
	}
	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("HTTP_PORT and GRPC_PORT must differ, both are %d", c.HTTPPort)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.AuthTokenDuration <= 0 || c.HealthInterval <= 0 {
		return fmt.Errorf("AUTH_TOKEN_DURATION and HEALTH_INTERVAL must be positive")
	}
	return nil
}

func (c Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

func (c Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
