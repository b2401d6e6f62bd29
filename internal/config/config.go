package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. NESTEGG_AUTH_JWT_SECRET.
const EnvPrefix = "NESTEGG"

// Viper keys.
const (
	KeyLogLevel    = "logging.level"
	KeyLogFormat   = "logging.format"
	KeyDatabase    = "database.path"
	KeyServerAddr  = "server.addr"
	KeyJWTSecret   = "auth.jwt_secret"
	KeySessionTTL  = "auth.session_ttl"
	KeyTrials      = "projection.trials"
	KeyVolatility  = "projection.volatility"
	KeyWorkers     = "projection.workers"
	defaultDBPath  = "~/.config/nestegg/nestegg.db"
	defaultAddr    = "127.0.0.1:8080"
	defaultTTL     = 24 * time.Hour
	defaultTrials  = 1000
	defaultVol     = 0.05
	maxVol         = 1.0
	minSecretBytes = 16
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	ServerAddr   string
	JWTSecret    string
	SessionTTL   time.Duration
	Volatility   float64
	Trials       int
	Workers      int
}

// SetDefaults registers defaults and environment handling on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDatabase, defaultDBPath)
	v.SetDefault(KeyServerAddr, defaultAddr)
	v.SetDefault(KeySessionTTL, defaultTTL)
	v.SetDefault(KeyTrials, defaultTrials)
	v.SetDefault(KeyVolatility, defaultVol)
	v.SetDefault(KeyWorkers, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration out of v and checks it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabase)),
		ServerAddr:   v.GetString(KeyServerAddr),
		JWTSecret:    v.GetString(KeyJWTSecret),
		SessionTTL:   v.GetDuration(KeySessionTTL),
		Trials:       v.GetInt(KeyTrials),
		Volatility:   v.GetFloat64(KeyVolatility),
		Workers:      v.GetInt(KeyWorkers),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabase)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeySessionTTL)
	}
	if cfg.Trials < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyTrials)
	}
	if cfg.Volatility < 0 || cfg.Volatility > maxVol || math.IsNaN(cfg.Volatility) {
		return nil, fmt.Errorf("%w: %s must be between 0 and %g", common.ErrInvalidConfig, KeyVolatility, maxVol)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyWorkers)
	}
	return cfg, nil
}

// RequireSecret returns the JWT signing secret or an error when it is unset or too short.
func (c *Config) RequireSecret() ([]byte, error) {
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("%w: set %s or %s_AUTH_JWT_SECRET", common.ErrMissingConfig, KeyJWTSecret, EnvPrefix)
	}
	if len(c.JWTSecret) < minSecretBytes {
		return nil, fmt.Errorf("%w: %s must be at least %d bytes", common.ErrInvalidConfig, KeyJWTSecret, minSecretBytes)
	}
	return []byte(c.JWTSecret), nil
}
