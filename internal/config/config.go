// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	ProgramID         string `mapstructure:"program_id"`
	LedgerPath        string `mapstructure:"ledger_path"`
	WalletsFile       string `mapstructure:"wallets_file"`
	LogFile           string `mapstructure:"log_file"`
	Development       bool   `mapstructure:"development"`
	RetryMaxElapsedMs int    `mapstructure:"retry_max_elapsed_ms"`
	EventBufferSize   int    `mapstructure:"event_buffer_size"`
}

const (
	DefaultRetryMaxElapsedMs = 15000
	DefaultEventBufferSize   = 64
	DefaultLogFile           = "logs/launchpad.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"retry_max_elapsed_ms": DefaultRetryMaxElapsedMs,
		"event_buffer_size":    DefaultEventBufferSize,
		"log_file":             DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// Program returns the parsed program identity.
func (c *Config) Program() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(c.ProgramID)
}

func validateConfig(cfg *Config) error {
	if cfg.ProgramID == "" {
		return errors.New("missing program_id in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return errors.New("invalid program_id: not a base58 public key")
	}
	if cfg.RetryMaxElapsedMs <= 0 {
		return errors.New("invalid retry_max_elapsed_ms")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("invalid event_buffer_size")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envProgram := v.GetString("PROGRAM_ID")
	if envProgram != "" {
		cfg.ProgramID = envProgram
	}

	envLedger := v.GetString("LEDGER_PATH")
	if envLedger != "" {
		cfg.LedgerPath = strings.TrimSpace(envLedger)
	}
	return nil
}
