// Package config loads the orchestrator's configuration: registry
// overrides, Status Board paths, timeouts, and optional cloud mirroring.
// It follows the same load-from-viper-then-apply-defaults shape the
// teacher uses for its session config.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/andywolf/stigmergy/internal/registry"
)

// BoardConfig controls where the Status Board and its lock file live.
type BoardConfig struct {
	Path           string `mapstructure:"path"`            // default: .stigmergy/status/board.md
	LockTimeoutSec int    `mapstructure:"lock_timeout_sec"` // default: 5
}

// ExecutionConfig controls Process Supervisor defaults.
type ExecutionConfig struct {
	// TimeoutSec is the per-invocation deadline in seconds. 0 means
	// "unset" and is replaced by the 120s default in applyDefaults. An
	// operator who wants a genuinely unbounded invocation (cancellation
	// only, no deadline) must set this to -1: viper can't tell an
	// explicit 0 apart from an absent key, so 0 itself can never mean
	// unbounded once defaults are applied.
	TimeoutSec       int `mapstructure:"timeout_sec"`        // default: 120, -1 = unbounded
	PromptDebounceMs int `mapstructure:"prompt_debounce_ms"` // default: 200
	ParallelismLimit int `mapstructure:"parallelism_limit"`  // default: 3
}

// RecoveryConfig controls Recovery Coordinator retry/fallback policy.
type RecoveryConfig struct {
	MaxRetries     int  `mapstructure:"max_retries"`     // default: 2
	EnableFallback bool `mapstructure:"enable_fallback"` // default: true
}

// CloudLogConfig enables mirroring orchestrator activity to GCP Cloud
// Logging, alongside the always-on local logger.
type CloudLogConfig struct {
	ProjectID string `mapstructure:"project_id"`
	LogID     string `mapstructure:"log_id"`
}

// ExecutionLogConfig controls the append-only JSON-lines execution log.
type ExecutionLogConfig struct {
	Path string `mapstructure:"path"` // default: .stigmergy/status/execution.log
}

// Config is the full stigmergy configuration, loaded from
// .stigmergy.yaml, STIGMERGY_* environment variables, and CLI flags, in
// that order of increasing precedence.
type Config struct {
	Board     BoardConfig                  `mapstructure:"board"`
	Execution ExecutionConfig              `mapstructure:"execution"`
	Recovery  RecoveryConfig               `mapstructure:"recovery"`
	CloudLog  CloudLogConfig               `mapstructure:"cloud_log"`
	ExecLog   ExecutionLogConfig           `mapstructure:"execution_log"`
	Registry  map[string]registry.Override `mapstructure:"registry"`
	Verbose   bool                         `mapstructure:"verbose"`
	Debug     bool                         `mapstructure:"debug"`
}

// Load reads configuration from whatever viper has already bound (config
// file, env vars, flags via BindPFlag) and applies defaults for anything
// left unset.
func Load() (*Config, error) {
	viper.SetDefault("recovery.enable_fallback", true)

	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Board.Path == "" {
		cfg.Board.Path = ".stigmergy/status/PROJECT_STATUS.md"
	}
	if cfg.Board.LockTimeoutSec == 0 {
		cfg.Board.LockTimeoutSec = 5
	}

	if cfg.Execution.TimeoutSec == 0 {
		cfg.Execution.TimeoutSec = 120
	}
	if cfg.Execution.PromptDebounceMs == 0 {
		cfg.Execution.PromptDebounceMs = 200
	}
	if cfg.Execution.ParallelismLimit == 0 {
		cfg.Execution.ParallelismLimit = 3
	}

	if cfg.Recovery.MaxRetries == 0 {
		cfg.Recovery.MaxRetries = 2
	}

	if cfg.ExecLog.Path == "" {
		cfg.ExecLog.Path = ".stigmergy/status/execution.log"
	}
}

// ExecutionTimeout returns the configured CLI invocation timeout, or zero
// (unbounded, Supervisor.Run stops only on context cancellation) when
// TimeoutSec is set to the -1 sentinel.
func (c *Config) ExecutionTimeout() time.Duration {
	if c.Execution.TimeoutSec < 0 {
		return 0
	}
	return time.Duration(c.Execution.TimeoutSec) * time.Second
}

// Validate checks the configuration for internal consistency before it is
// used to build the registry, board, and orchestrator.
func (c *Config) Validate() error {
	if c.Execution.TimeoutSec < -1 {
		return fmt.Errorf("execution.timeout_sec must be -1 (unbounded) or non-negative")
	}
	if c.Execution.ParallelismLimit < 1 {
		return fmt.Errorf("execution.parallelism_limit must be at least 1")
	}
	if c.Recovery.MaxRetries < 0 {
		return fmt.Errorf("recovery.max_retries must not be negative")
	}
	if c.Board.LockTimeoutSec < 1 {
		return fmt.Errorf("board.lock_timeout_sec must be at least 1")
	}
	return nil
}
