package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/warden/internal/roles"
)

// MatchExactTag is the only supported match_policy: the claimed identity must
// equal a member's full tag exactly.
const MatchExactTag = "exact_tag"

// configFiles are tried in order inside the base directory; the first one present wins.
var configFiles = []string{"config.json", "config.yaml", "config.yml"}

// Config holds application configuration.
type Config struct {
	// GuildID is the community the bot moderates. Events from other guilds are ignored.
	GuildID string `json:"guild_id" yaml:"guild_id"`

	// UpstreamAuthorID is the webhook identity whose messages are treated as submissions.
	UpstreamAuthorID string `json:"upstream_author_id" yaml:"upstream_author_id"`

	// Roles binds each role kind to a platform role id.
	Roles roles.Bindings `json:"roles,omitempty" yaml:"roles,omitempty"`

	// SearchLimit bounds the member search used to resolve a claimed identity.
	SearchLimit int `json:"search_limit,omitempty" yaml:"search_limit,omitempty"`

	// MatchPolicy names how a claimed identity is resolved to a member.
	// Only "exact_tag" is supported.
	MatchPolicy string `json:"match_policy,omitempty" yaml:"match_policy,omitempty"`

	// ReviewChannelID is the channel review cards are posted in. Optional; it
	// locates cards of records migrated from the original table, which carry
	// no channel.
	ReviewChannelID string `json:"review_channel_id,omitempty" yaml:"review_channel_id,omitempty"`

	// RetryMaxAttempts bounds attempts for a directory call, including the first.
	RetryMaxAttempts int `json:"retry_max_attempts,omitempty" yaml:"retry_max_attempts,omitempty"`

	// RetryInitialMS is the first backoff delay in milliseconds.
	RetryInitialMS int `json:"retry_initial_ms,omitempty" yaml:"retry_initial_ms,omitempty"`

	// RetryMaxMS caps a single backoff delay in milliseconds.
	RetryMaxMS int `json:"retry_max_ms,omitempty" yaml:"retry_max_ms,omitempty"`

	// RetentionDays, when positive, makes the gateway runtime purge resolved
	// records older than this many days once an hour. 0 keeps everything.
	RetentionDays int `json:"retention_days,omitempty" yaml:"retention_days,omitempty"`

	// AdminAddr, when set, serves the read-only JSON admin API on this address
	// while the gateway runs, e.g. "127.0.0.1:8390".
	AdminAddr string `json:"admin_addr,omitempty" yaml:"admin_addr,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" yaml:"db_max_idle_conns,omitempty"`
}

// Env holds settings that come from the process environment.
type Env struct {
	Token   string `env:"DISCORD_TOKEN"`
	Home    string `env:"WARDEN_HOME"`
	LogMode string `env:"WARDEN_LOG_MODE" envDefault:"prod"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SearchLimit:      100,
		MatchPolicy:      MatchExactTag,
		RetryMaxAttempts: 4,
		RetryInitialMS:   250,
		RetryMaxMS:       4000,
	}
}

// LoadEnv reads environment settings.
func LoadEnv() (*Env, error) {
	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Load loads configuration from the first config file found in baseDir.
// Returns default config if none exists.
func Load(baseDir string) (*Config, error) {
	for _, name := range configFiles {
		path := filepath.Join(baseDir, name)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		}
	}
	return DefaultConfig(), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	switch filepath.Ext(configPath) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(configPath), err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; role bindings are merged per kind.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		GuildID:          firstString(overlay.GuildID, base.GuildID),
		UpstreamAuthorID: firstString(overlay.UpstreamAuthorID, base.UpstreamAuthorID),
		SearchLimit:      firstInt(overlay.SearchLimit, base.SearchLimit),
		MatchPolicy:      firstString(overlay.MatchPolicy, base.MatchPolicy),
		ReviewChannelID:  firstString(overlay.ReviewChannelID, base.ReviewChannelID),
		RetryMaxAttempts: firstInt(overlay.RetryMaxAttempts, base.RetryMaxAttempts),
		RetryInitialMS:   firstInt(overlay.RetryInitialMS, base.RetryInitialMS),
		RetryMaxMS:       firstInt(overlay.RetryMaxMS, base.RetryMaxMS),
		RetentionDays:    firstInt(overlay.RetentionDays, base.RetentionDays),
		AdminAddr:        firstString(overlay.AdminAddr, base.AdminAddr),
		DBMaxOpenConns:   firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:   firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	if len(base.Roles) > 0 || len(overlay.Roles) > 0 {
		result.Roles = make(roles.Bindings, len(base.Roles)+len(overlay.Roles))
		for k, v := range base.Roles {
			result.Roles[k] = v
		}
		for k, v := range overlay.Roles {
			if v != "" {
				result.Roles[k] = v
			}
		}
	}

	return result
}

// Validate checks the settings the gateway runtime cannot start without.
func (c *Config) Validate() error {
	if err := validateSnowflake("guild_id", c.GuildID); err != nil {
		return err
	}
	if err := validateSnowflake("upstream_author_id", c.UpstreamAuthorID); err != nil {
		return err
	}
	if err := c.Roles.Validate(); err != nil {
		return err
	}
	for kind, id := range c.Roles {
		if err := validateSnowflake("roles."+string(kind), id); err != nil {
			return err
		}
	}
	if c.ReviewChannelID != "" {
		if err := validateSnowflake("review_channel_id", c.ReviewChannelID); err != nil {
			return err
		}
	}
	if c.MatchPolicy != MatchExactTag {
		return fmt.Errorf("match_policy must be %q, got %q", MatchExactTag, c.MatchPolicy)
	}
	if c.SearchLimit < 1 || c.SearchLimit > 1000 {
		return fmt.Errorf("search_limit must be between 1 and 1000, got %d", c.SearchLimit)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got %d", c.RetentionDays)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry_max_attempts must be at least 1, got %d", c.RetryMaxAttempts)
	}
	return nil
}

// RetryInitial returns the first backoff delay.
func (c *Config) RetryInitial() time.Duration {
	return time.Duration(c.RetryInitialMS) * time.Millisecond
}

// RetryMax returns the backoff delay cap.
func (c *Config) RetryMax() time.Duration {
	return time.Duration(c.RetryMaxMS) * time.Millisecond
}

func validateSnowflake(key, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, err := strconv.ParseUint(v, 10, 64); err != nil {
		return fmt.Errorf("%s must be a numeric id, got %q", key, v)
	}
	return nil
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}
