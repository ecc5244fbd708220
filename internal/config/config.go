// Package config provides Viper-based configuration loading for the battle server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds gRPC listener settings.
type ServerConfig struct {
	GRPCHost string `mapstructure:"grpc_host"`
	GRPCPort int    `mapstructure:"grpc_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.GRPCHost, s.GRPCPort)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds battle rules that vary per deployment.
type BattleConfig struct {
	// TurnTimeout is how long a side may take before forfeiting.
	TurnTimeout time.Duration `mapstructure:"turn_timeout"`
	// BaseHP is every character's starting hit points.
	BaseHP int `mapstructure:"base_hp"`
	// RosterSize is the exact roster length required to start a battle; 0 accepts any non-empty roster.
	RosterSize int `mapstructure:"roster_size"`
}

// ContentConfig locates static game content.
type ContentConfig struct {
	CardsDir      string `mapstructure:"cards_dir"`
	LocaleDir     string `mapstructure:"locale_dir"`
	DefaultLocale string `mapstructure:"default_locale"`
}

// AIConfig configures automated opponents.
type AIConfig struct {
	// Policy names the registered decision policy used for PvE opponents.
	Policy string `mapstructure:"policy"`
	// ScriptDir holds Lua policy scripts; each file registers a policy named after its stem.
	ScriptDir        string `mapstructure:"script_dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
	// Model and APIKey enable the "llm" policy when APIKey is set.
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// Deck is the AI opponent's roster, by card name.
	Deck []string `mapstructure:"deck"`
}

// StorageConfig selects where player rosters are read from.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend string `mapstructure:"backend"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Content  ContentConfig  `mapstructure:"content"`
	AI       AIConfig       `mapstructure:"ai"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAI(c.AI, c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.GRPCHost == "" {
		errs = append(errs, "server.grpc_host must not be empty")
	}
	if s.GRPCPort < 1 || s.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("server.grpc_port must be 1-65535, got %d", s.GRPCPort))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.TurnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("battle.turn_timeout must be positive, got %s", b.TurnTimeout))
	}
	if b.BaseHP < 1 {
		errs = append(errs, fmt.Sprintf("battle.base_hp must be >= 1, got %d", b.BaseHP))
	}
	if b.RosterSize < 0 {
		errs = append(errs, fmt.Sprintf("battle.roster_size must be >= 0, got %d", b.RosterSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.CardsDir == "" {
		return errors.New("content.cards_dir must not be empty")
	}
	return nil
}

func validateAI(a AIConfig, b BattleConfig) error {
	var errs []string
	if a.Policy == "" {
		errs = append(errs, "ai.policy must not be empty")
	}
	if a.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("ai.instruction_limit must be >= 0, got %d", a.InstructionLimit))
	}
	if a.RequestTimeout < 0 {
		errs = append(errs, "ai.request_timeout must not be negative")
	}
	if len(a.Deck) == 0 {
		errs = append(errs, "ai.deck must not be empty")
	}
	if b.RosterSize > 0 && len(a.Deck) > 0 && len(a.Deck) != b.RosterSize {
		errs = append(errs, fmt.Sprintf("ai.deck must have battle.roster_size (%d) cards, got %d", b.RosterSize, len(a.Deck)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	validBackends := map[string]bool{"memory": true, "postgres": true}
	if !validBackends[s.Backend] {
		return fmt.Errorf("storage.backend must be one of [memory, postgres], got %q", s.Backend)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with TCG_ prefix
	v.SetEnvPrefix("TCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance carrying only the defaults. Callers may
// layer values on top before LoadFromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_host", "127.0.0.1")
	v.SetDefault("server.grpc_port", 50051)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cardbattle")
	v.SetDefault("database.password", "cardbattle")
	v.SetDefault("database.name", "cardbattle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.turn_timeout", "30s")
	v.SetDefault("battle.base_hp", 10)
	v.SetDefault("battle.roster_size", 4)

	v.SetDefault("content.cards_dir", "content/cards")
	v.SetDefault("content.locale_dir", "content/l10n")
	v.SetDefault("content.default_locale", "en_US")

	v.SetDefault("ai.policy", "random")
	v.SetDefault("ai.script_dir", "content/ai")
	v.SetDefault("ai.instruction_limit", 100000)
	v.SetDefault("ai.model", "claude-sonnet-4-5")
	v.SetDefault("ai.request_timeout", "5s")
	v.SetDefault("ai.deck", []string{"Freminet", "Wriothesley", "Kaedehara Kazuha", "Lycaon"})

	v.SetDefault("storage.backend", "memory")
}
