// Package config assembles the service configuration from defaults,
// an optional JSON file, environment variables and command-line flags,
// in that order of increasing priority.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	BasePath            string        `env:"BASE_PATH" validate:"basepath"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gt=0"`
	PasswordHashCost    int           `env:"PASSWORD_HASH_COST" validate:"min=4,max=31"`
	AllowGetDelete      bool          `env:"ALLOW_GET_DELETE"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	ConfigFile          string        `env:"CONFIG"`
}

// fileConfig mirrors Config for the JSON file. Pointers tell "absent" from "zero".
type fileConfig struct {
	RunAddr             *string  `json:"server_address"`
	LogLevel            *string  `json:"log_level"`
	BasePath            *string  `json:"base_path"`
	DBFileName          *string  `json:"file_storage_path"`
	DatabaseDSN         *string  `json:"database_dsn"`
	DBConnectionTimeout *string  `json:"db_connection_timeout"`
	PasswordHashCost    *int     `json:"password_hash_cost"`
	AllowGetDelete      *bool    `json:"allow_get_delete"`
	CORSAllowedOrigins  []string `json:"cors_allowed_origins"`
	ShutdownTimeout     *string  `json:"shutdown_timeout"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	BasePath:            "/users",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	PasswordHashCost:    10,
	AllowGetDelete:      true,
	ShutdownTimeout:     10 * time.Second,
}

var allowedLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
	"fatal":   true,
}

type initOptions struct {
	disableFlagsParsing bool
}

// InitOption tunes how New gathers configuration.
type InitOption func(*initOptions)

// WithDisableFlagsParsing skips command-line flags. Useful in tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return allowedLogLevels[fieldLevel.Field().String()]
}

func validateBasePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if !strings.HasPrefix(path, "/") {
		return false
	}

	return path == "/" || !strings.HasSuffix(path, "/")
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("basepath", validateBasePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
	values.CORSAllowedOrigins = append([]string(nil), defaults.CORSAllowedOrigins...)
}

func (c *Config) applyFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/applyFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromFile fileConfig
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("in internal/config/config.go/applyFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	if fromFile.RunAddr != nil {
		c.RunAddr = *fromFile.RunAddr
	}
	if fromFile.LogLevel != nil {
		c.LogLevel = *fromFile.LogLevel
	}
	if fromFile.BasePath != nil {
		c.BasePath = *fromFile.BasePath
	}
	if fromFile.DBFileName != nil {
		c.DBFileName = *fromFile.DBFileName
	}
	if fromFile.DatabaseDSN != nil {
		c.DatabaseDSN = *fromFile.DatabaseDSN
	}
	if fromFile.PasswordHashCost != nil {
		c.PasswordHashCost = *fromFile.PasswordHashCost
	}
	if fromFile.AllowGetDelete != nil {
		c.AllowGetDelete = *fromFile.AllowGetDelete
	}
	if fromFile.CORSAllowedOrigins != nil {
		c.CORSAllowedOrigins = fromFile.CORSAllowedOrigins
	}

	durations := []struct {
		raw    *string
		target *time.Duration
	}{
		{fromFile.DBConnectionTimeout, &c.DBConnectionTimeout},
		{fromFile.ShutdownTimeout, &c.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("in internal/config/config.go/applyFile(): error while `time.ParseDuration()` calling: %w", err)
		}
		*d.target = parsed
	}

	return nil
}

// parseFlags reads command-line flags into a fresh Config and returns the
// names of the flags actually given.
func parseFlags(args []string) (Config, map[string]bool, error) {
	var fromFlags Config
	applyDefaults(&fromFlags, defaultConfig)

	flagSet := flag.NewFlagSet("usersweb", flag.ContinueOnError)
	flagSet.StringVar(&fromFlags.RunAddr, "a", fromFlags.RunAddr, "address and port to run server")
	flagSet.StringVar(&fromFlags.LogLevel, "l", fromFlags.LogLevel, "logger level")
	flagSet.StringVar(&fromFlags.BasePath, "p", fromFlags.BasePath, "base path the users page is mounted on")
	flagSet.StringVar(&fromFlags.DBFileName, "f", fromFlags.DBFileName, "JSON file name with database")
	flagSet.StringVar(&fromFlags.DatabaseDSN, "d", fromFlags.DatabaseDSN, "A string with the database connection details")
	flagSet.StringVar(&fromFlags.ConfigFile, "c", fromFlags.ConfigFile, "JSON configuration file")
	flagSet.BoolVar(&fromFlags.AllowGetDelete, "allow-get-delete", fromFlags.AllowGetDelete, "keep GET /delete/{id} registered")
	flagSet.IntVar(&fromFlags.PasswordHashCost, "hash-cost", fromFlags.PasswordHashCost, "bcrypt cost for new passwords")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, nil, err
	}

	visited := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	return fromFlags, visited, nil
}

func (c *Config) applyFlags(fromFlags Config, visited map[string]bool) {
	if visited["a"] {
		c.RunAddr = fromFlags.RunAddr
	}
	if visited["l"] {
		c.LogLevel = fromFlags.LogLevel
	}
	if visited["p"] {
		c.BasePath = fromFlags.BasePath
	}
	if visited["f"] {
		c.DBFileName = fromFlags.DBFileName
	}
	if visited["d"] {
		c.DatabaseDSN = fromFlags.DatabaseDSN
	}
	if visited["c"] {
		c.ConfigFile = fromFlags.ConfigFile
	}
	if visited["allow-get-delete"] {
		c.AllowGetDelete = fromFlags.AllowGetDelete
	}
	if visited["hash-cost"] {
		c.PasswordHashCost = fromFlags.PasswordHashCost
	}
}

// New builds a validated Config. Priority: flags > env > JSON file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `godotenv.Load()` calling: %w", err)
	}

	var (
		fromFlags Config
		visited   = map[string]bool{}
	)
	if !options.disableFlagsParsing {
		fromFlags, visited, err = parseFlags(os.Args[1:])
		if err != nil {
			return nil, err
		}
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := os.Getenv("CONFIG")
	if visited["c"] {
		configFile = fromFlags.ConfigFile
	}
	if configFile != "" {
		if err := values.applyFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(values); err != nil {
		return nil, err
	}

	values.applyFlags(fromFlags, visited)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
