/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/suparena/entityodm/errors"
	"gopkg.in/yaml.v3"
)

// Supported backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendMongoDB  = "mongodb"
)

// Config is the configuration of an entityodm client.
type Config struct {
	Backend  string         `yaml:"backend"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	MongoDB  MongoDBConfig  `yaml:"mongodb"`
	Log      LogConfig      `yaml:"log"`
}

// DynamoDBConfig configures the DynamoDB backend.
type DynamoDBConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Table     string `yaml:"table"`
	Endpoint  string `yaml:"endpoint"`
}

// MongoDBConfig configures the MongoDB backend.
type MongoDBConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Backend: BackendMemory,
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// envOverrides maps environment variables to the fields they override.
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"ENTITYODM_BACKEND", func(c *Config) *string { return &c.Backend }},
	{"AWS_ACCESS_KEY", func(c *Config) *string { return &c.DynamoDB.AccessKey }},
	{"AWS_SECRET_KEY", func(c *Config) *string { return &c.DynamoDB.SecretKey }},
	{"AWS_REGION", func(c *Config) *string { return &c.DynamoDB.Region }},
	{"AWS_DDB_TABLE", func(c *Config) *string { return &c.DynamoDB.Table }},
	{"AWS_DDB_ENDPOINT", func(c *Config) *string { return &c.DynamoDB.Endpoint }},
	{"MONGODB_URI", func(c *Config) *string { return &c.MongoDB.URI }},
	{"MONGODB_DATABASE", func(c *Config) *string { return &c.MongoDB.Database }},
	{"ENTITYODM_LOG_LEVEL", func(c *Config) *string { return &c.Log.Level }},
}

// Load reads the configuration. A .env file in the working directory is
// loaded into the environment when present, then the YAML file at path (if
// path is not empty), then environment overrides are applied.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with the environment variables lookup finds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, o := range envOverrides {
		if v, ok := lookup(o.name); ok && v != "" {
			*o.field(c) = v
		}
	}
}

// Validate checks that the selected backend is fully configured.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return errors.NewValidationError("dynamodb.region", "is required")
		}
		if c.DynamoDB.Table == "" {
			return errors.NewValidationError("dynamodb.table", "is required")
		}
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.NewValidationError("mongodb.uri", "is required")
		}
		if c.MongoDB.Database == "" {
			return errors.NewValidationError("mongodb.database", "is required")
		}
	default:
		return errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		return errors.NewValidationError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}
