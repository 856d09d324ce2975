// Package config provides configuration loading for the release-stamp application.
// Stamp settings come from environment variables. When slip lookup is enabled,
// ClickHouse configuration and pipeline configuration are loaded from the
// environment and HashiCorp Vault.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	ch "github.com/MyCarrier-DevOps/goLibMyCarrier/clickhouse"
	"github.com/MyCarrier-DevOps/goLibMyCarrier/slippy"
	"github.com/MyCarrier-DevOps/goLibMyCarrier/vault"
)

// Environment variable names.
const (
	// EnvLogLevel is the log level (debug, info, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"

	// EnvFormat is the default output format (json, yaml, ldflags, env).
	EnvFormat = "STAMP_FORMAT"

	// EnvLDFlagsPackage is the Go package path targeted by the ldflags format.
	EnvLDFlagsPackage = "STAMP_LDFLAGS_PACKAGE"

	// EnvSlipLookup enables the routing-slip correlation ID lookup when true.
	EnvSlipLookup = "STAMP_SLIP_LOOKUP"

	// EnvPipelineConfig is the path to the pipeline configuration JSON file.
	EnvPipelineConfig = "SLIPPY_PIPELINE_CONFIG"

	// EnvVaultPipelineConfigPath is the path in Vault KV where pipeline config is stored.
	// An optional "#key" suffix names the secret key holding the JSON document.
	EnvVaultPipelineConfigPath = "VAULT_PIPELINE_CONFIG_PATH"

	// EnvVaultPipelineConfigMount is the Vault KV mount point (defaults to "secret").
	EnvVaultPipelineConfigMount = "VAULT_PIPELINE_CONFIG_MOUNT"

	// EnvDatabase is the ClickHouse database holding routing slips.
	EnvDatabase = "STAMP_SLIP_DATABASE"
)

// Default values.
const (
	DefaultLogLevel           = "info"
	DefaultLogAppName         = "release-stamp"
	DefaultFormat             = "json"
	DefaultLDFlagsPackage     = "main"
	DefaultDatabase           = "ci"
	DefaultVaultPipelineMount = "secret"
	DefaultSecretKey          = "config"
)

// Configuration errors.
var (
	// ErrInvalidSlipLookup indicates STAMP_SLIP_LOOKUP is not a boolean.
	ErrInvalidSlipLookup = errors.New("STAMP_SLIP_LOOKUP must be a boolean")

	// ErrPipelineConfigRequired indicates pipeline config source is not available.
	ErrPipelineConfigRequired = errors.New(
		"pipeline configuration required: set VAULT_PIPELINE_CONFIG_PATH (with VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID) " +
			"or SLIPPY_PIPELINE_CONFIG for local file",
	)

	// ErrPipelineConfigNotFound indicates the pipeline config file does not exist.
	ErrPipelineConfigNotFound = errors.New("pipeline configuration file not found")

	// ErrPipelineConfigInvalid indicates the pipeline config is not valid JSON.
	ErrPipelineConfigInvalid = errors.New("pipeline configuration is not valid JSON")

	// ErrVaultClientFailed indicates failure to create or authenticate with Vault.
	ErrVaultClientFailed = errors.New("failed to create Vault client")

	// ErrVaultSecretNotFound indicates the secret was not found in Vault.
	ErrVaultSecretNotFound = errors.New("pipeline configuration not found in Vault")
)

// VaultClient defines the interface for Vault operations.
// This interface allows for dependency injection and testing.
type VaultClient interface {
	// GetKVSecret retrieves a secret from Vault's KV v2 secrets engine.
	GetKVSecret(ctx context.Context, path, mount string) (map[string]interface{}, error)
}

// VaultClientFactory creates a VaultClient using AppRole authentication.
type VaultClientFactory func(ctx context.Context) (VaultClient, error)

// DefaultVaultClientFactory creates a VaultClient using goLibMyCarrier/vault with AppRole auth.
func DefaultVaultClientFactory(ctx context.Context) (VaultClient, error) {
	// Uses: VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID
	vaultConfig, err := vault.VaultLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	client, err := vault.CreateVaultClient(ctx, vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	return client, nil
}

// Config holds the stamp settings.
type Config struct {
	// LogLevel is the logging level (debug, info, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string

	// Format is the default output format.
	Format string

	// LDFlagsPackage is the Go package path targeted by the ldflags format.
	LDFlagsPackage string

	// SlipLookup enables the routing-slip correlation ID lookup.
	SlipLookup bool
}

// SlipStoreConfig holds the configuration needed to query the slip store.
type SlipStoreConfig struct {
	// ClickHouse holds the ClickHouse connection configuration.
	ClickHouse *ch.ClickhouseConfig

	// PipelineConfig holds the pipeline step definitions.
	PipelineConfig *slippy.PipelineConfig

	// Database is the ClickHouse database name for slip storage.
	Database string
}

// Load loads the stamp settings from environment variables, applying defaults.
func Load() (*Config, error) {
	slipLookup := false
	if raw := os.Getenv(EnvSlipLookup); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlipLookup, raw)
		}
		slipLookup = v
	}

	return &Config{
		LogLevel:       getenvDefault(EnvLogLevel, DefaultLogLevel),
		LogAppName:     getenvDefault(EnvLogAppName, DefaultLogAppName),
		Format:         getenvDefault(EnvFormat, DefaultFormat),
		LDFlagsPackage: getenvDefault(EnvLDFlagsPackage, DefaultLDFlagsPackage),
		SlipLookup:     slipLookup,
	}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadSlipStore loads the ClickHouse and pipeline configuration.
// Pipeline configuration is loaded from Vault (preferred) or local file (fallback).
//
// For Vault loading, requires:
//   - VAULT_ADDRESS: Vault server address
//   - VAULT_ROLE_ID: AppRole role ID
//   - VAULT_SECRET_ID: AppRole secret ID
//   - VAULT_PIPELINE_CONFIG_PATH: Path to the secret in Vault
//   - VAULT_PIPELINE_CONFIG_MOUNT: KV mount point (optional, defaults to "secret")
//
// For file loading (fallback):
//   - SLIPPY_PIPELINE_CONFIG: Path to local JSON file
//
// If vaultClientFactory is nil, DefaultVaultClientFactory is used.
func LoadSlipStore(ctx context.Context, vaultClientFactory VaultClientFactory) (*SlipStoreConfig, error) {
	chConfig, err := ch.ClickhouseLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load ClickHouse config: %w", err)
	}

	pipelineConfig, err := loadPipelineConfigWithVault(ctx, vaultClientFactory)
	if err != nil {
		return nil, err
	}

	return &SlipStoreConfig{
		ClickHouse:     chConfig,
		PipelineConfig: pipelineConfig,
		Database:       getenvDefault(EnvDatabase, DefaultDatabase),
	}, nil
}

// loadPipelineConfigWithVault attempts to load pipeline config from Vault first,
// falling back to local file if Vault is not configured.
func loadPipelineConfigWithVault(
	ctx context.Context,
	vaultClientFactory VaultClientFactory,
) (*slippy.PipelineConfig, error) {
	if vaultPath := os.Getenv(EnvVaultPipelineConfigPath); vaultPath != "" {
		return loadPipelineConfigFromVault(ctx, vaultClientFactory, vaultPath)
	}

	pipelineConfigPath := os.Getenv(EnvPipelineConfig)
	if pipelineConfigPath == "" {
		return nil, ErrPipelineConfigRequired
	}

	return loadPipelineConfigFromFile(pipelineConfigPath)
}

// loadPipelineConfigFromVault loads pipeline configuration from Vault KV v2.
func loadPipelineConfigFromVault(
	ctx context.Context,
	vaultClientFactory VaultClientFactory,
	fullPath string,
) (*slippy.PipelineConfig, error) {
	path, key := parseVaultPath(fullPath)

	if vaultClientFactory == nil {
		vaultClientFactory = DefaultVaultClientFactory
	}

	client, err := vaultClientFactory(ctx)
	if err != nil {
		return nil, err
	}

	mount := getenvDefault(EnvVaultPipelineConfigMount, DefaultVaultPipelineMount)

	secretData, err := client.GetKVSecret(ctx, path, mount)
	if err != nil {
		return nil, fmt.Errorf("%w at path %s: %w", ErrVaultSecretNotFound, path, err)
	}

	return parsePipelineConfigFromVault(secretData, key)
}

// parseVaultPath splits "path#key" at the last '#'. Without a '#' the key
// defaults to DefaultSecretKey.
func parseVaultPath(fullPath string) (string, string) {
	idx := strings.LastIndex(fullPath, "#")
	if idx < 0 {
		return fullPath, DefaultSecretKey
	}
	return fullPath[:idx], fullPath[idx+1:]
}

// parsePipelineConfigFromVault parses pipeline config from Vault secret data.
// The secret either holds a JSON string under key or the config fields directly.
func parsePipelineConfigFromVault(secretData map[string]interface{}, key string) (*slippy.PipelineConfig, error) {
	var data []byte
	if configStr, ok := secretData[key].(string); ok {
		data = []byte(configStr)
	} else {
		jsonData, err := json.Marshal(secretData)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal secret data: %w", ErrPipelineConfigInvalid, err)
		}
		data = jsonData
	}

	var config slippy.PipelineConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineConfigInvalid, err)
	}
	return &config, nil
}

// loadPipelineConfigFromFile loads the pipeline configuration from the specified file path.
func loadPipelineConfigFromFile(path string) (*slippy.PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPipelineConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}

	var config slippy.PipelineConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineConfigInvalid, err)
	}

	return &config, nil
}
