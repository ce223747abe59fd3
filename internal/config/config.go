// Package config resolves upload settings from the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

var (
	// ErrMissingBucket indicates AWS_BUCKET_NAME is not set.
	ErrMissingBucket = errors.New("config: AWS_BUCKET_NAME is required")
	// ErrPartialCredentials indicates only one half of the static key pair is set.
	ErrPartialCredentials = errors.New("config: AWS_ACCESS_KEY_ID and AWS_SECRET_KEY must be set together")
)

const (
	// DefaultLocalURL is the LocalStack S3 endpoint.
	DefaultLocalURL = "http://localhost:4572"
	DefaultRegion   = "us-east-1"

	productionEnv = "production"
)

// Endpoint selects where S3 requests go. It is either LocalEndpoint or DefaultEndpoint.
type Endpoint interface {
	isEndpoint()
}

// LocalEndpoint targets an emulator at URL using path-style addressing.
type LocalEndpoint struct {
	URL string
}

// DefaultEndpoint lets the SDK resolve the provider endpoint for the region.
type DefaultEndpoint struct{}

func (LocalEndpoint) isEndpoint()   {}
func (DefaultEndpoint) isEndpoint() {}

// Config holds everything the upload path needs. Build it once with Load.
type Config struct {
	AccessKeyID string
	SecretKey   string
	Bucket      string
	Region      string
	// Env is the raw APP_ENV value.
	Env      string
	Endpoint Endpoint

	LogLevel    string
	MetricsAddr string
}

// Load reads a .env file when present, then the environment.
// Values already in the environment take precedence over the file.
func Load() (Config, error) {
	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		AccessKeyID: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:   os.Getenv("AWS_SECRET_KEY"),
		Bucket:      os.Getenv("AWS_BUCKET_NAME"),
		Region:      getEnv("AWS_REGION", DefaultRegion),
		Env:         os.Getenv("APP_ENV"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}
	cfg.Endpoint = resolveEndpoint(cfg.Env, getEnv("LOCAL_S3_ENDPOINT", DefaultLocalURL))

	if cfg.Bucket == "" {
		return Config{}, ErrMissingBucket
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretKey == "") {
		return Config{}, ErrPartialCredentials
	}
	return cfg, nil
}

// resolveEndpoint picks the emulator for any explicit env other than exactly
// "production". An unset env counts as production.
func resolveEndpoint(env, localURL string) Endpoint {
	if env == "" || env == productionEnv {
		return DefaultEndpoint{}
	}
	return LocalEndpoint{URL: localURL}
}

// IsProduction reports whether requests go to the provider endpoint.
func (c Config) IsProduction() bool {
	_, ok := c.Endpoint.(DefaultEndpoint)
	return ok
}

// HasStaticCredentials reports whether a key pair was supplied.
// Without one the SDK default credential chain applies.
func (c Config) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretKey != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
