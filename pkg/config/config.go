package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings shared by the CLI and the web server.
// Values come from the process environment, then an optional .env file, then defaults.
type Config struct {
	ServerAddress string // RAYTRACER_ADDRESS

	S3AccessKey string // S3_ACCESS_KEY
	S3SecretKey string // S3_SECRET_KEY
	S3Endpoint  string // S3_ENDPOINT
	S3Region    string // S3_REGION
	S3Bucket    string // S3_BUCKET
	S3KeyPrefix string // S3_KEY_PREFIX
	CDNURL      string // CDN_URL

	RenderTimeout time.Duration // RENDER_TIMEOUT
	UploadTimeout time.Duration // UPLOAD_TIMEOUT
	MaxWidth      int           // RAYTRACER_MAX_WIDTH, upper bound for web requests
	MaxSamples    int           // RAYTRACER_MAX_SAMPLES, upper bound for web requests
}

// Defaults
const (
	DefaultServerAddress = ":8080"
	DefaultS3Region      = "us-east-1"
	DefaultS3KeyPrefix   = "renders"
	DefaultRenderTimeout = 60 * time.Second
	DefaultUploadTimeout = 10 * time.Second
	DefaultMaxWidth      = 1920
	DefaultMaxSamples    = 1000
)

// Load reads envFile (if it exists) into the environment and builds a Config.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		ServerAddress: getEnv("RAYTRACER_ADDRESS", DefaultServerAddress),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      getEnv("S3_REGION", DefaultS3Region),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3KeyPrefix:   getEnv("S3_KEY_PREFIX", DefaultS3KeyPrefix),
		CDNURL:        os.Getenv("CDN_URL"),
	}

	var err error
	if cfg.RenderTimeout, err = getEnvDuration("RENDER_TIMEOUT", DefaultRenderTimeout); err != nil {
		return nil, err
	}
	if cfg.UploadTimeout, err = getEnvDuration("UPLOAD_TIMEOUT", DefaultUploadTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxWidth, err = getEnvInt("RAYTRACER_MAX_WIDTH", DefaultMaxWidth); err != nil {
		return nil, err
	}
	if cfg.MaxSamples, err = getEnvInt("RAYTRACER_MAX_SAMPLES", DefaultMaxSamples); err != nil {
		return nil, err
	}

	return cfg, nil
}

// S3Enabled reports whether enough settings are present to upload renders
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// Helper to get environment variables with a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}
