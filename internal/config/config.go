package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvImageKitPrivateKey  = "IMAGEKIT_PRIVATE_KEY"
	EnvImageKitPublicKey   = "IMAGEKIT_PUBLIC_KEY"
	EnvImageKitURLEndpoint = "IMAGEKIT_URL_ENDPOINT"
)

type Config struct {
	Port                 string
	DatabasePath         string
	LogLevel             string
	ImageKitPrivateKey   string
	ImageKitPublicKey    string
	ImageKitURLEndpoint  string
	RequireAuthForUpload bool
	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	AWSAccessKey         string
	AWSSecretKey         string
	PosterBaseURL        string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DatabasePath:         getEnv("DATABASE_PATH", "./data"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ImageKitPrivateKey:   getEnv(EnvImageKitPrivateKey, ""),
		ImageKitPublicKey:    firstEnv(EnvImageKitPublicKey, "NEXT_PUBLIC_IMAGEKIT_PUBLIC_KEY"),
		ImageKitURLEndpoint:  firstEnv(EnvImageKitURLEndpoint, "NEXT_PUBLIC_URL_ENDPOINT"),
		RequireAuthForUpload: getEnvBool("REQUIRE_AUTH_FOR_UPLOAD", false),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Region:             getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		AWSAccessKey:         getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:         getEnv("AWS_SECRET_ACCESS_KEY", ""),
		PosterBaseURL:        getEnv("POSTER_BASE_URL", ""),
	}
}

// MissingImageKit lists the names of unset ImageKit variables. Values are never returned.
func (c *Config) MissingImageKit() []string {
	var missing []string
	if c.ImageKitPrivateKey == "" {
		missing = append(missing, EnvImageKitPrivateKey)
	}
	if c.ImageKitPublicKey == "" {
		missing = append(missing, EnvImageKitPublicKey)
	}
	if c.ImageKitURLEndpoint == "" {
		missing = append(missing, EnvImageKitURLEndpoint)
	}
	return missing
}

type Transformation struct {
	Height  int `yaml:"height" json:"height"`
	Width   int `yaml:"width" json:"width"`
	Quality int `yaml:"quality" json:"quality"`
}

// UploadPolicy constrains what the orchestrator accepts and how it talks to storage.
type UploadPolicy struct {
	MaxSizeBytes         int64          `yaml:"max_size_bytes"`
	AcceptedMimes        []string       `yaml:"accepted_mimes"`
	CredentialTTLSeconds int64          `yaml:"credential_ttl_seconds"`
	UploadEndpoint       string         `yaml:"upload_endpoint"`
	Folder               string         `yaml:"folder"`
	Transformation       Transformation `yaml:"transformation"`
}

type PosterOptions struct {
	OriginFolder  string   `yaml:"origin_folder"`
	ThumbFolder   string   `yaml:"thumb_folder"`
	Sizes         []string `yaml:"sizes"`
	DefaultSize   string   `yaml:"default_size"`
	Quality       int      `yaml:"quality"`
	ConvertTo     string   `yaml:"convert_to"`
	CacheDuration int      `yaml:"cache_duration"` // in seconds
}

type UploadConfig struct {
	Upload UploadPolicy  `yaml:"upload"`
	Poster PosterOptions `yaml:"poster"`
}

// LoadUploadConfig reads the YAML policy file. A missing file yields the defaults.
func LoadUploadConfig() (*UploadConfig, error) {
	configPath := getEnv("UPLOAD_CONFIG_PATH", "popreel.yaml")

	cfg := DefaultUploadConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read upload config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse upload config: %w", err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func DefaultUploadConfig() *UploadConfig {
	return &UploadConfig{
		Upload: UploadPolicy{
			MaxSizeBytes:         500 * 1024 * 1024,
			AcceptedMimes:        []string{"video/mp4", "video/quicktime", "video/x-msvideo", "video/webm", "video/x-matroska"},
			CredentialTTLSeconds: 30 * 60,
			UploadEndpoint:       "https://upload.imagekit.io/api/v1/files/upload",
			Folder:               "/videos/",
			Transformation:       Transformation{Height: 1920, Width: 1080, Quality: 80},
		},
		Poster: DefaultPosterOptions(),
	}
}

func DefaultPosterOptions() PosterOptions {
	return PosterOptions{
		OriginFolder:  "posters",
		ThumbFolder:   "posters/thumbs",
		Sizes:         []string{"360", "720"},
		DefaultSize:   "720",
		Quality:       85,
		ConvertTo:     "jpeg",
		CacheDuration: 86400,
	}
}

func (c *UploadConfig) applyDefaults() {
	def := DefaultUploadConfig()
	if c.Upload.MaxSizeBytes <= 0 {
		c.Upload.MaxSizeBytes = def.Upload.MaxSizeBytes
	}
	if len(c.Upload.AcceptedMimes) == 0 {
		c.Upload.AcceptedMimes = def.Upload.AcceptedMimes
	}
	// the CDN refuses tokens that live longer than an hour
	if c.Upload.CredentialTTLSeconds <= 0 || c.Upload.CredentialTTLSeconds > 3600 {
		c.Upload.CredentialTTLSeconds = def.Upload.CredentialTTLSeconds
	}
	if c.Upload.UploadEndpoint == "" {
		c.Upload.UploadEndpoint = def.Upload.UploadEndpoint
	}
	if c.Upload.Folder == "" {
		c.Upload.Folder = def.Upload.Folder
	}
	if c.Upload.Transformation == (Transformation{}) {
		c.Upload.Transformation = def.Upload.Transformation
	}
	if c.Poster.OriginFolder == "" {
		c.Poster.OriginFolder = def.Poster.OriginFolder
	}
	if c.Poster.ThumbFolder == "" {
		c.Poster.ThumbFolder = def.Poster.ThumbFolder
	}
	if len(c.Poster.Sizes) == 0 {
		c.Poster.Sizes = def.Poster.Sizes
	}
	if c.Poster.DefaultSize == "" {
		c.Poster.DefaultSize = c.Poster.Sizes[len(c.Poster.Sizes)-1]
	}
	if c.Poster.Quality == 0 {
		c.Poster.Quality = def.Poster.Quality
	}
	if c.Poster.ConvertTo == "" {
		c.Poster.ConvertTo = def.Poster.ConvertTo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
