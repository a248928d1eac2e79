package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full set of runtime tunables. Values come from config.yml
// when present, environment variables otherwise (DATABASE_HOST maps to
// database.host and so on). Nothing here is hardcoded near the code that
// uses it — the auto-log threshold in particular is a dial, not a constant.
type Config struct {
	Port     string
	LogLevel string

	JWTSecret string

	Database struct {
		Host     string
		User     string
		Password string
		Name     string
		Port     string
	}

	Gemini struct {
		APIKey      string
		Model       string
		VisionModel string
	}

	Vision struct {
		Provider string // gemini | rekognition
	}

	AWSRegion string

	Estimator struct {
		AutoLogThreshold int
		UpstreamTimeout  time.Duration
		MaxImageDim      int
		JPEGQuality      int
	}
}

func Load() (*Config, error) {
	// .env is a development convenience; absent in real deployments.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("vision.provider", "gemini")
	viper.SetDefault("aws.region", "us-east-1")
	viper.SetDefault("estimator.auto_log_threshold", 60)
	viper.SetDefault("estimator.upstream_timeout_seconds", 30)
	viper.SetDefault("estimator.max_image_dim", 1024)
	viper.SetDefault("estimator.jpeg_quality", 80)

	var cfg Config
	cfg.Port = viper.GetString("port")
	cfg.LogLevel = viper.GetString("log.level")
	cfg.JWTSecret = viper.GetString("jwt.secret")
	cfg.Database.Host = viper.GetString("database.host")
	cfg.Database.User = viper.GetString("database.user")
	cfg.Database.Password = viper.GetString("database.password")
	cfg.Database.Name = viper.GetString("database.name")
	cfg.Database.Port = viper.GetString("database.port")
	cfg.Gemini.APIKey = viper.GetString("gemini.api_key")
	cfg.Gemini.Model = viper.GetString("gemini.model")
	cfg.Gemini.VisionModel = viper.GetString("gemini.vision_model")
	cfg.Vision.Provider = viper.GetString("vision.provider")
	cfg.AWSRegion = viper.GetString("aws.region")
	cfg.Estimator.AutoLogThreshold = viper.GetInt("estimator.auto_log_threshold")
	cfg.Estimator.UpstreamTimeout = time.Duration(viper.GetInt("estimator.upstream_timeout_seconds")) * time.Second
	cfg.Estimator.MaxImageDim = viper.GetInt("estimator.max_image_dim")
	cfg.Estimator.JPEGQuality = viper.GetInt("estimator.jpeg_quality")

	return &cfg, nil
}

// DatabaseConfigured reports whether enough of a DSN was provided to open
// postgres; without one the service runs on the in-memory stores.
func (c *Config) DatabaseConfigured() bool {
	return c.Database.Host != "" && c.Database.Name != ""
}
