package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
	}
	Upload struct {
		MaxBytes int64
	}
	Storage struct {
		Driver    string
		LocalDir  string
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	CORS struct {
		AllowedOrigins []string
	}
	Readme struct {
		GitHubToken    string
		GitHubAPIURL   string
		GeminiAPIKey   string
		GeminiModel    string
		GeminiAPIURL   string
		TimeoutSeconds int
	}
	Log struct {
		Level string
	}
}

// TokenTTL is the validity window of session tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// ReadmeTimeout bounds one README generation.
func (c Config) ReadmeTimeout() time.Duration {
	return time.Duration(c.Readme.TimeoutSeconds) * time.Second
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth jwt secret is required (set MELLOWMARK_AUTH_JWTSECRET)")
	}
	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage local dir is required")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// Load reads configuration from environment variables and optional config files.
// Values from a .env file in the working directory never override variables
// already present in the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MELLOWMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("database.path", "data/mellowmark.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("upload.maxbytes", 10<<20)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.localdir", "data/uploads")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "uploads")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("cors.allowedorigins", []string{"*"})
	v.SetDefault("readme.githubtoken", "")
	v.SetDefault("readme.githubapiurl", "https://api.github.com")
	v.SetDefault("readme.geminiapikey", "")
	v.SetDefault("readme.geminimodel", "gemini-2.0-flash")
	v.SetDefault("readme.geminiapiurl", "https://generativelanguage.googleapis.com")
	v.SetDefault("readme.timeoutseconds", 60)
	v.SetDefault("log.level", "info")
}

// splitList accepts both real lists and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
