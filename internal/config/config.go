package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	App struct {
		Env string
	}
	Server struct {
		Addr         string
		MaxBodyBytes int64
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		AdminEmail      string
		AdminPassword   string
	}
	Log struct {
		Level string
	}
	CORS struct {
		AllowedOrigins []string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Telemetry struct {
		Endpoint string
	}
}

// IsProduction reports whether error details must be hidden from callers.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// existing environment variables take precedence over .env entries
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.maxbodybytes", 10*1024)
	v.SetDefault("database.path", "data/cms.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 24*60)
	v.SetDefault("auth.adminemail", "")
	v.SetDefault("auth.adminpassword", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowedorigins", []string{"http://localhost:3001", "http://localhost:5001"})
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "content-archive")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("telemetry.endpoint", "")

	// names used by existing deployments
	if err := v.BindEnv("auth.jwtsecret", "CMS_AUTH_JWTSECRET", "JWT_SECRET"); err != nil {
		return Config{}, fmt.Errorf("bind jwt secret env: %w", err)
	}
	if err := v.BindEnv("app.env", "CMS_APP_ENV", "NODE_ENV"); err != nil {
		return Config{}, fmt.Errorf("bind app env: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	return cfg, nil
}

// Validate reports configuration that must abort startup.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth token ttl must be positive, got %d minutes", c.Auth.TokenTTLMinutes)
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("auth admin email and password must be set together")
	}
	return nil
}

func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
