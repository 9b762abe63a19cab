package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds everything the server and the CLI read from the environment.
type Config struct {
	Env        string
	Addr       string
	Port       string
	SignKey    []byte
	JWTExpires time.Duration

	DBDriver string
	DBDSN    string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	CORSOrigins          []string
	ContactRateWindow    time.Duration
	ContactRateMax       int
	GeneralRateWindow    time.Duration
	GeneralRateMax       int
	MaxUploadBytes       int64
	UploadBackend        string
	UploadDir            string
	MinioEndpoint        string
	MinioAccessKey       string
	MinioSecretKey       string
	MinioBucket          string
	MinioSSL             bool
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPass             string
	ContactEmail         string
	ShutdownGraceSeconds int
}

func defaults(v *viper.Viper) {
	v.SetDefault("go_env", "production")
	v.SetDefault("server_addr", "localhost")
	v.SetDefault("server_port", "5000")
	v.SetDefault("jwt_expires_in", "168h")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "./db.sqlite")
	v.SetDefault("admin_name", "Site Admin")
	v.SetDefault("cors_origin", "http://localhost:3000")
	v.SetDefault("rate_limit_window", "1h")
	v.SetDefault("rate_limit_max_requests", 5)
	v.SetDefault("general_rate_limit_window", "15m")
	v.SetDefault("general_rate_limit", 100)
	v.SetDefault("max_upload_bytes", 5<<20)
	v.SetDefault("upload_backend", "local")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("minio_ssl", false)
	v.SetDefault("smtp_port", 587)
	v.SetDefault("shutdown_grace_seconds", 10)
}

// Viper reads .env (if present) and returns a viper bound to the process
// environment with every default set. Callers may bind flags on top.
func Viper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found")
	}
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return v
}

// Load is FromViper(Viper()).
func Load() (*Config, error) {
	return FromViper(Viper())
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                  v.GetString("go_env"),
		Addr:                 v.GetString("server_addr"),
		Port:                 v.GetString("server_port"),
		SignKey:              []byte(v.GetString("sign_key")),
		JWTExpires:           v.GetDuration("jwt_expires_in"),
		DBDriver:             strings.ToLower(v.GetString("db_driver")),
		DBDSN:                v.GetString("db_dsn"),
		AdminEmail:           v.GetString("admin_email"),
		AdminPassword:        v.GetString("admin_password"),
		AdminName:            v.GetString("admin_name"),
		CORSOrigins:          splitList(v.GetString("cors_origin")),
		ContactRateWindow:    v.GetDuration("rate_limit_window"),
		ContactRateMax:       v.GetInt("rate_limit_max_requests"),
		GeneralRateWindow:    v.GetDuration("general_rate_limit_window"),
		GeneralRateMax:       v.GetInt("general_rate_limit"),
		MaxUploadBytes:       v.GetInt64("max_upload_bytes"),
		UploadBackend:        strings.ToLower(v.GetString("upload_backend")),
		UploadDir:            v.GetString("upload_dir"),
		MinioEndpoint:        v.GetString("minio_endpoint"),
		MinioAccessKey:       v.GetString("minio_access_key"),
		MinioSecretKey:       v.GetString("minio_secret_key"),
		MinioBucket:          v.GetString("minio_bucket"),
		MinioSSL:             v.GetBool("minio_ssl"),
		SMTPHost:             v.GetString("smtp_host"),
		SMTPPort:             v.GetInt("smtp_port"),
		SMTPUser:             v.GetString("smtp_user"),
		SMTPPass:             v.GetString("smtp_pass"),
		ContactEmail:         v.GetString("contact_email"),
		ShutdownGraceSeconds: v.GetInt("shutdown_grace_seconds"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SignKey) == 0 {
		return errors.New("SIGN_KEY is required")
	}
	if c.JWTExpires <= 0 {
		return errors.New("JWT_EXPIRES_IN must be a positive duration")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	switch c.UploadBackend {
	case "local":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for the local upload backend")
		}
	case "minio":
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" || c.MinioBucket == "" {
			return errors.New("minio configuration is incomplete")
		}
	default:
		return errors.Errorf("unsupported UPLOAD_BACKEND %q", c.UploadBackend)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsDev reports whether GO_ENV is "development".
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// SMTPConfigured is false when any of host, user or password is missing.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// Recipient is where contact notifications go.
func (c *Config) Recipient() string {
	if c.ContactEmail != "" {
		return c.ContactEmail
	}
	return c.SMTPUser
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
