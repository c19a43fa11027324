package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Storage StorageConfig
	Store   StoreConfig
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Wizard  WizardConfig
	Notify  NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production.
func (s *ServerConfig) IsProduction() bool { return s.Environment == "production" }

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// StorageConfig holds object storage settings for uploaded documents.
type StorageConfig struct {
	Provider        string `mapstructure:"provider"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	MaxUploadMB     int64  `mapstructure:"max_upload_mb"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	PresignExpiry   int64  `mapstructure:"presign_expiry"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// MaxUploadBytes returns the default per-file ceiling.
func (s *StorageConfig) MaxUploadBytes() int64 { return s.MaxUploadMB * 1024 * 1024 }

// StoreConfig selects where submissions and drafts are kept.
type StoreConfig struct {
	Provider          string `mapstructure:"provider"`
	FirestoreProject  string `mapstructure:"firestore_project"`
	FirestoreEmulator string `mapstructure:"firestore_emulator"`
	CredentialsFile   string `mapstructure:"credentials_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// WizardConfig holds wizard session settings.
type WizardConfig struct {
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SubmitTimeout     time.Duration `mapstructure:"submit_timeout"`
	UploadTimeout     time.Duration `mapstructure:"upload_timeout"`
	AutosaveQueueSize int           `mapstructure:"autosave_queue_size"`
}

// NotifyConfig holds reviewer notification worker settings.
type NotifyConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	BatchSize        int `mapstructure:"batch_size"`
	Concurrency      int `mapstructure:"concurrency"`
}

// Validate reports settings that make the service unusable.
func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket", ErrMissing)
	}
	if c.Server.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return fmt.Errorf("%w: jwt.secret must be set in production", ErrMissing)
	}
	switch c.Storage.Provider {
	case "s3", "gcs":
	default:
		return fmt.Errorf("%w: unknown storage.provider %q", ErrMissing, c.Storage.Provider)
	}
	switch c.Store.Provider {
	case "postgres":
	case "firestore":
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("%w: store.firestore_project", ErrMissing)
		}
	default:
		return fmt.Errorf("%w: unknown store.provider %q", ErrMissing, c.Store.Provider)
	}
	return nil
}

const defaultJWTSecret = "change-me-in-production"

// Load reads configuration from environment variables with the FORMDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FORMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "formdesk")
	v.SetDefault("db.password", "formdesk_secret")
	v.SetDefault("db.name", "formdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "formdesk")

	// Storage defaults
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.bucket", "formdesk-uploads")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.max_upload_mb", 5)
	v.SetDefault("storage.region", "eu-west-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.presign_expiry", 3600)
	v.SetDefault("storage.credentials_file", "")

	// Submission store defaults
	v.SetDefault("store.provider", "postgres")
	v.SetDefault("store.firestore_project", "")
	v.SetDefault("store.firestore_emulator", "")
	v.SetDefault("store.credentials_file", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-west-1")
	v.SetDefault("email.from_address", "noreply@formdesk.local")
	v.SetDefault("email.from_name", "Formdesk")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Wizard defaults
	v.SetDefault("wizard.session_ttl", "2h")
	v.SetDefault("wizard.submit_timeout", "30s")
	v.SetDefault("wizard.upload_timeout", "60s")
	v.SetDefault("wizard.autosave_queue_size", 256)

	// Notification worker defaults
	v.SetDefault("notify.poll_interval_secs", 15)
	v.SetDefault("notify.batch_size", 20)
	v.SetDefault("notify.concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "FORMDESK_SERVER_PORT",
		"server.read_timeout":        "FORMDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "FORMDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":         "FORMDESK_SERVER_ENVIRONMENT",
		"db.host":                    "FORMDESK_DB_HOST",
		"db.port":                    "FORMDESK_DB_PORT",
		"db.user":                    "FORMDESK_DB_USER",
		"db.password":                "FORMDESK_DB_PASSWORD",
		"db.name":                    "FORMDESK_DB_NAME",
		"db.sslmode":                 "FORMDESK_DB_SSLMODE",
		"db.max_open":                "FORMDESK_DB_MAX_OPEN",
		"db.max_idle":                "FORMDESK_DB_MAX_IDLE",
		"jwt.secret":                 "FORMDESK_JWT_SECRET",
		"jwt.access_expiry":          "FORMDESK_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "FORMDESK_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                 "FORMDESK_JWT_ISSUER",
		"storage.provider":           "FORMDESK_STORAGE_PROVIDER",
		"storage.bucket":             "FORMDESK_STORAGE_BUCKET",
		"storage.public_base_url":    "FORMDESK_STORAGE_PUBLIC_BASE_URL",
		"storage.max_upload_mb":      "FORMDESK_STORAGE_MAX_UPLOAD_MB",
		"storage.region":             "FORMDESK_STORAGE_REGION",
		"storage.endpoint":           "FORMDESK_STORAGE_ENDPOINT",
		"storage.access_key":         "FORMDESK_STORAGE_ACCESS_KEY",
		"storage.secret_key":         "FORMDESK_STORAGE_SECRET_KEY",
		"storage.presign_expiry":     "FORMDESK_STORAGE_PRESIGN_EXPIRY",
		"storage.credentials_file":   "FORMDESK_STORAGE_CREDENTIALS_FILE",
		"store.provider":             "FORMDESK_STORE_PROVIDER",
		"store.firestore_project":    "FORMDESK_STORE_FIRESTORE_PROJECT",
		"store.firestore_emulator":   "FORMDESK_STORE_FIRESTORE_EMULATOR",
		"store.credentials_file":     "FORMDESK_STORE_CREDENTIALS_FILE",
		"log.level":                  "FORMDESK_LOG_LEVEL",
		"log.format":                 "FORMDESK_LOG_FORMAT",
		"cors.allowed_origins":       "FORMDESK_CORS_ALLOWED_ORIGINS",
		"email.provider":             "FORMDESK_EMAIL_PROVIDER",
		"email.region":               "FORMDESK_EMAIL_REGION",
		"email.from_address":         "FORMDESK_EMAIL_FROM_ADDRESS",
		"email.from_name":            "FORMDESK_EMAIL_FROM_NAME",
		"email.frontend_url":         "FORMDESK_EMAIL_FRONTEND_URL",
		"wizard.session_ttl":         "FORMDESK_WIZARD_SESSION_TTL",
		"wizard.submit_timeout":      "FORMDESK_WIZARD_SUBMIT_TIMEOUT",
		"wizard.upload_timeout":      "FORMDESK_WIZARD_UPLOAD_TIMEOUT",
		"wizard.autosave_queue_size": "FORMDESK_WIZARD_AUTOSAVE_QUEUE_SIZE",
		"notify.poll_interval_secs":  "FORMDESK_NOTIFY_POLL_INTERVAL_SECS",
		"notify.batch_size":          "FORMDESK_NOTIFY_BATCH_SIZE",
		"notify.concurrency":         "FORMDESK_NOTIFY_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FORMDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FORMDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Storage = StorageConfig{
		Provider:        strings.ToLower(v.GetString("storage.provider")),
		Bucket:          v.GetString("storage.bucket"),
		PublicBaseURL:   strings.TrimRight(v.GetString("storage.public_base_url"), "/"),
		MaxUploadMB:     v.GetInt64("storage.max_upload_mb"),
		Region:          v.GetString("storage.region"),
		Endpoint:        v.GetString("storage.endpoint"),
		AccessKey:       v.GetString("storage.access_key"),
		SecretKey:       v.GetString("storage.secret_key"),
		PresignExpiry:   v.GetInt64("storage.presign_expiry"),
		CredentialsFile: v.GetString("storage.credentials_file"),
	}
	cfg.Store = StoreConfig{
		Provider:          strings.ToLower(v.GetString("store.provider")),
		FirestoreProject:  v.GetString("store.firestore_project"),
		FirestoreEmulator: v.GetString("store.firestore_emulator"),
		CredentialsFile:   v.GetString("store.credentials_file"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Wizard = WizardConfig{
		SessionTTL:        v.GetDuration("wizard.session_ttl"),
		SubmitTimeout:     v.GetDuration("wizard.submit_timeout"),
		UploadTimeout:     v.GetDuration("wizard.upload_timeout"),
		AutosaveQueueSize: v.GetInt("wizard.autosave_queue_size"),
	}
	cfg.Notify = NotifyConfig{
		PollIntervalSecs: v.GetInt("notify.poll_interval_secs"),
		BatchSize:        v.GetInt("notify.batch_size"),
		Concurrency:      v.GetInt("notify.concurrency"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
