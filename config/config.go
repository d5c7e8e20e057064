package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Backend selectors. "memory" keeps everything in process and is meant for
// local runs without cloud credentials.
const (
	BackendFirestore = "firestore"
	BackendFirebase  = "firebase"
	BackendB2        = "b2"
	BackendMemory    = "memory"
	BackendSMTP      = "smtp"
	BackendLog       = "log"
)

type Config struct {
	Env  string `env:"ENV" env-default:"local"`
	HTTP HTTPConfig
	JWT  JWTConfig

	DataStore   string `env:"DATA_STORE" env-default:"firestore"`
	ObjectStore string `env:"OBJECT_STORE" env-default:"firebase"`
	Mailer      string `env:"MAILER" env-default:"smtp"`

	Firebase  FirebaseConfig
	B2        B2Config
	SMTP      SMTPConfig
	Recaptcha RecaptchaConfig
}

type HTTPConfig struct {
	Port            string        `env:"PORT" env-default:"8080"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	SecretKey  string        `env:"JWT_SECRET_KEY"`
	Issuer     string        `env:"JWT_ISSUER" env-default:"taskhub"`
	SessionTTL time.Duration `env:"JWT_SESSION_TTL" env-default:"168h"`
}

type FirebaseConfig struct {
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS_1"`
	StorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
}

type B2Config struct {
	AccountID string `env:"B2_ACCOUNT_ID"`
	AppKey    string `env:"B2_APPLICATION_KEY"`
	Bucket    string `env:"B2_BUCKET"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

type RecaptchaConfig struct {
	ProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	SiteKey         string `env:"RECAPTCHA_SITE_KEY"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS_2"`
}

// Enabled reports whether the captcha endpoint can be served.
func (c RecaptchaConfig) Enabled() bool {
	return c.ProjectID != "" && c.SiteKey != ""
}

// Load reads .env when running locally (RENDER unset) and then the process
// environment.
func Load() (*Config, error) {
	if os.Getenv("RENDER") == "" {
		// a missing .env is fine, the OS environment still applies
		_ = godotenv.Load()
	}

	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has the settings it needs.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	if c.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is not set")
	}

	switch c.DataStore {
	case BackendFirestore:
		if c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown DATA_STORE: %s", c.DataStore)
	}

	switch c.ObjectStore {
	case BackendFirebase:
		if c.Firebase.CredentialsFile == "" || c.Firebase.StorageBucket == "" {
			return fmt.Errorf("firebase storage requires GOOGLE_APPLICATION_CREDENTIALS_1 and FIREBASE_STORAGE_BUCKET")
		}
	case BackendB2:
		if c.B2.AccountID == "" || c.B2.AppKey == "" || c.B2.Bucket == "" {
			return fmt.Errorf("b2 storage requires B2_ACCOUNT_ID, B2_APPLICATION_KEY and B2_BUCKET")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown OBJECT_STORE: %s", c.ObjectStore)
	}

	switch c.Mailer {
	case BackendSMTP:
		if c.SMTP.Host == "" || c.SMTP.Port == "" || c.SMTP.Username == "" || c.SMTP.Password == "" {
			return fmt.Errorf("missing required SMTP environment variables")
		}
	case BackendLog:
	default:
		return fmt.Errorf("unknown MAILER: %s", c.Mailer)
	}

	return nil
}
