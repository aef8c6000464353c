package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendCloud  = "cloud"
	BackendMemory = "memory"

	devJWTSecret = "local-dev-secret"
)

// App holds every setting read from the environment (or a .env file).
type App struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// DataBackend is "cloud" (postgres, mongo, redis, gcs, supabase) or
	// "memory" for local runs without any external service.
	DataBackend string `mapstructure:"DATA_BACKEND"`

	PostgresURI string `mapstructure:"POSTGRES_URI"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDB     string `mapstructure:"MONGO_DB"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	GCSBucket          string        `mapstructure:"GCS_BUCKET"`
	GCSCredentialsFile string        `mapstructure:"GCS_CREDENTIALS_FILE"`
	GCSSignedURLTTL    time.Duration `mapstructure:"GCS_SIGNED_URL_TTL"`

	SupabaseURL        string `mapstructure:"SUPABASE_URL"`
	SupabaseProjectRef string `mapstructure:"SUPABASE_PROJECT_REF"`
	SupabaseAnonKey    string `mapstructure:"SUPABASE_ANON_KEY"`
	JWTSecret          string `mapstructure:"SUPABASE_JWT_SECRET"`
	JWTIssuer          string `mapstructure:"SUPABASE_JWT_ISSUER"`
	JWTAudience        string `mapstructure:"SUPABASE_JWT_AUDIENCE"`

	SetupSecret     string `mapstructure:"SETUP_SECRET"`
	AdminInviteCode string `mapstructure:"ADMIN_INVITE_CODE"`

	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	CarouselInterval time.Duration `mapstructure:"CAROUSEL_INTERVAL"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"LOG_LEVEL":             "info",
	"DATA_BACKEND":          BackendCloud,
	"POSTGRES_URI":          "",
	"MONGO_URI":             "",
	"MONGO_DB":              "dojoportal",
	"REDIS_ADDR":            "",
	"GCS_BUCKET":            "",
	"GCS_CREDENTIALS_FILE":  "",
	"GCS_SIGNED_URL_TTL":    "0s",
	"SUPABASE_URL":          "",
	"SUPABASE_PROJECT_REF":  "",
	"SUPABASE_ANON_KEY":     "",
	"SUPABASE_JWT_SECRET":   "",
	"SUPABASE_JWT_ISSUER":   "",
	"SUPABASE_JWT_AUDIENCE": "",
	"SETUP_SECRET":          "",
	"ADMIN_INVITE_CODE":     "",
	"CORS_ORIGINS":          "",
	"CAROUSEL_INTERVAL":     "5s",
}

// Load reads .env (if present) and the process environment.
func Load() (App, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return App{}, err
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (a *App) normalize() {
	a.DataBackend = strings.ToLower(strings.TrimSpace(a.DataBackend))
	origins := a.CORSOrigins[:0]
	for _, o := range a.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	a.CORSOrigins = origins
	if a.DataBackend == BackendMemory && a.JWTSecret == "" {
		a.JWTSecret = devJWTSecret
	}
}

func (a App) Validate() error {
	switch a.DataBackend {
	case BackendMemory:
		return nil
	case BackendCloud:
	default:
		return errors.New("DATA_BACKEND must be cloud or memory")
	}

	var missing []string
	for _, v := range []struct{ name, val string }{
		{"POSTGRES_URI", a.PostgresURI},
		{"MONGO_URI", a.MongoURI},
		{"REDIS_ADDR", a.RedisAddr},
		{"GCS_BUCKET", a.GCSBucket},
		{"SUPABASE_ANON_KEY", a.SupabaseAnonKey},
		{"SUPABASE_JWT_SECRET", a.JWTSecret},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	if a.SupabaseURL == "" && a.SupabaseProjectRef == "" {
		missing = append(missing, "SUPABASE_URL or SUPABASE_PROJECT_REF")
	}
	if len(missing) > 0 {
		return errors.New("missing environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}
