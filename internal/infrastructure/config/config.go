// Package config loads service settings from config.toml, an optional .env
// file and DASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	SeedSourceHTTP = "http"
	SeedSourceS3   = "s3"
)

// DefaultSeedURL is the published product transaction dataset
const DefaultSeedURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

const envProduction = "production"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// IsProduction gates the stricter validation rules.
func (a AppConfig) IsProduction() bool { return a.Env == envProduction }

// LogConfig selects the zap level, the json or console encoder, and the
// output sink (stdout, stderr or a file path).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DatabaseConfig covers both drivers. SQLitePath may be ":memory:".
// Connection lifetimes are in minutes.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
}

// DSN returns a postgres URL with escaped credentials, or the sqlite path.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

func (d *DatabaseConfig) IsInMemory() bool {
	return d.Driver == DriverSQLite && strings.Contains(d.SQLitePath, ":memory:")
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) Addr() string { return r.Host + ":" + strconv.Itoa(r.Port) }

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// SeedConfig locates the product transaction dataset and controls when it
// is imported. RefreshSchedule is "minute hour * * *" in UTC.
type SeedConfig struct {
	Source          string        `mapstructure:"source"`
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ImportOnStartup bool          `mapstructure:"import_on_startup"`
	RefreshEnabled  bool          `mapstructure:"refresh_enabled"`
	RefreshSchedule string        `mapstructure:"refresh_schedule"`
	S3              S3SeedConfig  `mapstructure:"s3"`
}

// S3SeedConfig points at the dataset object. Endpoint and UsePathStyle
// serve MinIO and other S3-compatible stores.
type S3SeedConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Key             string `mapstructure:"key"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// SwaggerConfig gates /swagger. An empty AllowedIPs admits every client.
type SwaggerConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

// TelemetryConfig drives the OTLP exporters, the GORM tracing plugin and
// Pyroscope. SamplingRatio is a fraction in [0, 1].
type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`
	ServiceName       string  `mapstructure:"service_name"`
	Insecure          bool    `mapstructure:"insecure"`

	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`

	LogsEnabled bool   `mapstructure:"logs_enabled"`
	LogsLevel   string `mapstructure:"logs_level"`

	ProfilingEnabled       bool   `mapstructure:"profiling_enabled"`
	ProfilingServerAddress string `mapstructure:"profiling_server_address"`
	SpanProfilesEnabled    bool   `mapstructure:"span_profiles_enabled"`
}

// defaults registers every key with viper. Keys unknown to viper are not
// picked up from the environment by Unmarshal, so blank values are listed too.
var defaults = map[string]any{
	"app.name": "salesdash",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             DriverPostgres,
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "salesdash",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "salesdash.db",
	"database.auto_migrate":       false,
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"cache.enabled":    false,
	"cache.ttl":        5 * time.Minute,
	"cache.key_prefix": "salesdash:report:",

	"seed.source":               SeedSourceHTTP,
	"seed.url":                  DefaultSeedURL,
	"seed.timeout":              30 * time.Second,
	"seed.import_on_startup":    false,
	"seed.refresh_enabled":      false,
	"seed.refresh_schedule":     "0 2 * * *",
	"seed.s3.bucket":            "",
	"seed.s3.key":               "product_transaction.json",
	"seed.s3.region":            "us-east-1",
	"seed.s3.endpoint":          "",
	"seed.s3.access_key_id":     "",
	"seed.s3.secret_access_key": "",
	"seed.s3.use_path_style":    false,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       60 * time.Second,
	"http.idle_timeout":        60 * time.Second,
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       1 << 20,
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   time.Minute,
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "X-Request-ID"},
	"http.trusted_proxies":     []string{},

	"swagger.enabled":     false,
	"swagger.allowed_ips": []string{},

	"telemetry.enabled":                  false,
	"telemetry.collector_endpoint":       "localhost:4317",
	"telemetry.sampling_ratio":           1.0,
	"telemetry.service_name":             "",
	"telemetry.insecure":                 false,
	"telemetry.db_trace_enabled":         false,
	"telemetry.db_log_full_sql":          false,
	"telemetry.db_slow_query_threshold":  200 * time.Millisecond,
	"telemetry.metrics_enabled":          false,
	"telemetry.metrics_export_interval":  time.Minute,
	"telemetry.logs_enabled":             false,
	"telemetry.logs_level":               "info",
	"telemetry.profiling_enabled":        false,
	"telemetry.profiling_server_address": "",
	"telemetry.span_profiles_enabled":    false,
}

// Load resolves configuration. Precedence, highest first: DASH_* process
// environment, .env in the working directory (never overriding the real
// environment), config.toml, built-in defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range []string{".", "./backend", "/app"} {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config.toml: %w", err)
		}
	}

	v.SetEnvPrefix("DASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.deriveDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// deriveDefaults fills values that depend on other settings.
func (c *Config) deriveDefaults() {
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.App.Name
	}
	// Local dashboards run on :3001. Production must list its origins.
	if len(c.HTTP.CORSAllowOrigins) == 0 && !c.App.IsProduction() {
		c.HTTP.CORSAllowOrigins = []string{"http://localhost:3001"}
	}
}

// validate reports every invalid setting at once.
func (c *Config) validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	db := c.Database
	if db.Driver != DriverPostgres && db.Driver != DriverSQLite {
		fail("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, db.Driver)
	}
	if db.MaxOpenConns <= 0 {
		fail("database.max_open_conns must be positive")
	}
	if db.MaxIdleConns < 0 {
		fail("database.max_idle_conns cannot be negative")
	} else if db.MaxIdleConns > db.MaxOpenConns {
		fail("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}

	switch c.Seed.Source {
	case SeedSourceHTTP:
		if u, err := url.Parse(c.Seed.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			fail("seed.url must be an absolute http(s) URL, got %q", c.Seed.URL)
		}
	case SeedSourceS3:
		if c.Seed.S3.Bucket == "" {
			fail("seed.s3.bucket is required when seed.source is s3")
		}
	default:
		fail("seed.source must be %q or %q, got %q", SeedSourceHTTP, SeedSourceS3, c.Seed.Source)
	}

	if c.Cache.TTL < 0 {
		fail("cache.ttl cannot be negative")
	}

	t := c.Telemetry
	if t.SamplingRatio < 0 || t.SamplingRatio > 1 {
		fail("telemetry.sampling_ratio must be within [0, 1], got %g", t.SamplingRatio)
	}
	if t.ProfilingEnabled && t.ProfilingServerAddress == "" {
		fail("telemetry.profiling_server_address is required when profiling is enabled")
	}

	if c.App.IsProduction() {
		errs = append(errs, c.productionErrors()...)
	}
	return errors.Join(errs...)
}

func (c *Config) productionErrors() []error {
	var errs []error
	if c.Database.Driver == DriverPostgres {
		if c.Database.Password == "" {
			errs = append(errs, errors.New("database.password is required in production"))
		}
		if c.Database.SSLMode == "disable" {
			errs = append(errs, errors.New("database.sslmode cannot be 'disable' in production"))
		}
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			errs = append(errs, errors.New("http.cors_allow_origins cannot contain '*' in production"))
			break
		}
	}
	if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
		errs = append(errs, errors.New("swagger must be disabled or restricted by swagger.allowed_ips in production"))
	}
	if c.Telemetry.DBLogFullSQL {
		errs = append(errs, errors.New("telemetry.db_log_full_sql must be false in production"))
	}
	return errs
}
