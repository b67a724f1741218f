package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const defaultMaxUploadBytes int64 = 10 << 20

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig は gRPC サーバー（ヘルスチェック）に関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"GRPC_LISTEN_ADDR"`
}

// HTTPConfig は REST API サーバーに関する設定です。
type HTTPConfig struct {
	ListenAddr         string        `yaml:"listen_addr"      env:"HTTP_LISTEN_ADDR"`
	CORSOrigins        []string      `yaml:"cors_origins"     env:"HTTP_CORS_ORIGINS" env-separator:","`
	ReadTimeout        time.Duration `yaml:"-"`
	WriteTimeout       time.Duration `yaml:"-"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw     string        `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"`
	WriteTimeoutRaw    string        `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"               env:"DATABASE_HOST"`
	Port               int           `yaml:"port"               env:"DATABASE_PORT"`
	User               string        `yaml:"user"               env:"DATABASE_USER"`
	Password           string        `yaml:"password"           env:"DATABASE_PASSWORD"`
	Name               string        `yaml:"name"               env:"DATABASE_NAME"`
	SSLMode            string        `yaml:"ssl_mode"           env:"DATABASE_SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns"     env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns       int           `yaml:"max_idle_conns"     env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"  env:"DATABASE_CONN_MAX_LIFETIME"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time" env:"DATABASE_CONN_MAX_IDLE_TIME"`
}

// RedisConfig は統計キャッシュ用 Redis の設定です。Addr が空の場合キャッシュは無効になります。
type RedisConfig struct {
	Addr        string        `yaml:"addr"       env:"REDIS_ADDR"`
	Password    string        `yaml:"password"   env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db"         env:"REDIS_DB"`
	StatsTTL    time.Duration `yaml:"-"`
	StatsTTLRaw string        `yaml:"stats_ttl"  env:"REDIS_STATS_TTL"`
	KeyPrefix   string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`
}

// AuthConfig は JWT 検証に関する設定です。トークンの発行は行いません。
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER"`
	AdminRole string `yaml:"admin_role" env:"AUTH_ADMIN_ROLE"`
}

// Enabled は JWT 検証が有効かどうかを返します。
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// ImportConfig はスプレッドシート取り込みに関する設定です。
type ImportConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"IMPORT_MAX_UPLOAD_BYTES"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	// 環境変数が設定されている項目だけを上書きします。
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: apply env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EffectivePath は CONFIG_PATH 環境変数を考慮した設定ファイルのパスを返します。
func EffectivePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.HTTP.validateAndNormalize(); err != nil {
		return err
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Redis.validateAndNormalize(); err != nil {
		return err
	}

	if c.Auth.AdminRole == "" {
		c.Auth.AdminRole = "admin"
	}

	if c.Import.MaxUploadBytes < 0 {
		return fmt.Errorf("config: import.max_upload_bytes must not be negative")
	}
	if c.Import.MaxUploadBytes == 0 {
		c.Import.MaxUploadBytes = defaultMaxUploadBytes
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch c.Log.Format {
	case "":
		c.Log.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}

	return nil
}

func (h *HTTPConfig) validateAndNormalize() error {
	if h.ListenAddr == "" {
		return fmt.Errorf("config: http.listen_addr must be set")
	}

	var err error
	if h.ReadTimeout, err = parseDurationWithDefault(h.ReadTimeoutRaw, 15*time.Second); err != nil {
		return fmt.Errorf("config: http.read_timeout: %w", err)
	}
	if h.WriteTimeout, err = parseDurationWithDefault(h.WriteTimeoutRaw, 30*time.Second); err != nil {
		return fmt.Errorf("config: http.write_timeout: %w", err)
	}
	if h.ShutdownTimeout, err = parseDurationWithDefault(h.ShutdownTimeoutRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: http.shutdown_timeout: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationWithDefault(d.ConnMaxLifetimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationWithDefault(d.ConnMaxIdleTimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	ttl, err := parseDurationWithDefault(r.StatsTTLRaw, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("config: redis.stats_ttl: %w", err)
	}
	r.StatsTTL = ttl
	if r.KeyPrefix == "" {
		r.KeyPrefix = "hr-attendance"
	}
	return nil
}

func parseDurationWithDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。資格情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
