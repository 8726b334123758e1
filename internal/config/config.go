package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
	SourceFile     = "file"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）

	LocalOnly bool // ループバック以外を拒否

	LogLevel string // debug/info/warn/error
	LogFile  string // 空なら stdout のみ

	CatalogSource      string        // memory/postgres
	CatalogLocale      string        // 並び替え・検索のロケール（it）
	CatalogMockLatency time.Duration // モックカタログの擬似遅延

	CartStorage    string // file/memory/postgres/redis
	CartStorageKey string // カートの保存キー
	CartStorageDir string // file のときの保存先

	DatabaseURL      string // あれば最優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	latencyMS, err := atoiDefault("CATALOG_MOCK_LATENCY_MS", 0)
	if err != nil {
		return Config{}, err
	}
	localOnly := true
	if v := os.Getenv("LOCAL_ONLY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("LOCAL_ONLY must be bool: %w", err)
		}
		localOnly = b
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: os.Getenv("FE_URL"),

		LocalOnly: localOnly,

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		CatalogSource:      strings.ToLower(getenv("CATALOG_SOURCE", SourceMemory)),
		CatalogLocale:      getenv("CATALOG_LOCALE", "it"),
		CatalogMockLatency: time.Duration(latencyMS) * time.Millisecond,

		CartStorage:    strings.ToLower(getenv("CART_STORAGE", SourceFile)),
		CartStorageKey: getenv("CART_STORAGE_KEY", "spinardi-cart"),
		CartStorageDir: getenv("CART_STORAGE_DIR", defaultStorageDir()),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) validate() error {
	if c.GoEnv != "dev" && c.GoEnv != "prod" {
		return fmt.Errorf("GO_ENV must be dev or prod")
	}
	switch c.CatalogSource {
	case SourceMemory, SourcePostgres:
	default:
		return fmt.Errorf("CATALOG_SOURCE must be memory or postgres")
	}
	switch c.CartStorage {
	case SourceFile, SourceMemory, SourcePostgres, SourceRedis:
	default:
		return fmt.Errorf("CART_STORAGE must be file, memory, postgres or redis")
	}
	if c.CartStorage == SourceFile && c.CartStorageDir == "" {
		return fmt.Errorf("CART_STORAGE_DIR is required")
	}
	if c.CartStorageKey == "" {
		return fmt.Errorf("CART_STORAGE_KEY is required")
	}
	if c.CartStorage == SourceRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if _, err := language.Parse(c.CatalogLocale); err != nil {
		return fmt.Errorf("CATALOG_LOCALE is invalid: %w", err)
	}
	if c.CatalogMockLatency < 0 {
		return fmt.Errorf("CATALOG_MOCK_LATENCY_MS must be >= 0")
	}
	return nil
}

// 並び替え・検索のロケール（validate 済み）
func (c Config) Locale() language.Tag {
	return language.Make(c.CatalogLocale)
}

// postgres を使う設定か
func (c Config) UsesPostgres() bool {
	return c.CatalogSource == SourcePostgres || c.CartStorage == SourcePostgres
}

// ユーザー設定ディレクトリ配下。取れなければカレントの .storefront
func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront")
	}
	return ".storefront"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
