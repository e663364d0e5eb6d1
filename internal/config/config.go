// Package config собирает конфигурацию сервиса фильтрации изображений
// из значений по умолчанию, файла конфигурации, флагов, .env и переменных окружения.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Значения по умолчанию
const (
	DefaultServerAddress    = ":3000"
	DefaultBaseURL          = "http://localhost:3000"
	DefaultClassifierURL    = "http://aimodel.ddns.net:8000"
	DefaultFetchTimeout     = 15 * time.Second
	DefaultProxyTimeout     = 10 * time.Second
	DefaultClassifyTimeout  = 20 * time.Second
	DefaultTransformTimeout = 10 * time.Second
	DefaultMaxImageBytes    = 20 << 20
	DefaultTLSCertFile      = "server.crt"
	DefaultTLSKeyFile       = "server.key"
	DefaultLogLevel         = "info"
)

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS"` // Адрес для запуска HTTP-сервера
	Port          string `env:"PORT"`           // Порт, переопределяет порт из ServerAddress
	BaseURL       string `env:"BASE_URL"`       // Публичный адрес сервиса для примеров в /test
	ConfigFile    string `env:"CONFIG"`         // Путь к файлу конфигурации (JSON или YAML)

	ClassifierURL    string        `env:"CLASSIFIER_URL"`    // Базовый адрес сервиса классификации
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT"`     // Таймаут загрузки изображения для /filter
	ProxyTimeout     time.Duration `env:"PROXY_TIMEOUT"`     // Таймаут загрузки изображения для /proxy
	ClassifyTimeout  time.Duration `env:"CLASSIFY_TIMEOUT"`  // Таймаут запроса к классификатору
	TransformTimeout time.Duration `env:"TRANSFORM_TIMEOUT"` // Таймаут размытия и кодирования
	MaxImageBytes    int64         `env:"MAX_IMAGE_BYTES"`   // Максимальный размер загружаемого изображения

	FileStoragePath string `env:"FILE_STORAGE_PATH"` // Путь к файлу журнала решений
	DatabaseDSN     string `env:"DATABASE_DSN"`      // Строка подключения к PostgreSQL

	EnableHTTPS string `env:"ENABLE_HTTPS"`  // Любое непустое значение включает HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"` // Путь к сертификату
	TLSKeyFile  string `env:"TLS_KEY_FILE"`  // Путь к приватному ключу

	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS"`                         // Запросов в секунду на клиента, 0 отключает
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST"`                       // Размер всплеска
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","` // Разрешённые источники CORS

	LogLevel string `env:"LOG_LEVEL"`
}

// NewConfig инициализирует конфигурацию, читая файл, флаги, .env и переменные окружения.
func NewConfig() (*Config, error) {
	cfg := defaultConfig()

	// 1. Определение флагов командной строки
	flags := *cfg
	flag.StringVar(&flags.ServerAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	flag.StringVar(&flags.BaseURL, "b", cfg.BaseURL, "Публичный адрес сервиса (env: BASE_URL)")
	flag.StringVar(&flags.ConfigFile, "c", cfg.ConfigFile, "Путь к файлу конфигурации (env: CONFIG)")
	flag.StringVar(&flags.ClassifierURL, "m", cfg.ClassifierURL, "Адрес сервиса классификации (env: CLASSIFIER_URL)")
	flag.StringVar(&flags.FileStoragePath, "f", cfg.FileStoragePath, "Путь к файлу журнала решений (env: FILE_STORAGE_PATH)")
	flag.StringVar(&flags.DatabaseDSN, "d", cfg.DatabaseDSN, "Строка подключения к БД (env: DATABASE_DSN)")
	flag.StringVar(&flags.EnableHTTPS, "s", cfg.EnableHTTPS, "Включить HTTPS (env: ENABLE_HTTPS)")
	flag.StringVar(&flags.LogLevel, "l", cfg.LogLevel, "Уровень логирования (env: LOG_LEVEL)")

	// 2. Парсинг флагов командной строки
	flag.Parse()

	// 3. Файл конфигурации: путь берётся из окружения или флага
	cfg.ConfigFile = flags.ConfigFile
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	fileCfg, err := loadFileConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyFileConfig(fileCfg); err != nil {
		return nil, err
	}

	// 4. Флаги, заданные явно, перекрывают файл
	flag.Visit(func(f *flag.Flag) {
		cfg.applyFlag(f.Name, &flags)
	})

	// 5. .env не перезаписывает уже заданные переменные окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	// 6. Парсинг переменных окружения (имеет наивысший приоритет)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.applyPort()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress:      DefaultServerAddress,
		BaseURL:            DefaultBaseURL,
		ClassifierURL:      DefaultClassifierURL,
		FetchTimeout:       DefaultFetchTimeout,
		ProxyTimeout:       DefaultProxyTimeout,
		ClassifyTimeout:    DefaultClassifyTimeout,
		TransformTimeout:   DefaultTransformTimeout,
		MaxImageBytes:      DefaultMaxImageBytes,
		TLSCertFile:        DefaultTLSCertFile,
		TLSKeyFile:         DefaultTLSKeyFile,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           DefaultLogLevel,
	}
}

func (c *Config) applyFlag(name string, flags *Config) {
	switch name {
	case "a":
		c.ServerAddress = flags.ServerAddress
	case "b":
		c.BaseURL = flags.BaseURL
	case "m":
		c.ClassifierURL = flags.ClassifierURL
	case "f":
		c.FileStoragePath = flags.FileStoragePath
	case "d":
		c.DatabaseDSN = flags.DatabaseDSN
	case "s":
		c.EnableHTTPS = flags.EnableHTTPS
	case "l":
		c.LogLevel = flags.LogLevel
	}
}

// applyPort подставляет PORT в адрес сервера, сохраняя хост.
func (c *Config) applyPort() {
	if c.Port == "" {
		return
	}
	host, _, err := net.SplitHostPort(c.ServerAddress)
	if err != nil {
		host = ""
	}
	c.ServerAddress = net.JoinHostPort(host, c.Port)
}

// IsHTTPSEnabled сообщает, нужно ли запускать сервер по HTTPS.
func (c *Config) IsHTTPSEnabled() bool {
	return c.EnableHTTPS != ""
}

// IsRateLimitEnabled сообщает, включено ли ограничение частоты запросов.
func (c *Config) IsRateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

// Validate проверяет согласованность значений конфигурации.
func (c *Config) Validate() error {
	if c.ClassifierURL == "" {
		return errors.New("classifier URL must not be empty")
	}
	timeouts := map[string]time.Duration{
		"fetch":     c.FetchTimeout,
		"proxy":     c.ProxyTimeout,
		"classify":  c.ClassifyTimeout,
		"transform": c.TransformTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s timeout must be positive, got %s", name, d)
		}
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("max image bytes must be positive, got %d", c.MaxImageBytes)
	}
	if c.IsHTTPSEnabled() && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return errors.New("HTTPS requires both TLS certificate and key files")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	return nil
}
