package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// FileConfig описывает файл конфигурации. Формат JSON или YAML.
// Незаданные поля не меняют текущие значения.
type FileConfig struct {
	ServerAddress      *string  `yaml:"server_address"`
	BaseURL            *string  `yaml:"base_url"`
	ClassifierURL      *string  `yaml:"classifier_url"`
	FetchTimeout       *string  `yaml:"fetch_timeout"`
	ProxyTimeout       *string  `yaml:"proxy_timeout"`
	ClassifyTimeout    *string  `yaml:"classify_timeout"`
	TransformTimeout   *string  `yaml:"transform_timeout"`
	MaxImageBytes      *int64   `yaml:"max_image_bytes"`
	FileStoragePath    *string  `yaml:"file_storage_path"`
	DatabaseDSN        *string  `yaml:"database_dsn"`
	EnableHTTPS        *bool    `yaml:"enable_https"`
	TLSCertFile        *string  `yaml:"tls_cert_file"`
	TLSKeyFile         *string  `yaml:"tls_key_file"`
	RateLimitRPS       *float64 `yaml:"rate_limit_rps"`
	RateLimitBurst     *int     `yaml:"rate_limit_burst"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	LogLevel           *string  `yaml:"log_level"`
}

// loadFileConfig читает файл конфигурации. Пустой путь даёт пустую конфигурацию.
func loadFileConfig(filename string) (*FileConfig, error) {
	if filename == "" {
		return &FileConfig{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", filename, err)
	}

	return &fc, nil
}

// applyFileConfig переносит заданные в файле значения в конфигурацию.
func (c *Config) applyFileConfig(fc *FileConfig) error {
	if fc == nil {
		return nil
	}
	timeouts := []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"fetch_timeout", fc.FetchTimeout, &c.FetchTimeout},
		{"proxy_timeout", fc.ProxyTimeout, &c.ProxyTimeout},
		{"classify_timeout", fc.ClassifyTimeout, &c.ClassifyTimeout},
		{"transform_timeout", fc.TransformTimeout, &c.TransformTimeout},
	}
	for _, t := range timeouts {
		if t.src == nil {
			continue
		}
		d, err := time.ParseDuration(*t.src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", t.name, err)
		}
		*t.dst = d
	}

	setString(&c.ServerAddress, fc.ServerAddress)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.ClassifierURL, fc.ClassifierURL)
	setString(&c.FileStoragePath, fc.FileStoragePath)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.TLSCertFile, fc.TLSCertFile)
	setString(&c.TLSKeyFile, fc.TLSKeyFile)
	setString(&c.LogLevel, fc.LogLevel)

	if fc.EnableHTTPS != nil {
		if *fc.EnableHTTPS {
			c.EnableHTTPS = "true"
		} else {
			c.EnableHTTPS = ""
		}
	}
	if fc.MaxImageBytes != nil {
		c.MaxImageBytes = *fc.MaxImageBytes
	}
	if fc.RateLimitRPS != nil {
		c.RateLimitRPS = *fc.RateLimitRPS
	}
	if fc.RateLimitBurst != nil {
		c.RateLimitBurst = *fc.RateLimitBurst
	}
	if len(fc.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = fc.CORSAllowedOrigins
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
