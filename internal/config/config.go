package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultMaxUploadSize = 32 << 20

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress  string        `json:"server_address"`
	ServerURL      string        `json:"server_url"`
	SessionSecret  string        `json:"session_secret"`
	TLSCertPath    string        `json:"tls_cert_path"`
	TLSKeyPath     string        `json:"tls_key_path"`
	MaxUploadSize  int64         `json:"max_upload_size"`
	RequestTimeout time.Duration `json:"-"`
	EnableHTTPS    bool          `json:"enable_https"`

	// serverURLFlag фиксирует адрес, переданный флагом; он важнее окружения
	serverURLFlag string
	v             *viper.Viper
}

// NewConfig собирает конфигурацию: флаг > переменная окружения > JSON-файл > значение по умолчанию.
func NewConfig(args []string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()
	v.SetDefault("SERVER_ADDRESS", "localhost:8080")
	v.SetDefault("SERVER_URL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	v.SetDefault("REQUEST_TIMEOUT", time.Duration(0))
	v.SetDefault("ENABLE_HTTPS", false)
	v.SetDefault("TLS_CERT_PATH", "cert.pem")
	v.SetDefault("TLS_KEY_PATH", "key.pem")

	v.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	serverAddress := fs.String("a", "", "server address")
	serverURL := fs.String("b", "", "shortening backend base URL (SERVER_URL)")
	maxUploadSize := fs.Int64("m", 0, "max upload size in bytes")
	requestTimeout := fs.Duration("r", 0, "backend request timeout")
	sessionSecret := fs.String("k", "", "session cookie secret")
	enableHTTPS := fs.Bool("s", false, "enable HTTPS")
	tlsCertPath := fs.String("cert", "", "path to TLS certificate")
	tlsKeyPath := fs.String("key", "", "path to TLS key")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if *configPath == "" {
		*configPath = v.GetString("CONFIG")
	}
	if *configPath != "" {
		if err := loadJSON(v, *configPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		ServerURL:      v.GetString("SERVER_URL"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		TLSCertPath:    v.GetString("TLS_CERT_PATH"),
		TLSKeyPath:     v.GetString("TLS_KEY_PATH"),
		MaxUploadSize:  v.GetInt64("MAX_UPLOAD_SIZE"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		EnableHTTPS:    v.GetBool("ENABLE_HTTPS"),
		v:              v,
	}

	// Если флаг передан — он важнее окружения
	override := func(val string, target *string) {
		if val != "" {
			*target = val
		}
	}
	override(*serverAddress, &cfg.ServerAddress)
	override(*sessionSecret, &cfg.SessionSecret)
	override(*tlsCertPath, &cfg.TLSCertPath)
	override(*tlsKeyPath, &cfg.TLSKeyPath)
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
		cfg.serverURLFlag = *serverURL
	}
	if *maxUploadSize > 0 {
		cfg.MaxUploadSize = *maxUploadSize
	}
	if *requestTimeout > 0 {
		cfg.RequestTimeout = *requestTimeout
	}
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}

	logger.Info("Инициализация конфигурации",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("server_url", cfg.ServerURL),
		zap.Int64("max_upload_size", cfg.MaxUploadSize),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Bool("enable_https", cfg.EnableHTTPS),
	)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		logger.Warn("SERVER_URL не задан, запросы к бэкенду будут завершаться ошибкой")
	}

	return cfg, nil
}

// loadJSON подкладывает значения JSON-файла под переменные окружения.
func loadJSON(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("не удалось прочитать JSON-файл конфигурации %q: %w", path, err)
	}

	var raw Config
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ошибка разбора JSON-файла конфигурации: %w", err)
	}

	setDefault := func(key, val string) {
		if val != "" {
			v.SetDefault(key, val)
		}
	}
	setDefault("SERVER_ADDRESS", raw.ServerAddress)
	setDefault("SERVER_URL", raw.ServerURL)
	setDefault("SESSION_SECRET", raw.SessionSecret)
	setDefault("TLS_CERT_PATH", raw.TLSCertPath)
	setDefault("TLS_KEY_PATH", raw.TLSKeyPath)
	if raw.MaxUploadSize > 0 {
		v.SetDefault("MAX_UPLOAD_SIZE", raw.MaxUploadSize)
	}
	if raw.EnableHTTPS {
		v.SetDefault("ENABLE_HTTPS", true)
	}
	return nil
}

// BackendURL возвращает адрес бэкенда на момент вызова.
// Флаг фиксирует адрес, иначе значение перечитывается из окружения.
func (cfg *Config) BackendURL() string {
	if cfg.serverURLFlag != "" {
		return cfg.serverURLFlag
	}
	if cfg.v == nil {
		return cfg.ServerURL
	}
	return cfg.v.GetString("SERVER_URL")
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return errors.New("адрес сервера не может быть пустым")
	}
	if cfg.MaxUploadSize <= 0 {
		return errors.New("максимальный размер загрузки должен быть положительным")
	}
	if cfg.EnableHTTPS && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		return errors.New("для HTTPS нужны пути к сертификату и ключу")
	}
	return nil
}
