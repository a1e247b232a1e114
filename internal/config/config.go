// Package config предоставялет структуры и функции для парсинга и загрузки конфига
// сервиса учётных записей.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Поддерживаемые хранилища пользователей.
const (
	BackendMongo    = "mongo"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Поддерживаемые хранилища загруженных файлов.
const (
	UploadsLocal = "local"
	UploadsMinio = "minio"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	Session         `yaml:"session"`
	Auth            `yaml:"auth"`
	Uploads         `yaml:"uploads"`
}

// Storage выбор и параметры хранилища пользователей. Выбирается один раз при старте.
type Storage struct {
	Backend                 string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	MongoURI                string `yaml:"mongo_uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase           string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"accounts"`
	MongoCollection         string `yaml:"mongo_collection" env:"MONGO_COLLECTION" env-default:"users"`
	FilePath                string `yaml:"file_path" env:"USERS_FILE_PATH" env-default:"users.json"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":5000"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"1h"`
}

// Session настройки серверных сессий.
type Session struct {
	CookieName   string        `yaml:"cookie_name" env-default:"sid"`
	SessionTTL   time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

// Auth настройки аутентификации.
type Auth struct {
	PasswordCost int `yaml:"password_cost" env:"PASSWORD_COST"`
	// UniformErrors скрывает разницу между "нет пользователя" и "неверный пароль".
	UniformErrors bool `yaml:"uniform_errors" env:"AUTH_UNIFORM_ERRORS"`
}

// Uploads настройки хранения загружаемых файлов.
type Uploads struct {
	UploadsBackend string `yaml:"backend" env:"UPLOADS_BACKEND" env-default:"local"`
	Dir            string `yaml:"dir" env:"UPLOADS_DIR" env-default:"uploads"`
	MaxMemory      int64  `yaml:"max_memory" env-default:"33554432"`
	Minio          `yaml:"minio"`
}

// Minio параметры S3-совместимого хранилища.
type Minio struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"accounts-uploads"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
}

// Load читает конфиг из файла path, переменные окружения имеют приоритет.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH.
// Перед чтением подгружается необязательный .env.
func MustLoad() *Config {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt secret key is not set")
	}
	switch c.Backend {
	case BackendMongo, BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	if c.Backend == BackendPostgres && c.StorageConnectionString == "" {
		return errors.New("storage connection string is required for postgres backend")
	}
	switch c.UploadsBackend {
	case UploadsLocal, UploadsMinio:
	default:
		return fmt.Errorf("unknown uploads backend %q", c.UploadsBackend)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// SessionLifetime время жизни сессии, по умолчанию совпадает с TTL токена.
func (c *Config) SessionLifetime() time.Duration {
	if c.SessionTTL > 0 {
		return c.SessionTTL
	}
	return c.TokenTTL
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  Backend: %s\n"+
			"  MongoDatabase: %s\n"+
			"  FilePath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Uploads:\n"+
			"  Backend: %s\n"+
			"  Dir: %s\n",
		c.Env,
		c.Backend,
		c.MongoDatabase,
		c.FilePath,
		c.AddressRedis,
		mask(c.RedisConnection.Password),
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.UploadsBackend,
		c.Dir,
	)
}
