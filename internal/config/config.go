// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                string   `yaml:"env"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	UserAPI            `yaml:"user_api"`
	SubscriberAPI      `yaml:"subscriber_api"`
	WhatsappAPI        `yaml:"whatsapp_api"`
	RedisConnection    `yaml:"redis_connection"`
	HTTPServer         `yaml:"http_server"`
	Aggregator         `yaml:"aggregator"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// UserAPI настройки клиента сервиса пользователей (ростер AP/пользователей).
type UserAPI struct {
	BaseURL     string        `yaml:"base_url"`
	PageSize    int           `yaml:"page_size" env-default:"100000"`
	TimeoutUser time.Duration `yaml:"timeout" env-default:"30s"`
}

// SubscriberAPI настройки клиента сервиса подписок.
type SubscriberAPI struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSub     time.Duration `yaml:"timeout" env-default:"15s"`
	MaxConcurrency int           `yaml:"max_concurrency" env-default:"32"`
}

// WhatsappAPI настройки клиента whatsapp-бэкенда (группы, шаблоны, расписания).
type WhatsappAPI struct {
	BaseURL    string        `yaml:"base_url"`
	TimeoutWap time.Duration `yaml:"timeout" env-default:"15s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Aggregator настройки агрегатора объединённых пользователей.
type Aggregator struct {
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" env-default:"10m"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
