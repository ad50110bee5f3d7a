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
	Env                     string        `yaml:"env"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RabbitConnectionString  string        `yaml:"rabbit_connection_string" env:"RABBIT_CONNECTION_STRING"`
	RabbitMaxRetries        int           `yaml:"rabbit_max_retries" env-default:"5"`
	RabbitRetryDelay        time.Duration `yaml:"rabbit_retry_delay" env-default:"2s"`
	TeamInviteURL           string        `yaml:"team_invite_url" env-default:"http://localhost:3000/invite"`

	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	OpenAI          `yaml:"openai"`
	Payments        `yaml:"payments"`
	OAuth           `yaml:"oauth"`
	SMTP            `yaml:"smtp"`
	Credits         `yaml:"credits"`
	LoginGuard      `yaml:"login_guard"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env-default:"20"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env-default:"40"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// OpenAI структура для настройки клиента генерации объявлений
type OpenAI struct {
	APIKey        string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL       string        `yaml:"base_url" env-default:"https://api.openai.com/v1"`
	Model         string        `yaml:"model" env-default:"gpt-4o-mini"`
	ImageModel    string        `yaml:"image_model" env-default:"dall-e-3"`
	ImageSize     string        `yaml:"image_size" env-default:"1024x1024"`
	TimeoutOpenAI time.Duration `yaml:"timeout" env-default:"60s"`
	CacheTTLDays  int           `yaml:"cache_ttl_days" env-default:"30"`
}

// Payments структура для настройки платёжного провайдера и вебхуков
type Payments struct {
	SecretKey     string `yaml:"secret_key" env:"PAYMENTS_SECRET_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"PAYMENTS_WEBHOOK_SECRET"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

// OAuth структура для настройки подключения рекламных кабинетов
type OAuth struct {
	RedirectURL string        `yaml:"redirect_url"`
	StateTTL    time.Duration `yaml:"state_ttl" env-default:"10m"`
	Google      OAuthApp      `yaml:"google"`
	Meta        OAuthApp      `yaml:"meta"`
	LinkedIn    OAuthApp      `yaml:"linkedin"`
	Microsoft   OAuthApp      `yaml:"microsoft"`
}

// OAuthApp учетные данные приложения у конкретной рекламной платформы
type OAuthApp struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret" env-default:""`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// Credits структура для настройки кредитной системы
type Credits struct {
	FreeCredits     int `yaml:"free_credits" env-default:"10"`
	CostPerPlatform int `yaml:"cost_per_platform" env-default:"1"`
}

// LoginGuard структура для настройки блокировки входа по числу неудачных попыток
type LoginGuard struct {
	MaxAttempts     int           `yaml:"max_attempts" env-default:"5"`
	LockoutDuration time.Duration `yaml:"lockout_duration" env-default:"15m"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
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
