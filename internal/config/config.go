// config - источник загрузки конфигурации клиента витрины.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища учётных данных.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Front    FrontConfig   `yaml:"front"`
	Backend  BackendConfig `yaml:"backend"`
	Store    StoreConfig   `yaml:"store"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты клиента и фронта.
// Request навешивается на каждую попытку запроса к бэкенду, если у контекста нет дедлайна.
type TimeoutConfig struct {
	Request  time.Duration `yaml:"request"  env:"REQUEST_TIMEOUT"  env-default:"15s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — локальный HTTP-фронт витрины.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// FrontConfig — поведение route guard'а.
type FrontConfig struct {
	LoginPath string `yaml:"login_path" env:"FRONT_LOGIN_PATH" env-default:"/auth/login"`
}

// BackendConfig — адрес и контракт внешнего бэкенда магазина.
type BackendConfig struct {
	BaseURL     string      `yaml:"base_url"     env:"BACKEND_BASE_URL"     env-default:"http://127.0.0.1:8000"`
	UserAgent   string      `yaml:"user_agent"   env:"BACKEND_USER_AGENT"   env-default:"storefront"`
	DefaultRole string      `yaml:"default_role" env:"BACKEND_DEFAULT_ROLE" env-default:"customer"`
	Paths       PathsConfig `yaml:"paths"`
}

// PathsConfig — пути эндпойнтов бэкенда относительно BaseURL.
type PathsConfig struct {
	Login         string `yaml:"login"          env:"PATH_LOGIN"          env-default:"/users/login/"`
	Signup        string `yaml:"signup"         env:"PATH_SIGNUP"         env-default:"/users/signup/"`
	Refresh       string `yaml:"refresh"        env:"PATH_REFRESH"        env-default:"/users/api/token/refresh/"`
	Categories    string `yaml:"categories"     env:"PATH_CATEGORIES"     env-default:"/api/categories/"`
	Products      string `yaml:"products"       env:"PATH_PRODUCTS"       env-default:"/api/getProduct/"`
	Cart          string `yaml:"cart"           env:"PATH_CART"           env-default:"/cart/getCartItems/"`
	AddToCart     string `yaml:"add_to_cart"    env:"PATH_ADD_TO_CART"    env-default:"/cart/addToCart/"`
	PlaceOrder    string `yaml:"place_order"    env:"PATH_PLACE_ORDER"    env-default:"/orders/makeOrder/"`
	Orders        string `yaml:"orders"         env:"PATH_ORDERS"         env-default:"/orders/getOrders/"`
	Profile       string `yaml:"profile"        env:"PATH_PROFILE"        env-default:"/users/getProfile/"`
	AdminProducts string `yaml:"admin_products" env:"PATH_ADMIN_PRODUCTS" env-default:"/api/products/"`
}

// StoreConfig — где живёт сохранённая пара токенов.
//   - file: Path — JSON-файл;
//   - badger: Dir — каталог встроенной БД;
//   - redis: RedisURL, TTL (0 — без истечения).
//
// Key — имя единственного ключа (badger/redis).
type StoreConfig struct {
	Driver   string        `yaml:"driver"    env:"STORE_DRIVER"    env-default:"file"`
	Path     string        `yaml:"path"      env:"STORE_PATH"      env-default:".storefront/tokens.json"`
	Dir      string        `yaml:"dir"       env:"STORE_DIR"       env-default:".storefront/badger"`
	Key      string        `yaml:"key"       env:"STORE_KEY"       env-default:"tokens"`
	RedisURL string        `yaml:"redis_url" env:"STORE_REDIS_URL" env-default:"redis://127.0.0.1:6379/0"`
	TTL      time.Duration `yaml:"ttl"       env:"STORE_TTL"       env-default:"0s"`
}

// Validate проверяет значения, которые cleanenv не умеет ограничить сам.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreFile, StoreBadger, StoreRedis:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is empty")
	}

	return nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	readFile := func(p string) (*Config, error) {
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		return readFile(p)
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
