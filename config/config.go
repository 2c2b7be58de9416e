package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Logger   LoggerConfig
	SMTP     SMTPConfig

	DefaultAdminPassword string
}

type ServerConfig struct {
	AppEnv         string
	MainRoutes     string
	Port           string
	AllowedOrigins map[string]bool
	NodeID         int // snowflake node for ledger ids
}

type DatabaseConfig struct {
	Driver   string // sqlite, postgres, mysql, mssql
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Path     string // sqlite file, ":memory:" allowed

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	LogLevel        string
	SlowThreshold   int // milliseconds
	AutoMigrate     bool
}

type JWTConfig struct {
	Secret     string
	Expiration int // seconds
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	Recipients []string
}

// Enabled reports whether enough SMTP settings exist to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != "" && len(s.Recipients) > 0
}

// LoadConfig reads .env (when present) and the environment, falling back to defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "development"),
			MainRoutes:     getEnv("MAIN_ROUTES", "/api/v1"),
			Port:           getEnv("APP_PORT", "9000"),
			AllowedOrigins: loadAllowedOrigins(getEnv("ALLOWED_ORIGINS", "")),
			NodeID:         getEnvAsInt("NODE_ID", 1),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "botsprinter"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "office"),
			Path:            getEnv("DB_PATH", "office.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsInt("DB_CONN_MAX_LIFETIME", 300),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
			SlowThreshold:   getEnvAsInt("DB_SLOW_THRESHOLD_MS", 200),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "botsprinter-change-me"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 86400),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 465),
			User:       getEnv("SMTP_USER", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			From:       getEnv("SMTP_FROM", ""),
			Recipients: getEnvAsSlice("LOW_STOCK_RECIPIENTS"),
		},
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin"),
	}
}

// IsDevelopment is true for local runs; it switches the logger to console output.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadAllowedOrigins(originsStr string) map[string]bool {
	if originsStr == "" {
		return map[string]bool{
			"http://127.0.0.1:3000": true,
			"http://localhost:3000": true,
		}
	}

	allowed := make(map[string]bool)
	for _, origin := range strings.Split(originsStr, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = true
		}
	}
	return allowed
}

func SetupCORS(app *fiber.App, cfg ServerConfig) {
	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if cfg.AllowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
