package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Source  SourceConfig
	DB      DBConfig
	Refresh RefreshConfig
	Redis   RedisConfig
	Report  ReportConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Drivers de origen de datos soportados.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// SourceConfig de dónde se leen el log de compras y el catálogo.
type SourceConfig struct {
	Driver       string // file | postgres
	PurchaseFile string
	ProductFile  string
	Encoding     string // utf-8 | iso-8859-1 | windows-1252
}

// DBConfig configuración de PostgreSQL (solo con SOURCE_DRIVER=postgres).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// RefreshConfig periodicidad del refresco y parámetros de presentación de las vistas.
type RefreshConfig struct {
	Interval time.Duration
	Locale   string
	Timezone string
}

// Location resuelve Timezone; si no existe devuelve time.Local.
func (c RefreshConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RedisConfig espejo opcional del resumen en Redis. Addr vacío = deshabilitado.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Enabled indica si hay que publicar el espejo.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// ReportConfig textos del PDF de deudas.
type ReportConfig struct {
	Title string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, PURCHASE_FILE, REFRESH_INTERVAL, LOCALE, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env o config.env en el directorio actual
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	interval, err := getDuration(v, "REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "getraenkekasse"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8050),
		},
		Source: SourceConfig{
			Driver:       strings.ToLower(getString(v, "SOURCE_DRIVER", DriverFile)),
			PurchaseFile: getString(v, "PURCHASE_FILE", "./assets/purchase.txt"),
			ProductFile:  getString(v, "PRODUCT_FILE", "./assets/produkt.txt"),
			Encoding:     strings.ToLower(getString(v, "SOURCE_ENCODING", "utf-8")),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "getraenkekasse"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Refresh: RefreshConfig{
			Interval: interval,
			Locale:   getString(v, "LOCALE", "de"),
			Timezone: getString(v, "TIMEZONE", "Europe/Berlin"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			Key:      getString(v, "REDIS_KEY", "getraenkekasse:summary"),
		},
		Report: ReportConfig{
			Title: getString(v, "REPORT_TITLE", "Getränkekasse"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Source.Driver {
	case DriverFile, DriverPostgres:
	default:
		return fmt.Errorf("config: SOURCE_DRIVER inválido %q (file|postgres)", c.Source.Driver)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("config: REFRESH_INTERVAL debe ser positivo, recibido %s", c.Refresh.Interval)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getDuration acepta duraciones Go ("15m", "90s") o un número entero de minutos ("15").
func getDuration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s inválido %q: %w", key, raw, err)
	}
	return d, nil
}
