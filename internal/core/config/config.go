package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Tracking holds tracking number generation settings.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Storage holds the shipment store configuration.
	Storage StorageConfig `mapstructure:",squash"`

	// Redis holds the snapshot cache configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Notifications holds the webhook notification configuration.
	Notifications NotificationsConfig `mapstructure:",squash"`
}

// TrackingConfig holds tracking number generation settings.
type TrackingConfig struct {
	// NumberPrefix is the alphabetic prefix of issued tracking numbers.
	NumberPrefix string `mapstructure:"TRACKING_PREFIX" default:"SHP"`
}

// StorageConfig selects and configures the shipment store.
type StorageConfig struct {
	// Driver selects the store backend: "memory" or "postgres".
	Driver string `mapstructure:"STORAGE_DRIVER" default:"memory"`
	// DatabaseURL is the Postgres DSN, required for the postgres driver.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
}

// RedisConfig holds the analytics snapshot cache connection.
type RedisConfig struct {
	// URL is the Redis connection URL. Empty disables snapshot persistence.
	URL string `mapstructure:"REDIS_URL"`
}

// NotificationsConfig holds the status-change webhook settings.
type NotificationsConfig struct {
	// WebhookURL receives status-change notifications. Empty disables them.
	WebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	// TimeoutSeconds bounds each webhook delivery attempt.
	TimeoutSeconds int `mapstructure:"NOTIFY_TIMEOUT_SECONDS" default:"10"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if config.Storage.Driver == StorageDriverPostgres && config.Storage.DatabaseURL == "" {
		return nil, fmt.Errorf("missing required configuration: DATABASE_URL (storage driver is %q)", config.Storage.Driver)
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
