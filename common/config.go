package common

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// App info.
const (
	AppName    = "NBSync"
	AppVersion = "0.1.0"
	AppAuthor  = "HON95"
)

// PrometheusNamespace - Prometheus metrics namespace.
const PrometheusNamespace = "nbsync"

// EnvPrefix - Prefix for environment variables overriding config keys.
const EnvPrefix = "NBSYNC"

// Config - The config.
type Config struct {
	NetBoxURL            string  `mapstructure:"netbox_url"`
	NetBoxToken          string  `mapstructure:"netbox_token"`
	NetBoxTimeoutSeconds float64 `mapstructure:"netbox_timeout"`
	InputPath            string  `mapstructure:"input_path"`
	SyncIntervalSeconds  float64 `mapstructure:"sync_interval"`
	DryRun               bool    `mapstructure:"dry_run"`
	HTTPEndpoint         string  `mapstructure:"http_endpoint"`
	PushgatewayURL       string  `mapstructure:"pushgateway_url"`
	InfluxDBURL          string  `mapstructure:"influxdb_url"`
	InfluxDBToken        string  `mapstructure:"influxdb_token"`
	InfluxDBOrg          string  `mapstructure:"influxdb_org"`
	InfluxDBBucket       string  `mapstructure:"influxdb_bucket"`
}

// NetBoxTimeout - HTTP timeout for NetBox calls, zero meaning none.
func (config Config) NetBoxTimeout() time.Duration {
	return time.Duration(config.NetBoxTimeoutSeconds * float64(time.Second))
}

// SyncInterval - Time between runs in daemon mode, zero meaning a single run.
func (config Config) SyncInterval() time.Duration {
	return time.Duration(config.SyncIntervalSeconds * float64(time.Second))
}

// LoadEnvFile - Load environment variables from a dotenv file, if it exists.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "failed to load env file %v", path)
	}
	log.WithFields(log.Fields{
		"env_path": path,
	}).Trace("Loaded env file")
	return nil
}

// LoadConfig - Load the config file (if any) and environment overrides over the global config.
func LoadConfig(path string) error {
	config, err := ReadConfig(path, GlobalConfig)
	if err != nil {
		return err
	}
	GlobalConfig = config
	return nil
}

// ReadConfig - Read config from file and environment, using the provided config for defaults.
func ReadConfig(path string, defaults Config) (Config, error) {
	v := viper.New()
	v.SetDefault("netbox_url", defaults.NetBoxURL)
	v.SetDefault("netbox_token", defaults.NetBoxToken)
	v.SetDefault("netbox_timeout", defaults.NetBoxTimeoutSeconds)
	v.SetDefault("input_path", defaults.InputPath)
	v.SetDefault("sync_interval", defaults.SyncIntervalSeconds)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("http_endpoint", defaults.HTTPEndpoint)
	v.SetDefault("pushgateway_url", defaults.PushgatewayURL)
	v.SetDefault("influxdb_url", defaults.InfluxDBURL)
	v.SetDefault("influxdb_token", defaults.InfluxDBToken)
	v.SetDefault("influxdb_org", defaults.InfluxDBOrg)
	v.SetDefault("influxdb_bucket", defaults.InfluxDBBucket)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		log.WithFields(log.Fields{
			"config_path": path,
		}).Info("Loading config")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return defaults, errors.Wrapf(err, "failed to read config %v", path)
		}
	}

	config := defaults
	if err := v.Unmarshal(&config); err != nil {
		return defaults, errors.Wrap(err, "failed to parse config")
	}
	return config, nil
}

// ValidateConfig - Check that the config is usable.
func ValidateConfig(config Config) error {
	if config.NetBoxURL == "" {
		return errors.New("NetBox URL missing")
	}
	if config.NetBoxToken == "" {
		return errors.New("NetBox token missing")
	}
	if config.NetBoxTimeoutSeconds < 0 {
		return errors.New("negative NetBox timeout not allowed")
	}
	if config.SyncIntervalSeconds < 0 {
		return errors.New("negative sync interval not allowed")
	}
	if config.InputPath == "" {
		return errors.New("input path missing")
	}
	if config.InfluxDBURL != "" && config.InfluxDBOrg == "" {
		return errors.New("InfluxDB org missing")
	}
	return nil
}
