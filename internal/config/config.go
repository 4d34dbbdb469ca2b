package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	handlerConfig "github.com/iurnickita/ordersync/internal/handler/config"
	loggerConfig "github.com/iurnickita/ordersync/internal/logger/config"
	serviceConfig "github.com/iurnickita/ordersync/internal/service/config"
	storeConfig "github.com/iurnickita/ordersync/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config `mapstructure:"handler"`
	Service serviceConfig.Config `mapstructure:"service"`
	Store   storeConfig.Config   `mapstructure:"store"`
	Logger  loggerConfig.Config  `mapstructure:"logger"`
}

// GetConfig читает yaml-файл (если задан) и переменные окружения ORDERSYNC_*
func GetConfig(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("handler.server_addr", ":8080")
	v.SetDefault("handler.api_key", "")
	v.SetDefault("logger.log_level", "info")
	v.SetDefault("store.dsn", "")
	v.SetDefault("service.fulfillment_addr", "")
	v.SetDefault("service.fulfillment_user", "")
	v.SetDefault("service.fulfillment_password", "")
	v.SetDefault("service.partner_addr", "")
	v.SetDefault("service.partner_api_key", "")
	v.SetDefault("service.batch_limit", 100)
	v.SetDefault("service.submit_delay", "2s")
	v.SetDefault("service.poll_delay", "20s")
	v.SetDefault("service.notify_delay", "40s")
	v.SetDefault("service.cycle_period", "60s")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config failed: %w", err)
		}
	}

	v.SetEnvPrefix("ORDERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Store.DBDsn == "" {
		return fmt.Errorf("store.dsn is required")
	}
	if c.Service.FulfillmentAddr == "" {
		return fmt.Errorf("service.fulfillment_addr is required")
	}
	if c.Service.PartnerAddr == "" {
		return fmt.Errorf("service.partner_addr is required")
	}
	if c.Service.BatchLimit <= 0 {
		return fmt.Errorf("service.batch_limit must be positive")
	}
	return nil
}
