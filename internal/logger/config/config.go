package config

type Config struct {
	LogLevel string `mapstructure:"log_level"`
}
