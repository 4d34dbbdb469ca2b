package config

type Config struct {
	ServerAddr string `mapstructure:"server_addr"`
	APIKey     string `mapstructure:"api_key"` // входящий X-API-KEY партнера
}
