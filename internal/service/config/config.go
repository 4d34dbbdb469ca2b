package config

import "time"

type Config struct {
	FulfillmentAddr     string `mapstructure:"fulfillment_addr"`
	FulfillmentUser     string `mapstructure:"fulfillment_user"`
	FulfillmentPassword string `mapstructure:"fulfillment_password"`
	PartnerAddr         string `mapstructure:"partner_addr"`
	PartnerAPIKey       string `mapstructure:"partner_api_key"` // исходящий X-API-KEY

	// Размер пачки за одно выполнение цикла
	BatchLimit int `mapstructure:"batch_limit"`

	// Расписание циклов: у каждого своя начальная задержка, период общий
	SubmitDelay time.Duration `mapstructure:"submit_delay"`
	PollDelay   time.Duration `mapstructure:"poll_delay"`
	NotifyDelay time.Duration `mapstructure:"notify_delay"`
	CyclePeriod time.Duration `mapstructure:"cycle_period"`
}
