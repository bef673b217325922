package config

type ServiceConfig struct {
	Name                string `yaml:"name"`
	Environment         string `yaml:"environment"`
	Version             string `yaml:"version"`
	ClientURL           string `yaml:"client_url"`
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`
	JWTSecret           string `yaml:"jwt_secret"`
	DefaultTrialDays    int    `yaml:"default_trial_days"`
}

// IsProduction reports whether the service runs in production mode.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}
