package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Storefront Storefront `envPrefix:"STOREFRONT_"`
	Enterprise Enterprise `envPrefix:"ENTERPRISE_"`
	Session    Session    `envPrefix:"SESSION_"`
	Payment    Payment    `envPrefix:"PAYMENT_"`
	Admin      Admin      `envPrefix:"ADMIN_"`
}

type Storefront struct {
	BaseApiURL string        `env:"API_URL" envDefault:"https://api.telas7.shop"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

type Enterprise struct {
	BaseApiURL string        `env:"API_URL" envDefault:"https://api.xavierhub.com/enterprise"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

type Session struct {
	Driver         string        `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql, redis
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"sessions.db"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	TTL            time.Duration `env:"TTL" envDefault:"168h"`
	VerifyInterval time.Duration `env:"VERIFY_INTERVAL" envDefault:"5m"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

type Payment struct {
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	MaxAttempts   int           `env:"MAX_ATTEMPTS" envDefault:"180"`
	RedirectDelay time.Duration `env:"REDIRECT_DELAY" envDefault:"2s"`
	Retention     time.Duration `env:"RETENTION" envDefault:"30m"`
	OutcomeTTL    time.Duration `env:"OUTCOME_TTL" envDefault:"24h"`
}

type Admin struct {
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`
	PageSize       int           `env:"PAGE_SIZE" envDefault:"20"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	File   string `env:"LOG_FILE"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
