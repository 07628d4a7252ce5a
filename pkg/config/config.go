package config

import (
	"time"
)

type DB struct {
	Url string `envconfig:"URL"`
}

type Jwt struct {
	Secret    string        `envconfig:"SECRET" required:"true"`
	Expiry    time.Duration `envconfig:"EXPIRY" default:"24h"`
	ATMExpiry time.Duration `envconfig:"ATM_EXPIRY" default:"10m"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Smtp struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM" default:"no-reply@digibank.local"`
	FromName string `envconfig:"FROM_NAME" default:"Digibank"`
}

type Kafka struct {
	Brokers      string `envconfig:"BROKERS"`
	TopicPrefix  string `envconfig:"TOPIC_PREFIX" default:"digibank.events"`
	GroupID      string `envconfig:"GROUP_ID" default:"digibank"`
	SASLUsername string `envconfig:"SASL_USERNAME"`
	SASLPassword string `envconfig:"SASL_PASSWORD"`
}

type Otp struct {
	TTL time.Duration `envconfig:"TTL" default:"5m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[digibank]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Smtp      *Smtp      `envconfig:"SMTP"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	Otp       *Otp       `envconfig:"OTP"`
}
