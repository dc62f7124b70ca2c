package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database      DatabaseConfigs
	ApiServer     ServerConfigs
	MetricsServer ServerConfigs
	Auth          AuthConfigs
	Session       SessionConfigs
	Redis         RedisConfigs
	Kafka         KafkaConfigs
	Progress      ProgressConfigs
	Social        SocialConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type SessionConfigs struct {
	Secret string
	Name   string
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string

	// NotificationTopic is where milestone and achievement events are
	// published for the delivery service.
	NotificationTopic string
}

type ProgressConfigs struct {
	// StreakCacheTTL bounds how long a computed streak may be served from
	// cache. The cache is also invalidated on every log write.
	StreakCacheTTL time.Duration
}

type SocialConfigs struct {
	// MaxBestFriends is the hard cap of best friends per user.
	MaxBestFriends int

	// DeclinedRerequestBySameUserOnly restricts re-requesting a declined
	// friendship to the original requester. By default either party of the
	// pair may re-request.
	DeclinedRerequestBySameUserOnly bool
}
