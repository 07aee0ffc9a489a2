package config

import "time"

type Config struct {
	AvrCfg    *AvrConfig
	MqttCfg   *MqttConfig
	ServerCfg *ServerConfig

	DatabaseURL      string
	MigrationsFolder string
	LogLevel         string
}

type AvrConfig struct {
	Host string
	Port int

	// DeviceName is the display name used for every derived entity.
	DeviceName string

	// VolumeStep is the fraction applied per volume up/down command.
	VolumeStep float64

	// DeviceTimeout bounds how long the device may take to report its
	// identity and zones after the transport comes up.
	DeviceTimeout time.Duration

	// PollInterval drives the periodic full-state refresh query.
	PollInterval time.Duration

	AutoReconnect bool
}

func (c *AvrConfig) Step() float64 {
	if c.VolumeStep <= 0 {
		return 0.01
	}
	return c.VolumeStep
}

type MqttConfig struct {
	Host     string
	Username string
	Password string

	// DiscoveryPrefix is the announce prefix the automation platform
	// watches for entity registrations.
	DiscoveryPrefix string

	// CommandPrefix is the root of the inbound command topics.
	CommandPrefix string
}

type ServerConfig struct {
	Address string

	// JWTSecret signs API bearer tokens; generated at startup when empty.
	JWTSecret string

	// PasswordHash is the bcrypt hash exchanged for a token on /auth/token.
	PasswordHash string

	TokenExpiry time.Duration
}
