package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerCfg *ServerConfig
	MqttCfg   *MqttConfig
	Tuning    *Tuning
	LogLevel  string
}

type ServerConfig struct {
	ListenAddr   string
	DatabaseURL  string
	Migrations   string
	APISecret    string // empty disables ingest auth
	TimezoneName string // IANA name used for ingestion and display, e.g. Europe/Stockholm
}

type MqttConfig struct {
	Host     string
	Username string
	Password string
	Topic    string
}

// Tuning holds operational knobs that are not worth a CLI flag each.
// Parsed from the environment via caarlos0/env.
type Tuning struct {
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectDelay    time.Duration `env:"DB_CONNECT_DELAY" envDefault:"2s"`
	ReadTimeout     time.Duration `env:"DB_READ_TIMEOUT" envDefault:"10s"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`
	ChartMaxPoints  int           `env:"CHART_MAX_POINTS" envDefault:"0"` // 0 means unlimited
	MqttQos         byte          `env:"MQTT_QOS" envDefault:"1"`
}

func LoadTuning() (*Tuning, error) {
	t := &Tuning{}
	if err := env.Parse(t); err != nil {
		return nil, fmt.Errorf("parsing tuning env: %w", err)
	}
	if t.ConnectAttempts < 1 {
		return nil, fmt.Errorf("DB_CONNECT_ATTEMPTS must be >= 1, got %d", t.ConnectAttempts)
	}
	if t.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", t.RefreshInterval)
	}
	return t, nil
}
