package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlindgren/klimatlogg/internal/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServerCfg: &config.ServerConfig{
			ListenAddr:   ":0",
			DatabaseURL:  "postgres://localhost:1/none",
			Migrations:   "../migrations",
			TimezoneName: "Europe/Stockholm",
		},
		MqttCfg:  &config.MqttConfig{},
		Tuning:   &config.Tuning{ConnectAttempts: 1, ConnectDelay: time.Millisecond, RefreshInterval: time.Second},
		LogLevel: "INFO",
	}
}

func TestRun_InvalidLogLevel(t *testing.T) {
	cfg := baseConfig()
	cfg.LogLevel = "NOISY"

	err := run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRun_InvalidTimezone(t *testing.T) {
	cfg := baseConfig()
	cfg.ServerCfg.TimezoneName = "Mars/Olympus_Mons"

	err := run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMintToken_RoundTrip(t *testing.T) {
	token, err := MintToken("s3cret", "dht11-livingroom", time.Unix(1718445600, 0))
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "dht11-livingroom", sub)
}
