package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mlindgren/klimatlogg/internal/pkg/aggregate"
	"github.com/mlindgren/klimatlogg/internal/pkg/config"
	"github.com/mlindgren/klimatlogg/internal/pkg/dashboard"
	"github.com/mlindgren/klimatlogg/internal/pkg/database"
	"github.com/mlindgren/klimatlogg/internal/pkg/database/migration"
	"github.com/mlindgren/klimatlogg/internal/pkg/ingest"
	"github.com/mlindgren/klimatlogg/internal/pkg/mqtt"
	"github.com/mlindgren/klimatlogg/internal/pkg/retry"
	"github.com/mlindgren/klimatlogg/internal/pkg/server"
	"github.com/mlindgren/klimatlogg/pkg/sockets"
)

func ServerCommand(ctx *cli.Context) error {
	tuning, err := config.LoadTuning()
	if err != nil {
		return err
	}
	cfg := &config.Config{
		ServerCfg: &config.ServerConfig{
			ListenAddr:   ctx.String("listen-addr"),
			DatabaseURL:  ctx.String("database-url"),
			Migrations:   ctx.String("migrations-folder"),
			APISecret:    ctx.String("api-secret"),
			TimezoneName: ctx.String("timezone"),
		},
		MqttCfg: &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
			Topic:    ctx.String("mqtt-topic"),
		},
		Tuning:   tuning,
		LogLevel: ctx.String("log-level"),
	}

	return run(ctx.Context, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	var err error

	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	loc, err := time.LoadLocation(cfg.ServerCfg.TimezoneName)
	if err != nil {
		return err
	}

	if err := migration.Migrate(cfg.ServerCfg.DatabaseURL, cfg.ServerCfg.Migrations); err != nil {
		return err
	}
	logger.Info("migrations applied", zap.String("folder", cfg.ServerCfg.Migrations))

	connector := database.NewConnector(cfg.ServerCfg.DatabaseURL,
		retry.NewPolicy(cfg.Tuning.ConnectAttempts, cfg.Tuning.ConnectDelay))
	store := database.NewStore(connector)

	ingestSvc := ingest.New(store, loc)
	readerSvc := aggregate.NewReader(store, loc, cfg.Tuning.ReadTimeout)

	hub := sockets.NewHub()
	defer hub.Close()
	if err := dashboard.RegisterSurface("websocket", server.NewHubSurface(hub)); err != nil {
		return err
	}

	if cfg.MqttCfg.Host != "" {
		mqttSvc := mqtt.New(mqtt.NewClient(cfg.MqttCfg), cfg.MqttCfg.Topic, cfg.Tuning.MqttQos)
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := dashboard.RegisterSurface("mqtt", mqttSvc); err != nil {
			return err
		}
		logger.Info("mqtt surface registered", zap.String("host", cfg.MqttCfg.Host))
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		loop := dashboard.NewLoop(readerSvc, cfg.Tuning.RefreshInterval, cfg.Tuning.ChartMaxPoints)
		return loop.Run(ctx)
	})

	eg.Go(func() error {
		srv := &http.Server{
			Handler:      server.New(ingestSvc, readerSvc, hub, cfg.Tuning.ChartMaxPoints).Routes(cfg.ServerCfg.APISecret),
			Addr:         cfg.ServerCfg.ListenAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logger.Info("http listening", zap.String("addr", cfg.ServerCfg.ListenAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return eg.Wait()
}
