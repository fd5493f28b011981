package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlindgren/klimatlogg/cmd"
)

func main() {
	app := &cli.App{
		Name:   "klimatlogg-server",
		Usage:  "ingests temperature/humidity readings and drives the dashboard",
		Action: cmd.ServerCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				EnvVars:  []string{"DATABASE_URL"},
				Value:    "",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "migrations-folder",
				EnvVars:  []string{"MIGRATIONS_FOLDER"},
				Value:    "",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "listen-addr",
				EnvVars: []string{"LISTEN_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "timezone",
				EnvVars: []string{"DISPLAY_TIMEZONE"},
				Value:   "Europe/Stockholm",
			},
			&cli.StringFlag{
				Name:    "api-secret",
				EnvVars: []string{"API_SECRET"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-topic",
				EnvVars: []string{"MQTT_TOPIC"},
				Value:   "klimatlogg",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "token",
				Usage:  "mint a bearer token for a sensor client",
				Action: cmd.TokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-secret",
						EnvVars: []string{"API_SECRET"},
						Value:   "",
					},
					&cli.StringFlag{
						Name:  "sensor-id",
						Value: "",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
