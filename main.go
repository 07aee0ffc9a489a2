package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/anthem-integration/cmd"
)

func main() {
	deviceFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "anthem-host",
			EnvVars:  []string{"ANTHEM_HOST"},
			Required: true,
		},
		&cli.IntFlag{
			Name:    "anthem-port",
			EnvVars: []string{"ANTHEM_PORT"},
			Value:   14999,
		},
		&cli.DurationFlag{
			Name:    "device-timeout",
			EnvVars: []string{"DEVICE_TIMEOUT"},
			Value:   60 * time.Second,
		},
	}

	app := &cli.App{
		Name:   "anthem-controller",
		Usage:  "controller for anthem a/v receivers",
		Action: cmd.AnthemCommand,
		Flags: append(deviceFlags,
			&cli.StringFlag{
				Name:    "device-name",
				EnvVars: []string{"DEVICE_NAME"},
				Value:   "",
			},
			&cli.Float64Flag{
				Name:    "volume-step",
				EnvVars: []string{"VOLUME_STEP"},
				Value:   0.01,
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   5 * time.Minute,
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
				Name:    "mqtt-discovery-prefix",
				EnvVars: []string{"MQTT_DISCOVERY_PREFIX"},
				Value:   "homeassistant",
			},
			&cli.StringFlag{
				Name:    "mqtt-command-prefix",
				EnvVars: []string{"MQTT_COMMAND_PREFIX"},
				Value:   "anthem",
			},
			&cli.StringFlag{
				Name:    "database-url",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "migrations-folder",
				EnvVars: []string{"MIGRATIONS_FOLDER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				EnvVars: []string{"JWT_SECRET"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "api-password-hash",
				EnvVars: []string{"API_PASSWORD_HASH"},
				Value:   "",
			},
			&cli.DurationFlag{
				Name:    "token-expiry",
				EnvVars: []string{"TOKEN_EXPIRY"},
				Value:   24 * time.Hour,
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		),
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "probe a device and print its identity",
				Action: cmd.ValidateCommand,
				Flags:  deviceFlags,
			},
			{
				Name:      "hash-password",
				Usage:     "hash an api password for the api-password-hash flag",
				ArgsUsage: "<password>",
				Action:    cmd.HashPasswordCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
