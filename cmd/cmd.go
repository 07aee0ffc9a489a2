package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
	"github.com/anicoll/anthem-integration/internal/pkg/config"
	"github.com/anicoll/anthem-integration/internal/pkg/database"
	"github.com/anicoll/anthem-integration/internal/pkg/database/migration"
	"github.com/anicoll/anthem-integration/internal/pkg/dispatcher"
	"github.com/anicoll/anthem-integration/internal/pkg/entity"
	"github.com/anicoll/anthem-integration/internal/pkg/model"
	"github.com/anicoll/anthem-integration/internal/pkg/mqtt"
	"github.com/anicoll/anthem-integration/internal/pkg/publisher"
	"github.com/anicoll/anthem-integration/internal/pkg/server"
	"github.com/anicoll/anthem-integration/pkg/hasher"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
)

type sessionFactory func(cfg *config.AvrConfig, errChan chan error) AvrService

func AnthemCommand(ctx *cli.Context) error {
	cfg := configFromCli(ctx)
	return run(ctx.Context, cfg, func(avrCfg *config.AvrConfig, errChan chan error) AvrService {
		return avr.NewSession(avrCfg, errChan)
	})
}

func configFromCli(ctx *cli.Context) *config.Config {
	return &config.Config{
		AvrCfg: &config.AvrConfig{
			Host:          ctx.String("anthem-host"),
			Port:          ctx.Int("anthem-port"),
			DeviceName:    ctx.String("device-name"),
			VolumeStep:    ctx.Float64("volume-step"),
			DeviceTimeout: ctx.Duration("device-timeout"),
			PollInterval:  ctx.Duration("poll-interval"),
			AutoReconnect: true,
		},
		MqttCfg: &config.MqttConfig{
			Host:            ctx.String("mqtt-host"),
			Username:        ctx.String("mqtt-user"),
			Password:        ctx.String("mqtt-pass"),
			DiscoveryPrefix: ctx.String("mqtt-discovery-prefix"),
			CommandPrefix:   ctx.String("mqtt-command-prefix"),
		},
		ServerCfg: &config.ServerConfig{
			Address:      ctx.String("http-addr"),
			JWTSecret:    ctx.String("jwt-secret"),
			PasswordHash: ctx.String("api-password-hash"),
			TokenExpiry:  ctx.Duration("token-expiry"),
		},
		DatabaseURL:      ctx.String("database-url"),
		MigrationsFolder: ctx.String("migrations-folder"),
		LogLevel:         ctx.String("log-level"),
	}
}

func run(ctx context.Context, cfg *config.Config, newSession sessionFactory) error {
	errorChan := make(chan error, 1000)
	var err error

	eg, ctx := errgroup.WithContext(ctx)
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

	var db *database.Database
	if cfg.DatabaseURL != "" {
		if cfg.MigrationsFolder != "" {
			if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
				return err
			}
		}
		conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)
		db = database.NewDatabase(conn)

		if err := publisher.RegisterPublisher("postgres", db); err != nil {
			return err
		}
		eg.Go(func() error {
			return cronDbCleanup(db, errorChan)
		})
	}

	var mqttSvc *mqtt.Service
	if cfg.MqttCfg.Host != "" {
		opts := paho_mqtt.NewClientOptions().
			AddBroker(cfg.MqttCfg.Host).
			SetUsername(cfg.MqttCfg.Username).
			SetPassword(cfg.MqttCfg.Password)
		mqttSvc = mqtt.New(paho_mqtt.NewClient(opts), cfg.MqttCfg)
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	bus := dispatcher.New()
	// seeded before any consumer goroutine starts so the holder never hands
	// out a nil session
	holder := &sessionHolder{}
	holder.set(newSession(cfg.AvrCfg, errorChan))

	eg.Go(func() error {
		commandsSubscribed := false
		for {
			svc := holder.current()
			if err := svc.Connect(ctx); err != nil {
				if errors.Is(err, avr.ErrConnect) {
					logger.Error("device unreachable, retrying", zap.Error(err))
					_ = svc.Close()
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(connectRetryDelay):
					}
					holder.set(newSession(cfg.AvrCfg, errorChan))
					continue
				}
				return err
			}
			if err := svc.WaitForInitialised(ctx, cfg.AvrCfg.DeviceTimeout); err != nil {
				_ = svc.Close()
				if errors.Is(err, avr.ErrTimeout) {
					logger.Error("device initialisation timed out, retrying", zap.Error(err))
					holder.set(newSession(cfg.AvrCfg, errorChan))
					continue
				}
				return err
			}

			info := svc.DeviceInfo()
			logger.Info("device initialised",
				zap.String("mac", info.MAC),
				zap.String("model", info.Model),
				zap.Ints("zones", svc.Zones()))

			svc.RegisterChangeCallback(func(string) {
				bus.Publish(info.MAC)
			})

			entities := entity.BuildAll(holder)
			if err := entity.RegisterAll(entities); err != nil {
				return err
			}
			entity.ActivateAll(entities, bus)

			if mqttSvc != nil && !commandsSubscribed {
				device := model.Device{MAC: info.MAC, Model: info.Model, Name: info.Name}
				if err := mqttSvc.SubscribeCommands(device, holder); err != nil {
					return err
				}
				commandsSubscribed = true
			}

			<-ctx.Done()
			entity.DeactivateAll(entities)
			return svc.Close()
		}
	})

	if cfg.AvrCfg.PollInterval > 0 {
		eg.Go(func() error {
			return cronRefresh(holder, cfg.AvrCfg.PollInterval, errorChan)
		})
	}

	if cfg.ServerCfg.PasswordHash != "" {
		if cfg.ServerCfg.JWTSecret == "" {
			secret, err := hasher.GenerateToken(32)
			if err != nil {
				return err
			}
			cfg.ServerCfg.JWTSecret = secret
		}
		api := server.New(holder, bus, nil, cfg.ServerCfg)
		if db != nil {
			api = server.New(holder, bus, db, cfg.ServerCfg)
		}
		eg.Go(func() error {
			srv := &http.Server{
				Handler:      api.Handler(),
				Addr:         cfg.ServerCfg.Address,
				WriteTimeout: 15 * time.Second,
				ReadTimeout:  15 * time.Second,
			}
			return srv.ListenAndServe()
		})
	}

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					logger.Error("cron error", zap.Error(err))
					return err
				}
				logger.Error("async error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

var errCron = errors.New("cron error")

// connectRetryDelay spaces out redials when the receiver is unreachable.
var connectRetryDelay = 5 * time.Second

func cronDbCleanup(db *database.Database, errChan chan error) error {
	if err := db.Cleanup(context.Background()); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := db.Cleanup(context.Background()); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			errChan <- errCron
			return
		}
		zap.L().Info("cleaned up recorded states")
	}); err != nil {
		return err
	}

	c.Run()
	return nil
}

// cronRefresh re-queries full device state on a schedule so drift between
// the device and unsolicited notifications gets corrected.
func cronRefresh(holder *sessionHolder, interval time.Duration, errChan chan error) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		svc := holder.current()
		if svc == nil || svc.State() != avr.StateReady {
			return
		}
		if err := svc.Refresh(); err != nil {
			errChan <- err
		}
	}); err != nil {
		return err
	}

	c.Run()
	return nil
}

// ValidateCommand connects to the device, waits for it to identify itself
// and prints what it found. The session is throwaway and always closed.
func ValidateCommand(ctx *cli.Context) error {
	info, caps, err := avr.Validate(ctx.Context,
		ctx.String("anthem-host"),
		ctx.Int("anthem-port"),
		ctx.Duration("device-timeout"))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"mac":                 info.MAC,
		"model":               info.Model,
		"supports_sound_mode": caps.SoundMode,
		"supports_arc":        caps.ARC,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}

// HashPasswordCommand prints the bcrypt hash for the api-password-hash flag.
func HashPasswordCommand(ctx *cli.Context) error {
	password := ctx.Args().First()
	if password == "" {
		return errors.New("password argument required")
	}
	hash, err := hasher.HashPassword([]byte(password))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hash)
	return nil
}
