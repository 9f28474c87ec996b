package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	_ "github.com/nerrad567/smarthome-core/migrations" // Registers embedded migrations

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/automation"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/event"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smarthome-core/internal/location"
)

// app holds everything a command needs. Fields past db are only set by
// wire.
type app struct {
	cfg *config.Config
	log *logging.Logger
	db  *database.Manager

	verifier  *auth.Argon2Verifier
	roles     *auth.SQLRoleRepository
	users     *auth.SQLUserRepository
	homes     *location.SQLHomeRepository
	locations *location.SQLLocationRepository
	states    *device.SQLStateRepository
	types     *device.SQLTypeRepository

	auth        *auth.Service
	devices     *device.Service
	automations *automation.Service
	events      *event.Recorder

	redis  *redis.Client
	mqtt   *mqtt.Client
	influx *influxdb.Client
}

// openApp loads configuration, builds the logger and the database manager.
// The connection itself is opened on first use.
func openApp(opts *RootOptions) (*app, error) {
	path := opts.configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Debug("configuration loaded", "path", path, "driver", cfg.Database.Driver)

	db, err := database.NewManager(database.Config{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		Name:         cfg.Database.Name,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		log.Close() //nolint:errcheck // Startup failure
		return nil, fmt.Errorf("creating database manager: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

// wire builds the repositories and services and connects the optional
// session, MQTT and InfluxDB backends.
func (a *app) wire(ctx context.Context) error {
	a.verifier = auth.NewArgon2Verifier()
	a.roles = auth.NewRoleRepository(a.db)
	a.users = auth.NewUserRepository(a.db, a.roles, a.verifier)
	a.users.SetLogger(a.log.Component("auth"))
	a.homes = location.NewHomeRepository(a.db)
	a.locations = location.NewLocationRepository(a.db, a.homes)
	a.locations.SetLogger(a.log.Component("locations"))
	a.states = device.NewStateRepository(a.db)
	a.types = device.NewTypeRepository(a.db)

	devices := device.NewRepository(a.db, device.NewResolver(a.states, a.types, a.locations, a.homes))
	devices.SetLogger(a.log.Component("devices"))
	automations := automation.NewRepository(a.db, a.homes)
	automations.SetLogger(a.log.Component("automations"))

	eventRepo := event.NewRepository(a.db, event.NewResolver(devices, a.users))
	a.events = event.NewRecorder(eventRepo)
	a.events.SetLogger(a.log.Component("events"))

	sessions, err := a.sessionStore(ctx)
	if err != nil {
		return err
	}
	a.auth = auth.NewService(a.users, a.roles, sessions, a.verifier, a.cfg.Auth.DefaultRoleID)
	a.auth.SetLogger(a.log.Component("auth"))

	a.devices = device.NewService(a.db, device.Stores{
		Devices:   devices,
		Types:     a.types,
		States:    a.states,
		Locations: a.locations,
		Homes:     a.homes,
	})
	a.devices.SetLogger(a.log.Component("devices"))
	a.devices.SetEventRecorder(a.events)

	a.automations = automation.NewService(a.db, automations, a.homes)
	a.automations.SetLogger(a.log.Component("automations"))
	a.automations.SetEventRecorder(a.events)

	return a.connectNotifiers()
}

func (a *app) sessionStore(ctx context.Context) (auth.SessionStore, error) {
	ttl := a.cfg.SessionTTL()
	if a.cfg.Session.Backend != "redis" {
		return auth.NewMemorySessionStore(ttl), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Session.Redis.Addr,
		Password: a.cfg.Session.Redis.Password,
		DB:       a.cfg.Session.Redis.DB,
	})
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	a.log.Info("session store connected", "backend", "redis", "addr", a.cfg.Session.Redis.Addr)
	return auth.NewRedisSessionStore(a.redis, ttl), nil
}

// connectNotifiers connects the enabled MQTT and InfluxDB clients and
// subscribes them to device state changes and recorded events.
func (a *app) connectNotifiers() error {
	if a.cfg.MQTT.Enabled {
		client, err := mqtt.Connect(a.cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(a.log.Component("mqtt"))
		a.mqtt = client
		a.log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
			"client_id", a.cfg.MQTT.Broker.ClientID,
		)

		a.devices.AddStateListener(device.StateListenerFunc(func(_ context.Context, c device.StateChange) error {
			return client.PublishDeviceState(mqtt.DeviceState{
				DeviceID:  c.DeviceID,
				Device:    c.DeviceName,
				HomeID:    c.HomeID,
				State:     c.State,
				Timestamp: c.At,
			})
		}))
		a.events.AddListener(event.ListenerFunc(func(_ context.Context, e event.Event) error {
			return client.PublishEvent(eventMessage(e))
		}))
	}

	if a.cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(a.cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		log := a.log.Component("influxdb")
		client.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		a.influx = client
		a.log.Info("InfluxDB connected",
			"url", a.cfg.InfluxDB.URL,
			"org", a.cfg.InfluxDB.Org,
			"bucket", a.cfg.InfluxDB.Bucket,
		)

		a.devices.AddStateListener(device.StateListenerFunc(func(_ context.Context, c device.StateChange) error {
			client.WriteDeviceState(c.DeviceID, c.HomeID, c.State, c.At)
			return nil
		}))
	}
	return nil
}

func eventMessage(e event.Event) mqtt.EventMessage {
	msg := mqtt.EventMessage{
		ID:          e.ID,
		Timestamp:   e.Time,
		Description: e.Description,
		Source:      e.Source,
	}
	if e.Device != nil {
		id := e.Device.ID
		msg.DeviceID = &id
	}
	if e.User != nil {
		msg.UserEmail = e.User.Email
	}
	return msg
}

// healthCheck checks the store and every connected backend, keyed by
// backend name. A nil value means healthy.
func (a *app) healthCheck(ctx context.Context) map[string]error {
	results := map[string]error{"database": a.db.HealthCheck(ctx)}
	if a.redis != nil {
		results["redis"] = a.redis.Ping(ctx).Err()
	}
	if a.mqtt != nil {
		results["mqtt"] = a.mqtt.HealthCheck(ctx)
	}
	if a.influx != nil {
		results["influxdb"] = a.influx.HealthCheck(ctx)
	}
	return results
}

// Close releases every backend in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.mqtt != nil {
		errs = append(errs, a.mqtt.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.db.Disconnect(), a.log.Close())
	return errors.Join(errs...)
}

// withApp opens the app for one command and closes it afterwards. full
// also wires the services.
func withApp(ctx context.Context, opts *RootOptions, full bool, fn func(a *app) error) (err error) {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if full {
		if err := a.wire(ctx); err != nil {
			return err
		}
	}
	return fn(a)
}
