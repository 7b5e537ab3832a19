// chardevd hosts a single message-slot character device.
//
// The daemon registers the device with its host registry (major number,
// class, node), then exposes the device's Open/Read/Write/Close entry
// points over HTTP and, optionally, MQTT. On shutdown the registration
// is torn down in reverse order.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/madmax/chardev-core/internal/api"
	"github.com/madmax/chardev-core/internal/chardev"
	"github.com/madmax/chardev-core/internal/endpoint"
	"github.com/madmax/chardev-core/internal/hostos"
	"github.com/madmax/chardev-core/internal/infrastructure/config"
	"github.com/madmax/chardev-core/internal/infrastructure/database"
	"github.com/madmax/chardev-core/internal/infrastructure/influxdb"
	"github.com/madmax/chardev-core/internal/infrastructure/logging"
	"github.com/madmax/chardev-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting chardevd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Pick the host registry: SQLite-backed when the database is
	// enabled, in-memory otherwise.
	var host hostos.Host
	if cfg.Database.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		host, err = hostos.NewSQLiteHost(ctx, db)
		if err != nil {
			return fmt.Errorf("creating host registry: %w", err)
		}
	} else {
		host = hostos.NewMemoryHost()
		log.Info("using in-memory host registry")
	}

	// Register the device
	controller := chardev.NewController(host, cfg.Device.Name, cfg.Device.Class)
	controller.SetLogger(log.With("component", "chardev"))

	identity, err := controller.Init(ctx)
	if err != nil {
		return fmt.Errorf("initialising device: %w", err)
	}
	defer controller.Exit(context.WithoutCancel(ctx))
	log.Info("device registered",
		"name", cfg.Device.Name,
		"major", identity.Major,
		"node", identity.Node.Name,
	)

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		controller.SetRecorder(&telemetryRecorder{device: cfg.Device.Name, client: influxClient})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT and start the device endpoint (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.With("component", "mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		ep := endpoint.New(controller, mqttClient, byte(cfg.MQTT.QoS))
		ep.SetLogger(log.With("component", "endpoint"))
		if startErr := ep.Start(); startErr != nil {
			return fmt.Errorf("starting device endpoint: %w", startErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Start the HTTP surface
	server := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log.With("component", "api"),
		Device:  controller,
		Version: version,
	})
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting http server: %w", err)
	}
	defer func() {
		log.Info("stopping http server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping http server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred teardown runs in reverse acquisition order:
	// HTTP server, MQTT, InfluxDB, device Exit, database.

	return nil
}

// getConfigPath returns the configuration file path.
// Uses CHARDEV_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CHARDEV_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// telemetryRecorder adapts the InfluxDB client to the controller's
// Recorder interface.
type telemetryRecorder struct {
	device string
	client *influxdb.Client
}

// RecordOp implements chardev.Recorder.
func (t *telemetryRecorder) RecordOp(op string, bytes int) {
	t.client.WriteDeviceOp(t.device, op, bytes)
}

// RecordOpenCount implements chardev.Recorder.
func (t *telemetryRecorder) RecordOpenCount(count int64) {
	t.client.WriteOpenCount(t.device, count)
}
