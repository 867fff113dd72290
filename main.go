package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/config"
	"github.com/angas/gridfees-go/database"
	"github.com/angas/gridfees-go/logging"
	"github.com/angas/gridfees-go/metrics"
	"github.com/angas/gridfees-go/notify"
	"github.com/angas/gridfees-go/tariff"
	"github.com/angas/gridfees-go/task"
	"github.com/angas/gridfees-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("gridfees is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	metrics.Init()

	var mq *notify.MQTT
	if cnfg.Mqtt.Enabled() && !isDevMode() {
		mq = notify.NewMQTT(
			cnfg.Mqtt.Host,
			cnfg.Mqtt.GetPort(),
			cnfg.Mqtt.Username,
			cnfg.Mqtt.Password,
			cnfg.Mqtt.GetTopicPrefix())
		if err := mq.Connect(); err != nil {
			logger.Warn("mqtt connection failed, continuing without notifications", slog.Any("error", err))
			mq = nil
		} else {
			defer mq.Disconnect()
		}
	} else {
		logger.Info("mqtt notifications disabled")
	}

	store, err := tariff.NewStore(cnfg.Tariff.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to load tariff dataset: %v", err))
	}
	recordReload(ctx, logger, db, mq, store.Path(), store.Dataset(), nil)

	var onCalculated www.OnCalculated
	if mq != nil {
		onCalculated = func(req calc.Request, res calc.Result) {
			e := notify.NewCalculationEvent(req.Operator, req.Voltage, req.IsStorage, res.Total)
			if err := mq.Calculated(e); err != nil {
				logger.Warn("failed to publish calculation", slog.Any("error", err))
			}
		}
	}

	server, err := www.NewServer(cnfg.Api, www.Deps{
		Datasets:     store,
		DatasetPath:  store.Path(),
		Logs:         db,
		Reloads:      db,
		OnCalculated: onCalculated,
		Version:      Version,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create server: %v", err))
	}

	store.OnReload(func(ds *tariff.Dataset, err error) {
		e := recordReload(ctx, logger, db, mq, store.Path(), ds, err)
		server.DatasetReloaded(e)
	})

	if cnfg.Tariff.GetWatch() {
		if err := store.Watch(ctx); err != nil {
			logger.Warn("unable to watch tariff dataset", slog.Any("error", err))
		}
	}

	tasks := task.NewTasks(db, store, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		if err := tasks.Run(); err != nil {
			panic(fmt.Sprintf("failed to schedule tasks: %v", err))
		}
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	if err := server.Run(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
	}
}

// recordReload fans a reload attempt out to metrics, the reload history
// and MQTT. ds is nil when the reload failed.
func recordReload(ctx context.Context, logger *slog.Logger, db *database.Database, mq *notify.MQTT, path string, ds *tariff.Dataset, err error) notify.DatasetEvent {
	rows, shadowed := 0, 0
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	if err == nil && ds != nil {
		rows = len(ds.Fees)
		shadowed = len(ds.Duplicates())
	}
	metrics.ObserveDatasetReload(result, rows, shadowed)

	e := notify.NewDatasetEvent(path, rows, shadowed, err)
	if dbErr := db.SaveDatasetReload(ctx, database.DatasetReloadRow{
		Timestamp: e.At,
		Path:      e.Path,
		Rows:      e.Rows,
		Shadowed:  e.Shadowed,
		Error:     e.Error,
	}); dbErr != nil {
		logger.Warn("failed to save dataset reload", slog.Any("error", dbErr))
	}

	if mq != nil {
		if mqErr := mq.DatasetReloaded(e); mqErr != nil {
			logger.Warn("failed to publish dataset reload", slog.Any("error", mqErr))
		}
	}

	return e
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
