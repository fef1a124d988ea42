package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bank-ledger/pkg/api"
	"bank-ledger/pkg/config"
	"bank-ledger/pkg/events"
	"bank-ledger/pkg/events/kafka"
	"bank-ledger/pkg/events/webhook"
	"bank-ledger/pkg/ledger"
	"bank-ledger/pkg/logging"
	promcollector "bank-ledger/pkg/metrics/prometheus"
	"bank-ledger/pkg/model"
	"bank-ledger/pkg/people"
	"bank-ledger/pkg/store"
	"bank-ledger/pkg/store/jsonfile"
	"bank-ledger/pkg/store/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := logging.NewLoggerFromEnv()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	collector := promcollector.NewCollector("ledger")
	if err := collector.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	accounts, transactions, persons, err := openStores(cfg, logger, collector)
	if err != nil {
		return err
	}

	dispatcher := newDispatcher(cfg, logger, collector)
	if dispatcher != nil {
		defer dispatcher.Close()
	}

	txLedger := ledger.NewTransactionLedger(transactions, logger, collector)
	accLedger := ledger.NewAccountLedger(accounts, txLedger, ledger.AccountLedgerConfig{
		Events:  dispatcher,
		Logger:  logger,
		Metrics: collector,
	})
	peopleSvc := people.NewService(persons, logger)

	server := api.NewServer(peopleSvc, accLedger, txLedger, api.ServerConfig{
		Address:      cfg.Addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       logger,
	})
	server.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openStores builds the three collection stores on the configured backend.
func openStores(cfg config.Config, logger *logging.Logger, collector *promcollector.Collector) (
	store.Store[model.Account], store.Store[model.Transaction], store.Store[model.Person], error,
) {
	switch cfg.StoreBackend {
	case config.BackendJSONFile:
		accounts, err := jsonfile.Open[model.Account](jsonfile.Config{
			Entity:  "account",
			Path:    filepath.Join(cfg.DataDir, "accounts.json"),
			Logger:  logger,
			Metrics: collector,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		transactions, err := jsonfile.Open[model.Transaction](jsonfile.Config{
			Entity:  "transaction",
			Path:    filepath.Join(cfg.DataDir, "transactions.json"),
			Logger:  logger,
			Metrics: collector,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		persons, err := jsonfile.Open[model.Person](jsonfile.Config{
			Entity:  "person",
			Path:    filepath.Join(cfg.DataDir, "people.json"),
			Logger:  logger,
			Metrics: collector,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return accounts, transactions, persons, nil

	case config.BackendPostgres:
		db, err := postgres.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		accounts, err := postgres.Open[model.Account](db, postgres.Config{
			Table:   "accounts",
			Entity:  "account",
			Logger:  logger,
			Metrics: collector,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		transactions, err := postgres.Open[model.Transaction](db, postgres.Config{
			Table:   "transactions",
			Entity:  "transaction",
			Logger:  logger,
			Metrics: collector,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		persons, err := postgres.Open[model.Person](db, postgres.Config{
			Table:   "people",
			Entity:  "person",
			Logger:  logger,
			Metrics: collector,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return accounts, transactions, persons, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// newDispatcher wires the configured event publisher, or nil when none is
// configured so the ledger skips publishing entirely.
func newDispatcher(cfg config.Config, logger *logging.Logger, collector *promcollector.Collector) *events.Dispatcher {
	var publisher events.Publisher
	switch {
	case len(cfg.KafkaBrokers) > 0:
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("kafka publisher enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	case cfg.WebhookURL != "":
		publisher = webhook.NewPublisher(webhook.Config{URL: cfg.WebhookURL, Logger: logger})
		logger.Info("webhook publisher enabled", zap.String("url", cfg.WebhookURL))
	default:
		return nil
	}

	return events.NewDispatcher(publisher, events.DispatcherConfig{
		Logger:  logger,
		Metrics: collector,
	})
}
