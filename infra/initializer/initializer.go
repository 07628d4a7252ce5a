// Package initializer builds the application dependency graph from
// configuration: logger, database, unit of work, event bus and the mailer
// subscriptions.
package initializer

import (
	"fmt"

	"github.com/mhasanin/digibank/infra"
	infraeventbus "github.com/mhasanin/digibank/infra/eventbus"
	"github.com/mhasanin/digibank/infra/mailer"
	infrarepository "github.com/mhasanin/digibank/infra/repository"
	"github.com/mhasanin/digibank/pkg/app"
	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/eventbus"
)

// InitializeDependencies initializes all the application dependencies.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return nil, err
	}
	deps.Uow = infrarepository.NewUoW(db)

	var bus eventbus.Bus
	if cfg.Kafka.Brokers != "" {
		bus, err = infraeventbus.NewKafkaBus(cfg.Kafka, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka event bus: %w", err)
		}
	} else {
		bus = infraeventbus.NewMemoryBus(logger)
	}
	deps.EventBus = bus

	mailer.New(cfg.Smtp, logger).SubscribeAll(bus)

	return deps, nil
}
