package main

import (
	"fmt"
	"log/slog"

	log "github.com/charmbracelet/log"

	_ "github.com/mhasanin/digibank/docs"
	"github.com/mhasanin/digibank/infra/initializer"
	"github.com/mhasanin/digibank/pkg/app"
	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/webapi"
)

// @title Digibank API
// @version 1.0.0
// @description Digital banking API: accounts, cards, transfers, ATM and teller operations
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	a := app.New(deps, cfg)
	fiberApp := webapi.SetupApp(a)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)
	return fiberApp.Listen(addr)
}
