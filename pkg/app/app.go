// Package app wires configuration, infrastructure dependencies and services
// into one application object consumed by the web layer.
package app

import (
	"log/slog"

	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/eventbus"
	"github.com/mhasanin/digibank/pkg/repository"
	accountsvc "github.com/mhasanin/digibank/pkg/service/account"
	atmsvc "github.com/mhasanin/digibank/pkg/service/atm"
	authsvc "github.com/mhasanin/digibank/pkg/service/auth"
	cardsvc "github.com/mhasanin/digibank/pkg/service/card"
	otpsvc "github.com/mhasanin/digibank/pkg/service/otp"
	tellersvc "github.com/mhasanin/digibank/pkg/service/teller"
	usersvc "github.com/mhasanin/digibank/pkg/service/user"
)

// Deps contains the infrastructure dependencies the services are built on.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

// App holds the configured services.
type App struct {
	Deps   *Deps
	Config *config.App

	AuthService    *authsvc.Service
	UserService    *usersvc.Service
	OTPService     *otpsvc.Service
	AccountService *accountsvc.Service
	CardService    *cardsvc.Service
	ATMService     *atmsvc.Service
	TellerService  *tellersvc.Service
}

// New builds the service graph.
func New(deps *Deps, cfg *config.App) *App {
	a := &App{Deps: deps, Config: cfg}

	a.AuthService = authsvc.New(deps.Uow, cfg.Auth.Jwt, deps.Logger)
	a.OTPService = otpsvc.New(deps.Uow, deps.EventBus, cfg.Otp.TTL, deps.Logger)
	a.UserService = usersvc.New(deps.Uow, a.OTPService, deps.Logger)
	a.CardService = cardsvc.New(deps.Uow, a.OTPService, deps.EventBus, deps.Logger)
	a.AccountService = accountsvc.New(deps.Uow, a.CardService, a.OTPService, deps.EventBus, deps.Logger)
	a.ATMService = atmsvc.New(deps.Uow, a.CardService, a.AccountService, deps.Logger)
	a.TellerService = tellersvc.New(a.AccountService, a.CardService, deps.Logger)
	return a
}
