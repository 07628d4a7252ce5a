package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/mhasanin/digibank/infra"
	infrarepository "github.com/mhasanin/digibank/infra/repository"
	accountmodel "github.com/mhasanin/digibank/infra/repository/account"
	applicationmodel "github.com/mhasanin/digibank/infra/repository/application"
	cardmodel "github.com/mhasanin/digibank/infra/repository/card"
	otpmodel "github.com/mhasanin/digibank/infra/repository/otp"
	transactionmodel "github.com/mhasanin/digibank/infra/repository/transaction"
	usermodel "github.com/mhasanin/digibank/infra/repository/user"
	"github.com/mhasanin/digibank/pkg/config"
	"github.com/mhasanin/digibank/pkg/domain/user"
	"github.com/mhasanin/digibank/pkg/repository"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load(".env")
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		err = db.AutoMigrate(
			&usermodel.User{},
			&accountmodel.Account{},
			&transactionmodel.Transaction{},
			&cardmodel.Card{},
			&otpmodel.OTP{},
			&applicationmodel.Application{},
		)
		if err != nil {
			color.Red("Migration failed: %v", err)
			os.Exit(1)
		}
		color.Green("Migration complete")
	case "create-admin":
		createUser(infrarepository.NewUoW(db), user.RoleAdmin)
	case "create-teller":
		createUser(infrarepository.NewUoW(db), user.RoleTeller)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  migrate                          run schema migrations")
	fmt.Println("  create-admin <username> <email>  create an admin user")
	fmt.Println("  create-teller <username> <email> create a teller user")
}

func createUser(uow repository.UnitOfWork, role user.Role) {
	if len(os.Args) < 4 {
		usage()
		os.Exit(1)
	}
	username, email := os.Args[2], os.Args[3]

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		color.Red("Failed to read password: %v", err)
		os.Exit(1)
	}

	u, err := user.NewWithRole(username, email, string(password), role)
	if err != nil {
		color.Red("Invalid user: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	err = uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if existing, _ := users.GetByUsername(ctx, username); existing != nil {
			return user.ErrUserExists
		}
		if existing, _ := users.GetByEmail(ctx, email); existing != nil {
			return user.ErrUserExists
		}
		return users.Create(ctx, u)
	})
	if err != nil {
		color.Red("Failed to create user: %v", err)
		os.Exit(1)
	}
	color.Green("%s user %q created (id=%s)", role, username, u.ID)
}
