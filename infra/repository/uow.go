// Package repository implements the repository interfaces on GORM.
package repository

import (
	"context"

	infraaccount "github.com/mhasanin/digibank/infra/repository/account"
	infraapplication "github.com/mhasanin/digibank/infra/repository/application"
	infracard "github.com/mhasanin/digibank/infra/repository/card"
	infraotp "github.com/mhasanin/digibank/infra/repository/otp"
	infratransaction "github.com/mhasanin/digibank/infra/repository/transaction"
	infrauser "github.com/mhasanin/digibank/infra/repository/user"
	"github.com/mhasanin/digibank/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction, so every repository used inside Do shares the same
// transaction session. Accessors called on the root UoW (outside Do) run on
// the base session and commit immediately; the PIN retry counter and OTP
// consumption rely on that.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a database transaction, providing a transaction-bound UoW.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// session returns the transaction when inside Do, the base DB otherwise.
func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return infraaccount.New(u.session()), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return infratransaction.New(u.session()), nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return infrauser.New(u.session()), nil
}

func (u *UoW) CardRepository() (repository.CardRepository, error) {
	return infracard.New(u.session()), nil
}

func (u *UoW) OTPRepository() (repository.OTPRepository, error) {
	return infraotp.New(u.session()), nil
}

func (u *UoW) ApplicationRepository() (repository.ApplicationRepository, error) {
	return infraapplication.New(u.session()), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
