package repository

import (
	"context"
)

// UnitOfWork is the transaction boundary for repository access.
//
// Do runs the given function inside a database transaction; every repository
// obtained from the UnitOfWork passed to fn is bound to that transaction, so
// a transfer's four writes commit or roll back together. Repositories
// obtained from the root UnitOfWork (outside Do) run on the base session and
// commit immediately — PIN retry-counter updates use that, since they must
// survive the rollback of the operation that failed the PIN check.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error,
	// the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	UserRepository() (UserRepository, error)
	CardRepository() (CardRepository, error)
	OTPRepository() (OTPRepository, error)
	ApplicationRepository() (ApplicationRepository, error)
}
