// Package testutils provides an in-memory UnitOfWork and repositories for
// service tests. The fakes copy values on the way in and out so tests see
// the same aliasing behavior a real store would give them.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mhasanin/digibank/pkg/domain/account"
	"github.com/mhasanin/digibank/pkg/domain/card"
	"github.com/mhasanin/digibank/pkg/domain/otp"
	"github.com/mhasanin/digibank/pkg/domain/user"
	"github.com/mhasanin/digibank/pkg/repository"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeUoW is an in-memory UnitOfWork. Do runs the function directly on the
// same store; there is no rollback, so tests asserting rollback behavior
// need the real database.
type FakeUoW struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]account.Account
	transactions map[uuid.UUID]account.Transaction
	users        map[uuid.UUID]user.User
	cards        map[uuid.UUID]card.Card
	otps         map[uuid.UUID]otp.OTP
	applications map[uuid.UUID]account.Application
}

// NewFakeUoW creates an empty in-memory store.
func NewFakeUoW() *FakeUoW {
	return &FakeUoW{
		accounts:     make(map[uuid.UUID]account.Account),
		transactions: make(map[uuid.UUID]account.Transaction),
		users:        make(map[uuid.UUID]user.User),
		cards:        make(map[uuid.UUID]card.Card),
		otps:         make(map[uuid.UUID]otp.OTP),
		applications: make(map[uuid.UUID]account.Application),
	}
}

func (f *FakeUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(f)
}

func (f *FakeUoW) AccountRepository() (repository.AccountRepository, error) {
	return &fakeAccounts{f}, nil
}

func (f *FakeUoW) TransactionRepository() (repository.TransactionRepository, error) {
	return &fakeTransactions{f}, nil
}

func (f *FakeUoW) UserRepository() (repository.UserRepository, error) {
	return &fakeUsers{f}, nil
}

func (f *FakeUoW) CardRepository() (repository.CardRepository, error) {
	return &fakeCards{f}, nil
}

func (f *FakeUoW) OTPRepository() (repository.OTPRepository, error) {
	return &fakeOTPs{f}, nil
}

func (f *FakeUoW) ApplicationRepository() (repository.ApplicationRepository, error) {
	return &fakeApplications{f}, nil
}

var _ repository.UnitOfWork = (*FakeUoW)(nil)

// SeedUser stores a user directly.
func (f *FakeUoW) SeedUser(u *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = *u
}

// SeedAccount stores an account directly.
func (f *FakeUoW) SeedAccount(a *account.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.ID] = *a
}

// SeedCard stores a card directly.
func (f *FakeUoW) SeedCard(c *card.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[c.ID] = *c
}

// SeedOTP stores a code directly.
func (f *FakeUoW) SeedOTP(o *otp.OTP) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps[o.ID] = *o
}

// SeedTransaction stores a ledger row directly.
func (f *FakeUoW) SeedTransaction(tx *account.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions[tx.ID] = *tx
}

// SeedApplication stores an application directly.
func (f *FakeUoW) SeedApplication(ap *account.Application) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applications[ap.ID] = *ap
}

// Card returns the stored card state.
func (f *FakeUoW) Card(id uuid.UUID) *card.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return nil
	}
	return &c
}

// Account returns the stored account state.
func (f *FakeUoW) Account(id uuid.UUID) *account.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil
	}
	return &a
}

// Transactions returns all stored ledger rows, oldest first.
func (f *FakeUoW) Transactions() []account.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]account.Transaction, 0, len(f.transactions))
	for _, t := range f.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// LatestOTP returns the newest unconsumed code for (user, purpose).
func (f *FakeUoW) LatestOTP(userID uuid.UUID, purpose otp.Purpose) *otp.OTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *otp.OTP
	for id := range f.otps {
		o := f.otps[id]
		if o.UserID != userID || o.Purpose != purpose || o.Consumed {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			cp := o
			latest = &cp
		}
	}
	return latest
}

type fakeAccounts struct{ f *FakeUoW }

func (r *fakeAccounts) Create(ctx context.Context, a *account.Account) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.accounts {
		if existing.Number == a.Number {
			return account.ErrDuplicateNumber
		}
		if a.Status == account.StatusActive &&
			existing.Status == account.StatusActive &&
			existing.UserID == a.UserID && existing.Type == a.Type {
			return account.ErrDuplicateAccount
		}
	}
	r.f.accounts[a.ID] = *a
	return nil
}

func (r *fakeAccounts) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return &a, nil
}

func (r *fakeAccounts) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.Get(ctx, id)
}

func (r *fakeAccounts) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id := range r.f.accounts {
		a := r.f.accounts[id]
		if a.Number == number {
			return &a, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *fakeAccounts) GetActiveByUserAndType(
	ctx context.Context,
	userID uuid.UUID,
	t account.Type,
) (*account.Account, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id := range r.f.accounts {
		a := r.f.accounts[id]
		if a.UserID == userID && a.Type == t && a.Status == account.StatusActive {
			return &a, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *fakeAccounts) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*account.Account
	for id := range r.f.accounts {
		a := r.f.accounts[id]
		if a.UserID == userID {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *fakeAccounts) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	a.Balance = balance
	r.f.accounts[id] = a
	return nil
}

func (r *fakeAccounts) UpdateStatus(ctx context.Context, id uuid.UUID, status account.Status) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	a.Status = status
	r.f.accounts[id] = a
	return nil
}

type fakeTransactions struct{ f *FakeUoW }

func (r *fakeTransactions) Create(ctx context.Context, tx *account.Transaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.transactions[tx.ID] = *tx
	return nil
}

func (r *fakeTransactions) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.transactions[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return &t, nil
}

func (r *fakeTransactions) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*account.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var all []account.Transaction
	for id := range r.f.transactions {
		t := r.f.transactions[id]
		if (t.FromAccountID != nil && *t.FromAccountID == accountID) ||
			(t.ToAccountID != nil && *t.ToAccountID == accountID) {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	out := make([]*account.Transaction, 0, len(all))
	for i := range all {
		out = append(out, &all[i])
	}
	return out, nil
}

func (r *fakeTransactions) SumDebitsSince(
	ctx context.Context,
	accountID uuid.UUID,
	since time.Time,
) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var sum int64
	for _, t := range r.f.transactions {
		if t.FromAccountID != nil && *t.FromAccountID == accountID &&
			isDebitType(t.Type) && t.Status == account.TxSuccess &&
			!t.CreatedAt.Before(since) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func isDebitType(t account.TxType) bool {
	return t == account.TxDebit || t == account.TxWithdraw
}

func (r *fakeTransactions) CountDebitsSince(
	ctx context.Context,
	accountID uuid.UUID,
	since time.Time,
) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, t := range r.f.transactions {
		if t.FromAccountID != nil && *t.FromAccountID == accountID &&
			isDebitType(t.Type) && t.Status == account.TxSuccess &&
			!t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeUsers struct{ f *FakeUoW }

func (r *fakeUsers) Create(ctx context.Context, u *user.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.users[u.ID] = *u
	return nil
}

func (r *fakeUsers) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUsers) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id := range r.f.users {
		u := r.f.users[id]
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id := range r.f.users {
		u := r.f.users[id]
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUsers) Update(ctx context.Context, u *user.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.f.users[u.ID] = *u
	return nil
}

func (r *fakeUsers) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var all []user.User
	for id := range r.f.users {
		all = append(all, r.f.users[id])
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	out := make([]*user.User, 0, len(all))
	for i := range all {
		out = append(out, &all[i])
	}
	return out, nil
}

type fakeCards struct{ f *FakeUoW }

func (r *fakeCards) Create(ctx context.Context, c *card.Card) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.cards[c.ID] = *c
	return nil
}

func (r *fakeCards) Get(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.cards[id]
	if !ok {
		return nil, card.ErrCardNotFound
	}
	return &c, nil
}

func (r *fakeCards) GetByNumber(ctx context.Context, number string) (*card.Card, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id := range r.f.cards {
		c := r.f.cards[id]
		if c.Number == number {
			return &c, nil
		}
	}
	return nil, card.ErrCardNotFound
}

func (r *fakeCards) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*card.Card, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id := range r.f.cards {
		c := r.f.cards[id]
		if c.UserID == userID && c.Status == card.StatusActive {
			return &c, nil
		}
	}
	return nil, card.ErrCardNotFound
}

func (r *fakeCards) ListRequested(ctx context.Context) ([]*card.Card, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*card.Card
	for id := range r.f.cards {
		c := r.f.cards[id]
		if c.Status == card.StatusRequested {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeCards) Update(ctx context.Context, c *card.Card) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.cards[c.ID]; !ok {
		return card.ErrCardNotFound
	}
	r.f.cards[c.ID] = *c
	return nil
}

func (r *fakeCards) UpdateRetry(
	ctx context.Context,
	id uuid.UUID,
	from, to int,
	blocked bool,
	blockType card.BlockType,
) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.cards[id]
	if !ok || c.RetryCount != from {
		return card.ErrRetryConflict
	}
	c.RetryCount = to
	c.Blocked = blocked
	c.BlockType = blockType
	r.f.cards[id] = c
	return nil
}

func (r *fakeCards) ResetRetry(ctx context.Context, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	c, ok := r.f.cards[id]
	if !ok {
		return card.ErrCardNotFound
	}
	c.RetryCount = 0
	r.f.cards[id] = c
	return nil
}

type fakeOTPs struct{ f *FakeUoW }

func (r *fakeOTPs) Create(ctx context.Context, o *otp.OTP) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.otps[o.ID] = *o
	return nil
}

func (r *fakeOTPs) GetLatest(
	ctx context.Context,
	userID uuid.UUID,
	purpose otp.Purpose,
) (*otp.OTP, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var latest *otp.OTP
	for id := range r.f.otps {
		o := r.f.otps[id]
		if o.UserID != userID || o.Purpose != purpose || o.Consumed {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			cp := o
			latest = &cp
		}
	}
	if latest == nil {
		return nil, otp.ErrOTPNotFound
	}
	return latest, nil
}

func (r *fakeOTPs) InvalidateAll(ctx context.Context, userID uuid.UUID, purpose otp.Purpose) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, o := range r.f.otps {
		if o.UserID == userID && o.Purpose == purpose && !o.Consumed {
			o.Consumed = true
			r.f.otps[id] = o
		}
	}
	return nil
}

func (r *fakeOTPs) Consume(ctx context.Context, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o, ok := r.f.otps[id]
	if !ok || o.Consumed {
		return otp.ErrOTPConsumed
	}
	o.Consumed = true
	r.f.otps[id] = o
	return nil
}

type fakeApplications struct{ f *FakeUoW }

func (r *fakeApplications) Create(ctx context.Context, ap *account.Application) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.applications[ap.ID] = *ap
	return nil
}

func (r *fakeApplications) Get(ctx context.Context, id uuid.UUID) (*account.Application, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	ap, ok := r.f.applications[id]
	if !ok {
		return nil, account.ErrApplicationNotFound
	}
	return &ap, nil
}

func (r *fakeApplications) ListByStatus(
	ctx context.Context,
	status account.ApplicationStatus,
) ([]*account.Application, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*account.Application
	for id := range r.f.applications {
		ap := r.f.applications[id]
		if ap.Status == status {
			out = append(out, &ap)
		}
	}
	return out, nil
}

func (r *fakeApplications) Update(ctx context.Context, ap *account.Application) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.applications[ap.ID]; !ok {
		return account.ErrApplicationNotFound
	}
	r.f.applications[ap.ID] = *ap
	return nil
}
