package services

import (
	"context"
	"fmt"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/seed"
)

var eventOps = map[amqp.EventType]string{
	amqp.TransactionCreated: log.OpCreate,
	amqp.TransactionUpdated: log.OpUpdate,
	amqp.TransactionDeleted: log.OpDelete,
}

// EventPublisher is the outbound side of the ledger event stream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.LedgerEvent) error
	Close() error
}

// LedgerService orchestrates ledger writes across the store and AMQP.
// The store is the source of truth; events are published after a write
// has succeeded and a failed publish never fails the request.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
}

func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

func (s *LedgerService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	if err := (core.Category{Name: name}).Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// SeedCategories creates the given default categories in an empty ledger.
func (s *LedgerService) SeedCategories(ctx context.Context, names []string) (int, error) {
	return seed.EnsureCategories(ctx, s.store, names)
}

// CreateTransaction saves a transaction and announces it.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.TransactionCreated, created)
	return created, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	if id < 1 {
		return core.Transaction{}, core.NewValidationError("id", core.ErrInvalidID)
	}
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns every transaction of every account.
func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// FilterTransactions lists the transactions of one account in a year, or in
// a single month of it when month is non-zero.
func (s *LedgerService) FilterTransactions(ctx context.Context, accountID int64, year, month int) ([]core.Transaction, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	var (
		p   core.Period
		err error
	)
	if month == 0 {
		p, err = core.YearPeriod(year)
	} else {
		p, err = core.MonthPeriod(year, month)
	}
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, ledger.TransactionFilter{AccountID: accountID, Period: &p})
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error) {
	if id < 1 {
		return core.Transaction{}, core.NewValidationError("id", core.ErrInvalidID)
	}
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, id, u)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.TransactionUpdated, updated)
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	if id < 1 {
		return core.Transaction{}, core.NewValidationError("id", core.ErrInvalidID)
	}
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.TransactionDeleted, deleted)
	return deleted, nil
}

func (s *LedgerService) publish(ctx context.Context, typ amqp.EventType, tx core.Transaction) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentLedger)
	log.NewStructuredLogger(logger).LogTransaction(ctx, eventOps[typ], tx)

	if s.publisher == nil {
		logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event", log.FieldEventType, string(typ))
		return
	}
	ev := amqp.NewLedgerEvent(typ, tx)
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		// The write is already committed; the worker catches up on its next startup export.
		log.NewStructuredLogger(logger).LogError(ctx, "Failed to publish ledger event", err, log.ComponentAMQP, "publish",
			log.NewFields().WithEvent(ev.ID, string(typ)).WithAccount(tx.AccountID))
	}
}

// Close closes both the store and the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
