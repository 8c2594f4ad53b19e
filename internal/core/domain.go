package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoCategory labels amounts whose category is missing or no longer exists.
const NoCategory = "(keine)"

// DefaultCurrency is applied to accounts created without a currency.
const DefaultCurrency = "EUR"

const (
	maxNameLength = 100
	maxNoteLength = 500
)

type (
	Account struct {
		ID       int64
		Name     string
		Currency string // label only, never converted
	}

	Category struct {
		ID   int64
		Name string
	}

	// Transaction is a signed ledger movement: positive is income, negative is expense.
	Transaction struct {
		ID         int64
		AccountID  int64
		Amount     decimal.Decimal
		Note       string
		CategoryID *int64
		CreatedAt  time.Time
	}

	// TransactionUpdate overwrites the mutable fields of a transaction in place.
	TransactionUpdate struct {
		Amount     decimal.Decimal
		Note       string
		CategoryID *int64
	}

	// Entry is a transaction as seen by the aggregation engine, with its
	// category name already resolved by the store.
	Entry struct {
		TransactionID int64
		AccountID     int64
		Amount        decimal.Decimal
		Category      string // empty when the category is absent or dangling
		CreatedAt     time.Time
	}
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidYear    = errors.New("invalid year")
	ErrInvalidAccount = errors.New("invalid account id")
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidKind    = errors.New("invalid transaction kind")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyName      = errors.New("empty name")
	ErrTooLong        = errors.New("value too long")
)

// ValidationError ties a rejected input field to the reason it was rejected.
// It matches both ErrValidation and the wrapped reason under errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// NewValidationError wraps err as a validation failure of field.
func NewValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ValidateAccountID rejects identifiers that cannot name an account.
func ValidateAccountID(id int64) error {
	if id < 1 {
		return NewValidationError("account_id", ErrInvalidAccount)
	}
	return nil
}

// Normalize trims the account fields and applies the default currency.
func (a Account) Normalize() Account {
	a.Name = strings.TrimSpace(a.Name)
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	return a
}

func (a Account) Validate() error {
	if a.Name == "" {
		return NewValidationError("name", ErrEmptyName)
	}
	if len(a.Name) > maxNameLength {
		return NewValidationError("name", ErrTooLong)
	}
	if len(a.Currency) > 10 {
		return NewValidationError("currency", ErrTooLong)
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return NewValidationError("name", ErrEmptyName)
	}
	if len(name) > maxNameLength {
		return NewValidationError("name", ErrTooLong)
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := ValidateAccountID(t.AccountID); err != nil {
		return err
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if len(t.Note) > maxNoteLength {
		return NewValidationError("note", ErrTooLong)
	}
	return validateCategoryRef(t.CategoryID)
}

func (u TransactionUpdate) Validate() error {
	if err := ValidateAmount(u.Amount); err != nil {
		return err
	}
	if len(u.Note) > maxNoteLength {
		return NewValidationError("note", ErrTooLong)
	}
	return validateCategoryRef(u.CategoryID)
}

func validateCategoryRef(id *int64) error {
	if id != nil && *id < 1 {
		return NewValidationError("category_id", ErrInvalidID)
	}
	return nil
}

// CategoryLabel returns the grouping label for the entry.
func (e Entry) CategoryLabel() string {
	if strings.TrimSpace(e.Category) == "" {
		return NoCategory
	}
	return e.Category
}

// Timestamp normalizes t to the naive UTC wall clock used throughout the ledger.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Day returns the calendar day that t falls on.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
