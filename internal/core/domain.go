package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

const (
	Food          Category = "Food"
	Shopping      Category = "Shopping"
	Fuel          Category = "Fuel"
	Salary        Category = "Salary"
	Subscription  Category = "Subscription"
	Grocery       Category = "Grocery"
	Personal      Category = "Personal"
	Travel        Category = "Travel"
	Medicine      Category = "Medicine"
	Entertainment Category = "Entertainment"
	Bills         Category = "Bills"
	Education     Category = "Education"
	Investment    Category = "Investment"
	Others        Category = "Others"
)

// MaxDescriptionLength bounds the free-text description of a transaction.
const MaxDescriptionLength = 200

// Dates must fit a four-digit RFC 3339 year.
const (
	MinYear = 1
	MaxYear = 9999
)

type (
	// TxType tags a transaction as money coming in or going out.
	TxType string

	// Category labels the purpose of a transaction. Values outside the known
	// catalogue are carried verbatim.
	Category string

	// Transaction is a record as read back from a transaction store.
	// Amount is kept in its stored textual form and parsed on use, so a
	// record with a malformed amount can still be listed and reported on.
	Transaction struct {
		ID          string
		Owner       string
		Amount      string
		Category    Category
		Type        TxType
		Date        time.Time
		Description string
	}

	// NewTransaction carries the caller-supplied fields for create and update.
	NewTransaction struct {
		Amount      string
		Category    Category
		Type        TxType
		Date        time.Time
		Description string
	}
)

var (
	ErrEmptyAmount        = errors.New("empty amount")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("negative amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrDateOutOfRange     = fmt.Errorf("date must fall between years %d and %d", MinYear, MaxYear)
	ErrEmptyCategory      = errors.New("empty category")
)

// ValidationError names the offending field alongside the underlying cause.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var knownCategories = []Category{
	Food, Shopping, Fuel, Salary, Subscription, Grocery, Personal,
	Travel, Medicine, Entertainment, Bills, Education, Investment, Others,
}

// Categories returns the known category catalogue in display order.
func Categories() []Category {
	return append([]Category(nil), knownCategories...)
}

// IsKnown reports whether c belongs to the known catalogue.
func (c Category) IsKnown() bool {
	for _, k := range knownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// Known returns c when it is part of the catalogue and Others otherwise.
// Grouping never uses this; it exists for callers that need a closed set.
func (c Category) Known() Category {
	if c.IsKnown() {
		return c
	}
	return Others
}

func (c Category) String() string {
	return string(c)
}

// ParseTxType accepts exactly "Income" or "Expense".
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(strings.TrimSpace(s)); t {
	case Income, Expense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

func (t TxType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TxType) String() string {
	return string(t)
}

// Validate enforces the creation rules: a parseable non-negative amount, a
// non-empty description, a known type and a date.
func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.Amount) == "" {
		return &ValidationError{Field: "amount", Err: ErrEmptyAmount}
	}
	if _, err := ParseAmount(n.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if len(strings.TrimSpace(n.Description)) == 0 {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if len(n.Description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	if !n.Type.IsValid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if strings.TrimSpace(string(n.Category)) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if n.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrZeroDate}
	}
	if y := n.Date.Year(); y < MinYear || y > MaxYear {
		return &ValidationError{Field: "date", Err: ErrDateOutOfRange}
	}
	return nil
}

// Normalize trims the textual fields and canonicalises the amount.
// It must only be called on a validated value.
func (n NewTransaction) Normalize() NewTransaction {
	out := n
	out.Description = strings.TrimSpace(n.Description)
	out.Category = Category(strings.TrimSpace(string(n.Category)))
	if v, err := ParseAmount(n.Amount); err == nil {
		out.Amount = v.String()
	}
	return out
}

// Record builds the stored form of n for the given id and owner.
func (n NewTransaction) Record(id, owner string) Transaction {
	return Transaction{
		ID:          id,
		Owner:       owner,
		Amount:      n.Amount,
		Category:    n.Category,
		Type:        n.Type,
		Date:        n.Date,
		Description: n.Description,
	}
}
