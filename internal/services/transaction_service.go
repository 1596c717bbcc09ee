// Package services implements the use cases behind the HTTP API: recording
// transactions and building the dashboard, balance and weekly reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"expensemate/internal/amqp"
	"expensemate/internal/core"
	applog "expensemate/internal/log"
	"expensemate/internal/report"
	"expensemate/internal/store"
)

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 10

// EventPublisher receives a change event after every successful write.
type EventPublisher interface {
	Publish(ctx context.Context, ev amqp.TransactionEvent) error
}

type TransactionService struct {
	txs    store.TransactionStore
	prefs  store.PreferenceStore
	events EventPublisher
	loc    *time.Location
	now    func() time.Time
	logger *applog.Logger
}

type Option func(*TransactionService)

// WithLocation sets the zone reporting periods are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *TransactionService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *TransactionService) { s.logger = l.WithComponent(applog.ComponentService) }
}

// WithEvents enables change-event publishing. A nil publisher disables it.
func WithEvents(p EventPublisher) Option {
	return func(s *TransactionService) { s.events = p }
}

func NewTransactionService(txs store.TransactionStore, prefs store.PreferenceStore, opts ...Option) *TransactionService {
	s := &TransactionService{
		txs:    txs,
		prefs:  prefs,
		loc:    time.Local,
		now:    time.Now,
		logger: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentService),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the zone used for reporting periods and date-only input.
func (s *TransactionService) Location() *time.Location {
	return s.loc
}

// reference is the instant every period is measured against.
func (s *TransactionService) reference() time.Time {
	return s.now().In(s.loc)
}

func (s *TransactionService) Categories() []core.Category {
	return core.Categories()
}

func (s *TransactionService) Add(ctx context.Context, owner string, n core.NewTransaction) (core.Transaction, error) {
	tx, err := s.txs.Create(ctx, owner, n)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction created",
		applog.NewFields().WithOwner(owner).WithTransaction(tx).WithOperation(applog.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.NewTransactionEvent(amqp.OpCreated, tx.ID, owner))
	return tx, nil
}

func (s *TransactionService) List(ctx context.Context, owner string) ([]core.Transaction, error) {
	txs, err := s.txs.ListAll(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Search(ctx context.Context, owner, query string) ([]core.Transaction, error) {
	txs, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return report.Search(txs, query), nil
}

// owned returns the record with id if it belongs to owner, else store.ErrNotFound.
func (s *TransactionService) owned(ctx context.Context, owner, id string) (core.Transaction, error) {
	tx, err := s.txs.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Owner != owner {
		return core.Transaction{}, fmt.Errorf("get %s: %w", id, store.ErrNotFound)
	}
	return tx, nil
}

func (s *TransactionService) Update(ctx context.Context, owner, id string, n core.NewTransaction) (core.Transaction, error) {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	tx, err := s.txs.Update(ctx, id, n)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction updated",
		applog.NewFields().WithOwner(owner).WithTransaction(tx).WithOperation(applog.OpUpdate).ToSlice()...)
	s.publish(ctx, amqp.NewTransactionEvent(amqp.OpUpdated, tx.ID, owner))
	return tx, nil
}

// Delete removes one transaction. Unknown ids, and ids of other owners, are a no-op.
func (s *TransactionService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.txs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOwner, owner, applog.FieldTxID, id, applog.FieldOperation, applog.OpDelete)
	s.publish(ctx, amqp.NewTransactionEvent(amqp.OpDeleted, id, owner))
	return nil
}

func (s *TransactionService) DeleteAll(ctx context.Context, owner string) error {
	if err := s.txs.DeleteAll(ctx, owner); err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	s.logger.InfoContext(ctx, "All transactions deleted", applog.FieldOwner, owner)
	s.publish(ctx, amqp.NewTransactionEvent(amqp.OpPurged, "", owner))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, ev amqp.TransactionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.NewFields().WithError(err).WithOwner(ev.Owner).WithOperation(applog.OpSync).ToSlice()...)
	}
}

// mergeSkipped appends the records of more not already in base.
func mergeSkipped(base, more []core.MalformedAmount) []core.MalformedAmount {
	if len(more) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base))
	for _, m := range base {
		seen[m.ID] = true
	}
	out := append([]core.MalformedAmount(nil), base...)
	for _, m := range more {
		if !seen[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

func (s *TransactionService) warnSkipped(ctx context.Context, owner string, skipped []core.MalformedAmount) {
	if len(skipped) == 0 {
		return
	}
	s.logger.WarnContext(ctx, "Transactions with malformed amounts excluded from totals",
		applog.FieldOwner, owner, applog.SkippedAttr(skipped))
}

// Dashboard is the home screen for one period.
type Dashboard struct {
	Filter report.Filter
	Label  string
	Totals core.Totals
	// Budget is evaluated against the current month whatever the filter.
	Budget report.BudgetStatus
	Recent []core.Transaction
}

// Dashboard builds the summary for filter. Unknown filters select everything.
func (s *TransactionService) Dashboard(ctx context.Context, owner string, filter report.Filter) (Dashboard, error) {
	var (
		txs    []core.Transaction
		budget decimal.NullDecimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.txs.ListAll(gctx, owner)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budget, err = s.prefs.MonthlyBudget(gctx, owner)
		if err != nil {
			return fmt.Errorf("monthly budget: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	ref := s.reference()
	filtered := report.Apply(txs, filter, ref)
	totals := report.Aggregate(filtered)

	month := totals
	skipped := totals.Skipped
	if filter != report.Month {
		month = report.Aggregate(report.Apply(txs, report.Month, ref))
		skipped = mergeSkipped(skipped, month.Skipped)
	}
	s.warnSkipped(ctx, owner, skipped)

	s.logger.DebugContext(ctx, "Dashboard built",
		applog.NewFields().WithOwner(owner).WithFilter(string(filter)).WithOperation(applog.OpReport).ToSlice()...)

	return Dashboard{
		Filter: filter,
		Label:  report.FormatLabel(filter, ref),
		Totals: totals,
		Budget: report.EvaluateBudget(month.Expense, budget),
		Recent: report.Recent(filtered, RecentLimit),
	}, nil
}

// Balance is the all-time summary.
type Balance struct {
	Totals       core.Totals
	IncomeCount  int
	ExpenseCount int
}

func (s *TransactionService) Balance(ctx context.Context, owner string) (Balance, error) {
	txs, err := s.List(ctx, owner)
	if err != nil {
		return Balance{}, err
	}
	totals := report.Aggregate(txs)
	s.warnSkipped(ctx, owner, totals.Skipped)
	in, out := report.Counts(txs)
	return Balance{Totals: totals, IncomeCount: in, ExpenseCount: out}, nil
}

// WeeklyReport pairs the per-day series with the category breakdown.
type WeeklyReport struct {
	Series    report.WeekSeries
	Breakdown report.Breakdown
}

// Weekly reports on the seven days from weekStart. A zero weekStart selects
// the Monday of the current week.
func (s *TransactionService) Weekly(ctx context.Context, owner string, weekStart time.Time, typ core.TxType) (WeeklyReport, error) {
	if !typ.IsValid() {
		return WeeklyReport{}, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	if weekStart.IsZero() {
		weekStart = report.WeekStart(s.reference())
	}
	txs, err := s.List(ctx, owner)
	if err != nil {
		return WeeklyReport{}, err
	}
	series := report.BuildWeek(txs, weekStart)
	s.warnSkipped(ctx, owner, series.Skipped)
	return WeeklyReport{
		Series:    series,
		Breakdown: report.BuildBreakdown(txs, weekStart, typ),
	}, nil
}

func (s *TransactionService) Budget(ctx context.Context, owner string) (decimal.NullDecimal, error) {
	b, err := s.prefs.MonthlyBudget(ctx, owner)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("monthly budget: %w", err)
	}
	return b, nil
}

// SetBudget parses raw with the transaction amount rules and stores it.
func (s *TransactionService) SetBudget(ctx context.Context, owner, raw string) (decimal.Decimal, error) {
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return decimal.Decimal{}, &core.ValidationError{Field: "budget", Err: err}
	}
	if err := s.prefs.SetMonthlyBudget(ctx, owner, amount); err != nil {
		return decimal.Decimal{}, fmt.Errorf("set monthly budget: %w", err)
	}
	return amount, nil
}

func (s *TransactionService) RemoveBudget(ctx context.Context, owner string) error {
	if err := s.prefs.RemoveMonthlyBudget(ctx, owner); err != nil {
		return fmt.Errorf("remove monthly budget: %w", err)
	}
	return nil
}
