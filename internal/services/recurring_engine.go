package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"portfel/internal/core"
	"portfel/internal/ports"
)

// RolloverResult summarises one engine pass.
type RolloverResult struct {
	Checked    int `json:"checked"`
	RolledOver int `json:"rolledOver"`
	Failed     int `json:"failed"`
}

// Changed reports whether any subscription advanced during the pass.
func (r RolloverResult) Changed() bool {
	return r.RolledOver > 0
}

// RecurringEngine materialises due subscription occurrences. Each pass looks
// at a snapshot of live subscriptions, so one period advances per invocation.
type RecurringEngine struct {
	store     ports.TransactionStore
	publisher ports.RolloverPublisher
	newID     func() string
	loc       *time.Location
}

type EngineOption func(*RecurringEngine)

// WithPublisher notifies p after every successful rollover.
func WithPublisher(p ports.RolloverPublisher) EngineOption {
	return func(e *RecurringEngine) { e.publisher = p }
}

func WithIDGenerator(fn func() string) EngineOption {
	return func(e *RecurringEngine) { e.newID = fn }
}

// WithLocation sets the calendar used for month and year arithmetic.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *RecurringEngine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewRecurringEngine(store ports.TransactionStore, opts ...EngineOption) *RecurringEngine {
	e := &RecurringEngine{
		store: store,
		newID: uuid.NewString,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessDue rolls over every live subscription whose next due date is not
// after now. Failures on a single subscription are logged and counted; only a
// failure to list transactions, or a cancelled context, aborts the pass.
func (e *RecurringEngine) ProcessDue(ctx context.Context, now time.Time) (RolloverResult, error) {
	var result RolloverResult
	if e.store == nil {
		return result, fmt.Errorf("recurring engine not properly initialized")
	}

	all, err := e.store.ListTransactions(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list transactions: %w", err)
	}

	live := make([]core.Transaction, 0)
	for _, t := range all {
		if t.IsRecurring {
			live = append(live, t)
		}
	}

	slog.DebugContext(ctx, "Processing recurring transactions",
		"total_live", len(live),
		"now", now.In(e.loc).Format(time.RFC3339))

	for _, t := range live {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		due := NextDueDate(t.Date, t.Frequency, e.loc)
		if due.After(now) {
			continue
		}

		archived := t
		archived.IsRecurring = false
		archived.WasRecurring = true
		next := cloneOccurrence(t, e.newID(), due)

		// Both writes land together or not at all.
		if err := e.store.Rollover(ctx, archived, &next); err != nil {
			result.Failed++
			slog.ErrorContext(ctx, "Failed to roll over recurring transaction",
				"transaction_id", t.ID,
				"due_date", due.Format(time.RFC3339),
				"error", err)
			continue
		}
		result.RolledOver++

		slog.InfoContext(ctx, "Rolled over recurring transaction",
			"transaction_id", t.ID,
			"next_id", next.ID,
			"amount", t.Amount.String(),
			"frequency", string(t.Frequency),
			"due_date", due.Format(time.RFC3339))

		e.publish(ctx, t.ID, next.ID, due)
	}

	if result.Changed() || result.Failed > 0 {
		slog.InfoContext(ctx, "Recurring processing complete",
			"checked", result.Checked,
			"rolled_over", result.RolledOver,
			"failed", result.Failed)
	}

	return result, nil
}

func (e *RecurringEngine) publish(ctx context.Context, archivedID, nextID string, due time.Time) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishRollover(ctx, archivedID, nextID, due); err != nil {
		slog.WarnContext(ctx, "Failed to publish rollover event",
			"transaction_id", archivedID,
			"next_id", nextID,
			"error", err)
	}
}

// cloneOccurrence copies every lineage field of t onto a fresh live occurrence.
func cloneOccurrence(t core.Transaction, id string, due time.Time) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      t.Amount,
		Type:        t.Type,
		CategoryID:  t.CategoryID,
		WalletID:    t.WalletID,
		Date:        due,
		Comment:     t.Comment,
		IsRecurring: true,
		Frequency:   t.Frequency,
	}
}
