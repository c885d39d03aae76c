package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"portfel/internal/core"
	"portfel/internal/ports"
)

const recentTransactionLimit = 10

type Dashboard struct {
	HomeCurrency string             `json:"homeCurrency"`
	Balances     BalanceSummary     `json:"balances"`
	Stats        MonthlyStats       `json:"stats"`
	Rates        RateSnapshot       `json:"rates"`
	Recent       []core.Transaction `json:"recent"`
	Recurring    *RolloverResult    `json:"recurring,omitempty"`
}

// DashboardService assembles the home screen: materialise due subscriptions,
// then read everything the aggregation needs.
type DashboardService struct {
	store  ports.RecordStore
	engine *RecurringEngine
	rates  *RateService
	loc    *time.Location
	now    func() time.Time
}

func NewDashboardService(store ports.RecordStore, engine *RecurringEngine, rates *RateService, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{store: store, engine: engine, rates: rates, loc: loc, now: time.Now}
}

// Load runs the recurring engine through guard (skipped when guard is nil or
// already done) so new occurrences show up in the same load.
func (s *DashboardService) Load(ctx context.Context, guard *RecurringGuard) (Dashboard, error) {
	now := s.now()
	dash := Dashboard{HomeCurrency: s.rates.HomeCurrency()}

	if guard != nil && s.engine != nil {
		_, err := guard.RunOnce(ctx, func(ctx context.Context) error {
			res, err := s.engine.ProcessDue(ctx, now)
			if err != nil {
				return err
			}
			dash.Recurring = &res
			return nil
		})
		if err != nil {
			slog.ErrorContext(ctx, "Recurring processing failed, showing stored data", "error", err)
		}
	}

	var (
		wallets      []core.Wallet
		transactions []core.Transaction
		rates        RateSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if wallets, err = s.store.ListWallets(gctx); err != nil {
			return fmt.Errorf("list wallets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if transactions, err = s.store.ListTransactions(gctx); err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rates, err = s.rates.Current(gctx); err != nil {
			// Balances still render, unconverted currencies fall back to 1.
			slog.WarnContext(gctx, "No exchange rates available", "error", err)
			rates = RateSnapshot{Rates: core.NormalizeRates(nil, s.rates.HomeCurrency())}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	dash.Rates = rates
	dash.Balances = ComputeWalletBalances(ctx, wallets, transactions, rates.Rates)
	dash.Stats = ComputeMonthlyStats(ctx, dash.Balances, transactions, rates.Rates, now, s.loc)

	recent := transactions
	if len(recent) > recentTransactionLimit {
		recent = recent[:recentTransactionLimit]
	}
	dash.Recent = nonNil(recent)
	return dash, nil
}
