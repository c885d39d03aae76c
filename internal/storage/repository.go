package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
	"portfel/internal/ports"

	_ "modernc.org/sqlite"
)

// Dates are stored in UTC with a fixed-width layout so TEXT ordering matches time ordering.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ ports.RecordStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single local writer; one connection keeps BEGIN/COMMIT free of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Transactions ---

const transactionColumns = `id, amount, type, category_id, wallet_id, date, comment, is_recurring, was_recurring, frequency`

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) PutTransaction(ctx context.Context, t core.Transaction) error {
	if err := upsertTransaction(ctx, r.db, t); err != nil {
		return fmt.Errorf("put transaction %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return deleteByKey(ctx, r.db, "transactions", "id", id)
}

// Rollover writes the archived occurrence and its successor in one SQL transaction.
func (r *SQLiteRepository) Rollover(ctx context.Context, archived core.Transaction, next *core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rollover: %w", err)
	}
	defer tx.Rollback()

	if next != nil {
		if err := upsertTransaction(ctx, tx, *next); err != nil {
			return fmt.Errorf("insert next occurrence %s: %w", next.ID, err)
		}
	}
	if err := upsertTransaction(ctx, tx, archived); err != nil {
		return fmt.Errorf("archive occurrence %s: %w", archived.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollover: %w", err)
	}

	slog.DebugContext(ctx, "Rollover committed", "archived_id", archived.ID, "created", next != nil)
	return nil
}

func upsertTransaction(ctx context.Context, db execer, t core.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			amount = excluded.amount,
			type = excluded.type,
			category_id = excluded.category_id,
			wallet_id = excluded.wallet_id,
			date = excluded.date,
			comment = excluded.comment,
			is_recurring = excluded.is_recurring,
			was_recurring = excluded.was_recurring,
			frequency = excluded.frequency`,
		t.ID,
		t.Amount.String(),
		string(t.Type),
		t.CategoryID,
		t.WalletID,
		formatDate(t.Date),
		t.Comment,
		boolToInt(t.IsRecurring),
		boolToInt(t.WasRecurring),
		string(t.Frequency),
	)
	return err
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t                         core.Transaction
		amount, txType, date      string
		frequency                 string
		isRecurring, wasRecurring int64
	)
	if err := s.Scan(&t.ID, &amount, &txType, &t.CategoryID, &t.WalletID, &date,
		&t.Comment, &isRecurring, &wasRecurring, &frequency); err != nil {
		return core.Transaction{}, err
	}

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if t.Date, err = parseDate(date); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(txType)
	t.Frequency = core.Frequency(frequency)
	t.IsRecurring = isRecurring != 0
	t.WasRecurring = wasRecurring != 0
	return t, nil
}

// --- Wallets ---

func (r *SQLiteRepository) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, currency, initial_balance FROM wallets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []core.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetWallet(ctx context.Context, id string) (core.Wallet, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, currency, initial_balance FROM wallets WHERE id = ?`, id)
	w, err := scanWallet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, fmt.Errorf("get wallet %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet %s: %w", id, err)
	}
	return w, nil
}

func (r *SQLiteRepository) PutWallet(ctx context.Context, w core.Wallet) error {
	if err := upsertWallet(ctx, r.db, w); err != nil {
		return fmt.Errorf("put wallet %s: %w", w.ID, err)
	}
	return nil
}

func upsertWallet(ctx context.Context, db execer, w core.Wallet) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO wallets (id, name, currency, initial_balance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			initial_balance = excluded.initial_balance`,
		w.ID, w.Name, w.Currency, w.InitialBalance.String())
	return err
}

func (r *SQLiteRepository) DeleteWallet(ctx context.Context, id string) error {
	return deleteByKey(ctx, r.db, "wallets", "id", id)
}

func scanWallet(s rowScanner) (core.Wallet, error) {
	var (
		w       core.Wallet
		initial string
	)
	if err := s.Scan(&w.ID, &w.Name, &w.Currency, &initial); err != nil {
		return core.Wallet{}, err
	}
	var err error
	if w.InitialBalance, err = decimal.NewFromString(initial); err != nil {
		return core.Wallet{}, fmt.Errorf("parse initial balance %q: %w", initial, err)
	}
	return w, nil
}

// --- Categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, icon, color FROM categories ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c       core.Category
			catType string
		)
		if err := rows.Scan(&c.ID, &c.Name, &catType, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(catType)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var (
		c       core.Category
		catType string
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, name, type, icon, color FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &catType, &c.Icon, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	c.Type = core.TransactionType(catType)
	return c, nil
}

func (r *SQLiteRepository) PutCategory(ctx context.Context, c core.Category) error {
	if err := upsertCategory(ctx, r.db, c); err != nil {
		return fmt.Errorf("put category %s: %w", c.ID, err)
	}
	return nil
}

func upsertCategory(ctx context.Context, db execer, c core.Category) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, icon, color)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			icon = excluded.icon,
			color = excluded.color`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color)
	return err
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return deleteByKey(ctx, r.db, "categories", "id", id)
}

// --- Exchange rates ---

func (r *SQLiteRepository) ListRates(ctx context.Context) ([]core.ExchangeRate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT currency, rate, updated_at FROM exchange_rates ORDER BY currency`)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var out []core.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		out = append(out, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetRate(ctx context.Context, currency string) (core.ExchangeRate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT currency, rate, updated_at FROM exchange_rates WHERE currency = ?`,
		strings.ToUpper(currency))
	rate, err := scanRate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExchangeRate{}, fmt.Errorf("get rate %s: %w", currency, core.ErrNotFound)
	}
	if err != nil {
		return core.ExchangeRate{}, fmt.Errorf("get rate %s: %w", currency, err)
	}
	return rate, nil
}

func (r *SQLiteRepository) PutRate(ctx context.Context, rate core.ExchangeRate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (currency, rate, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (currency) DO UPDATE SET
			rate = excluded.rate,
			updated_at = excluded.updated_at`,
		strings.ToUpper(rate.Currency), rate.Rate.String(), formatDate(rate.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put rate %s: %w", rate.Currency, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRate(ctx context.Context, currency string) error {
	return deleteByKey(ctx, r.db, "exchange_rates", "currency", strings.ToUpper(currency))
}

func scanRate(s rowScanner) (core.ExchangeRate, error) {
	var (
		rate             core.ExchangeRate
		value, updatedAt string
	)
	if err := s.Scan(&rate.Currency, &value, &updatedAt); err != nil {
		return core.ExchangeRate{}, err
	}
	var err error
	if rate.Rate, err = decimal.NewFromString(value); err != nil {
		return core.ExchangeRate{}, fmt.Errorf("parse rate %q: %w", value, err)
	}
	if rate.UpdatedAt, err = parseDate(updatedAt); err != nil {
		return core.ExchangeRate{}, err
	}
	return rate, nil
}

// ClearAll removes wallets, categories and transactions in one SQL transaction.
func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if err := clearCollections(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}

	slog.InfoContext(ctx, "All collections cleared")
	return nil
}

// ReplaceAll swaps every user collection for the snapshot's contents in one
// SQL transaction. On any failure the previous data is left untouched.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if err := clearCollections(ctx, tx); err != nil {
		return err
	}
	for _, w := range snap.Wallets {
		if err := upsertWallet(ctx, tx, w); err != nil {
			return fmt.Errorf("replace wallet %s: %w", w.ID, err)
		}
	}
	for _, c := range snap.Categories {
		if err := upsertCategory(ctx, tx, c); err != nil {
			return fmt.Errorf("replace category %s: %w", c.ID, err)
		}
	}
	for _, t := range snap.Transactions {
		if err := upsertTransaction(ctx, tx, t); err != nil {
			return fmt.Errorf("replace transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "All collections replaced",
		"wallets", len(snap.Wallets),
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions))
	return nil
}

func clearCollections(ctx context.Context, db execer) error {
	for _, table := range []string{"transactions", "wallets", "categories"} {
		if _, err := db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func deleteByKey(ctx context.Context, db execer, table, column, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, key)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s from %s: %w", key, table, core.ErrNotFound)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Rows written by hand or by older builds may use plain RFC 3339.
		if t, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
