// Package holdings persists the coins each user holds.
package holdings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"cointether/internal/symbols"
)

// Holding is one coin position of one owner.
type Holding struct {
	ID       uuid.UUID       `json:"id"`
	Owner    string          `json:"owner"`
	CoinName string          `json:"coin_name"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

var (
	ErrNotFound         = errors.New("holding not found")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrInvalidHolding   = errors.New("invalid holding")
)

// Validate checks the fields a caller must supply before insert or update.
func (h Holding) Validate() error {
	if strings.TrimSpace(h.Owner) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidHolding)
	}
	if strings.TrimSpace(h.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidHolding)
	}
	if h.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}
	return nil
}

// SQLiteStore stores holdings in the user_wallets table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS user_wallets (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	coin_name  TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	holdings   TEXT NOT NULL DEFAULT '0',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_wallets_username ON user_wallets(username, created_at);
`

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListHoldings returns owner's holdings in insertion order.
func (s *SQLiteStore) ListHoldings(ctx context.Context, owner string) ([]Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, coin_name, symbol, holdings
		FROM user_wallets
		WHERE username = ?
		ORDER BY created_at, rowid
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	out := []Holding{}
	for rows.Next() {
		h, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return out, nil
}

// Get returns the holding with id.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (Holding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, coin_name, symbol, holdings
		FROM user_wallets
		WHERE id = ?
	`, id.String())
	h, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Holding{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return h, err
}

// Insert stores a new holding and returns it with its assigned ID.
// The symbol is normalized but not required to be in the registry.
func (s *SQLiteStore) Insert(ctx context.Context, h Holding) (Holding, error) {
	if err := h.Validate(); err != nil {
		return Holding{}, err
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.Symbol = symbols.Normalize(h.Symbol)
	h.CoinName = strings.TrimSpace(h.CoinName)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_wallets (id, username, coin_name, symbol, holdings, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.ID.String(), h.Owner, h.CoinName, h.Symbol, h.Quantity.String(), s.now().UnixNano())
	if err != nil {
		return Holding{}, fmt.Errorf("failed to insert holding: %w", err)
	}
	return h, nil
}

// UpdateQuantity sets the quantity of an existing holding.
func (s *SQLiteStore) UpdateQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return ErrNegativeQuantity
	}
	res, err := s.db.ExecContext(ctx, `UPDATE user_wallets SET holdings = ? WHERE id = ?`, qty.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return expectOne(res, id)
}

// Delete removes the holding with id.
func (s *SQLiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_wallets WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (Holding, error) {
	var (
		h           Holding
		idStr, qStr string
	)
	if err := sc.Scan(&idStr, &h.Owner, &h.CoinName, &h.Symbol, &qStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Holding{}, err
		}
		return Holding{}, fmt.Errorf("failed to scan holding: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Holding{}, fmt.Errorf("failed to parse holding id %q: %w", idStr, err)
	}
	qty, err := decimal.NewFromString(qStr)
	if err != nil {
		return Holding{}, fmt.Errorf("failed to parse quantity %q: %w", qStr, err)
	}
	h.ID = id
	h.Quantity = qty
	return h, nil
}
