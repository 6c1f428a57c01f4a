package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hotwallet_monitor/internal/config"
	"hotwallet_monitor/internal/entity"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// WalletRepository is the persistence boundary for registered hot wallets.
type WalletRepository interface {
	// Insert appends one wallet row; the store assigns id and created_at.
	Insert(ctx context.Context, params InsertWalletParams) (*entity.WalletRecord, error)
	// ListBySymbol returns all wallets whose symbol matches case-insensitively,
	// oldest first. Zero rows is a valid empty result, not an error.
	ListBySymbol(ctx context.Context, symbol string) ([]entity.WalletRecord, error)
}

// InsertWalletParams carries one validated registration into the store.
type InsertWalletParams struct {
	Symbol          string
	Chain           string
	ContractAddress string
	WalletAddress   string
	WalletName      string
}

// Compile-time check: *SQLiteWalletRepository must satisfy WalletRepository.
var _ WalletRepository = (*SQLiteWalletRepository)(nil)

// SQLiteWalletRepository stores wallet rows in the hotwallet table.
type SQLiteWalletRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteWalletRepository opens (or creates) the SQLite database and
// initializes the hotwallet schema.
func NewSQLiteWalletRepository(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*SQLiteWalletRepository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	logger.Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.PingTimeoutSeconds)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	repo := &SQLiteWalletRepository{db: db, logger: logger.Named("WalletRepository")}
	if err := repo.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	repo.logger.Info("Wallet repository initialized")
	return repo, nil
}

// NewWalletRepositoryWithDB wraps an existing connection; used by tests.
func NewWalletRepositoryWithDB(db *sql.DB, logger *zap.Logger) *SQLiteWalletRepository {
	return &SQLiteWalletRepository{db: db, logger: logger.Named("WalletRepository")}
}

// Close releases the underlying database handle.
func (r *SQLiteWalletRepository) Close() {
	if err := r.db.Close(); err != nil {
		r.logger.Warn("Failed to close database connection", zap.Error(err))
	}
}

func (r *SQLiteWalletRepository) initSchema() error {
	// (symbol, chain, wallet_address) is deliberately NOT unique: duplicate
	// registrations are a store-level input issue and are listed as-is.
	schema := `
	CREATE TABLE IF NOT EXISTS hotwallet (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		chain TEXT NOT NULL,
		contract_address TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		wallet_name TEXT NOT NULL DEFAULT '-',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_hotwallet_symbol ON hotwallet(symbol);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Insert implements WalletRepository.
func (r *SQLiteWalletRepository) Insert(ctx context.Context, params InsertWalletParams) (*entity.WalletRecord, error) {
	r.logger.Info("Storing wallet",
		zap.String("symbol", params.Symbol),
		zap.String("chain", params.Chain),
		zap.String("wallet_address", params.WalletAddress))

	record := &entity.WalletRecord{}
	err := r.db.QueryRowContext(ctx, queryInsertWallet,
		params.Symbol, params.Chain, params.ContractAddress, params.WalletAddress, params.WalletName,
	).Scan(
		&record.ID, &record.Symbol, &record.Chain, &record.ContractAddress,
		&record.WalletAddress, &record.WalletName, &record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert wallet",
			zap.String("symbol", params.Symbol),
			zap.String("chain", params.Chain),
			zap.Error(err))
		return nil, &entity.StoreWriteError{Err: err}
	}

	r.logger.Info("Wallet stored", zap.Int64("id", record.ID))
	return record, nil
}

// ListBySymbol implements WalletRepository.
func (r *SQLiteWalletRepository) ListBySymbol(ctx context.Context, symbol string) ([]entity.WalletRecord, error) {
	canonical := strings.ToUpper(strings.TrimSpace(symbol))
	r.logger.Debug("Querying wallets", zap.String("symbol", canonical))

	rows, err := r.db.QueryContext(ctx, querySelectWalletsBySymbol, canonical)
	if err != nil {
		r.logger.Error("Failed to query wallets", zap.String("symbol", canonical), zap.Error(err))
		return nil, &entity.StoreReadError{Err: err}
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.logger.Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var records []entity.WalletRecord
	for rows.Next() {
		var record entity.WalletRecord
		err := rows.Scan(
			&record.ID, &record.Symbol, &record.Chain, &record.ContractAddress,
			&record.WalletAddress, &record.WalletName, &record.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan wallet row", zap.Error(err))
			return nil, &entity.StoreReadError{Err: err}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &entity.StoreReadError{Err: err}
	}

	return records, nil
}
