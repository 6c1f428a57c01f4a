package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"hotwallet_monitor/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupWalletTestDB(t *testing.T) (*SQLiteWalletRepository, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// In-memory SQLite must stay on one connection or each query sees a
	// fresh empty database.
	db.SetMaxOpenConns(1)

	repo := NewWalletRepositoryWithDB(db, zap.NewNop())
	if err := repo.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return repo, cleanup
}

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	repo, cleanup := setupWalletTestDB(t)
	defer cleanup()

	record, err := repo.Insert(context.Background(), InsertWalletParams{
		Symbol:          "FOO",
		Chain:           "ETH",
		ContractAddress: "0x1111111111111111111111111111111111111111",
		WalletAddress:   "0x2222222222222222222222222222222222222222",
		WalletName:      "treasury",
	})
	require.NoError(t, err)

	assert.Greater(t, record.ID, int64(0))
	assert.Equal(t, "FOO", record.Symbol)
	assert.Equal(t, "treasury", record.WalletName)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestInsertPersistsDefaultWalletName(t *testing.T) {
	repo, cleanup := setupWalletTestDB(t)
	defer cleanup()

	record, err := repo.Insert(context.Background(), InsertWalletParams{
		Symbol:        "FOO",
		Chain:         "ETH",
		WalletAddress: "0x2222222222222222222222222222222222222222",
		WalletName:    entity.DefaultWalletName,
	})
	require.NoError(t, err)
	assert.Equal(t, "-", record.WalletName)
}

func TestListBySymbolIsCaseInsensitive(t *testing.T) {
	repo, cleanup := setupWalletTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.Insert(ctx, InsertWalletParams{
		Symbol: "FOO", Chain: "ETH", WalletAddress: "0xaaa", WalletName: "-",
	})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, InsertWalletParams{
		Symbol: "FOO", Chain: "BASE", WalletAddress: "0xbbb", WalletName: "-",
	})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, InsertWalletParams{
		Symbol: "BAR", Chain: "ETH", WalletAddress: "0xccc", WalletName: "-",
	})
	require.NoError(t, err)

	records, err := repo.ListBySymbol(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ETH", records[0].Chain)
	assert.Equal(t, "BASE", records[1].Chain)
}

func TestListBySymbolZeroRowsIsNotAnError(t *testing.T) {
	repo, cleanup := setupWalletTestDB(t)
	defer cleanup()

	records, err := repo.ListBySymbol(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDuplicateRegistrationsArePreserved(t *testing.T) {
	repo, cleanup := setupWalletTestDB(t)
	defer cleanup()
	ctx := context.Background()

	params := InsertWalletParams{
		Symbol: "FOO", Chain: "ETH", WalletAddress: "0xaaa", WalletName: "-",
	}
	_, err := repo.Insert(ctx, params)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, params)
	require.NoError(t, err)

	records, err := repo.ListBySymbol(ctx, "FOO")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListBySymbolWrapsStoreReadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM hotwallet").WillReturnError(errors.New("connection lost"))

	repo := NewWalletRepositoryWithDB(db, zap.NewNop())
	_, err = repo.ListBySymbol(context.Background(), "FOO")
	require.Error(t, err)

	var storeErr *entity.StoreReadError
	assert.True(t, errors.As(err, &storeErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWrapsStoreWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO hotwallet").WillReturnError(errors.New("disk full"))

	repo := NewWalletRepositoryWithDB(db, zap.NewNop())
	_, err = repo.Insert(context.Background(), InsertWalletParams{
		Symbol: "FOO", Chain: "ETH", WalletAddress: "0xaaa", WalletName: "-",
	})
	require.Error(t, err)

	var storeErr *entity.StoreWriteError
	assert.True(t, errors.As(err, &storeErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}
