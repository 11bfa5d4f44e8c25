package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createPaymentSessionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_sessions (
		id TEXT PRIMARY KEY,
		merchant_address TEXT NOT NULL,
		amount TEXT NOT NULL,
		amount_raw TEXT NOT NULL,
		memo TEXT,
		status TEXT NOT NULL,
		payment_uri TEXT NOT NULL,
		sender_address TEXT,
		tx_hash TEXT,
		expires_at DATETIME NOT NULL,
		confirmed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createMerchantTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE merchants (
		address TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		logo_url TEXT,
		webhook_url TEXT,
		api_key_hash TEXT NOT NULL UNIQUE,
		verified BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		total_volume TEXT NOT NULL DEFAULT '0',
		total_transactions INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		hash TEXT PRIMARY KEY,
		payment_id TEXT NOT NULL,
		merchant_address TEXT NOT NULL,
		sender_address TEXT NOT NULL,
		amount TEXT NOT NULL,
		memo TEXT,
		vm_status TEXT,
		created_at DATETIME
	);`)
}
