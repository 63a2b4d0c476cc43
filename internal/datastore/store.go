// Package datastore provides the read-mostly tabular stores behind the investigation
// tools: transactions, KYC profiles and SIEM events, kept in a SQLite database.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database. Reads are safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// Open connects to an existing database. A missing file or table is reported as a
// *DataSourceUnavailableError instead of silently creating an empty store.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &DataSourceUnavailableError{Source: path, Cause: err}
	}
	gdb, err := openSQLite(path)
	if err != nil {
		return nil, &DataSourceUnavailableError{Source: path, Cause: err}
	}
	s := &Store{db: gdb}
	if err := s.Require(TableTransactions, TableKYCProfiles, TableSIEMEvents); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Create opens or creates the database at path and migrates the schema.
func Create(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	gdb, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := gdb.Exec(`PRAGMA journal_mode=WAL;`).Error; err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&Transaction{}, &KYCProfile{}, &SIEMEvent{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: gdb}, nil
}

func openSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := gdb.Exec(`PRAGMA busy_timeout=5000;`).Error; err != nil {
		return nil, err
	}
	return gdb, nil
}

// DB exposes the connection so the similarity index can share it.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Require checks that every named table exists.
func (s *Store) Require(tables ...string) error {
	if s == nil || s.db == nil {
		return &DataSourceUnavailableError{Source: "datastore", Cause: errors.New("store not initialised")}
	}
	for _, table := range tables {
		if !s.db.Migrator().HasTable(table) {
			return &DataSourceUnavailableError{Source: "table " + table}
		}
	}
	return nil
}

// TransactionByID returns ErrNotFound when the id is absent.
func (s *Store) TransactionByID(ctx context.Context, id string) (*Transaction, error) {
	var txn Transaction
	err := s.db.WithContext(ctx).Where("transaction_id = ?", id).Take(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// KYCProfileByUserID returns ErrNotFound when the user is absent.
func (s *Store) KYCProfileByUserID(ctx context.Context, userID string) (*KYCProfile, error) {
	var p KYCProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindSIEMEvents returns every matching event, newest first. Filters are conjunctive.
func (s *Store) FindSIEMEvents(ctx context.Context, f SIEMFilter) ([]SIEMEvent, error) {
	q := s.db.WithContext(ctx).Model(&SIEMEvent{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.DeviceID != "" {
		q = q.Where("device_id = ?", f.DeviceID)
	}
	if f.EventType != "" {
		q = q.Where("event_type = ?", f.EventType)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp_unix >= ?", f.Since.Unix())
	}

	var events []SIEMEvent
	if err := q.Order("timestamp_unix DESC").Order("event_id").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindTransactions returns every matching transaction, newest first.
func (s *Store) FindTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	q := s.db.WithContext(ctx).Model(&Transaction{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp_unix >= ?", f.Since.Unix())
	}

	var txns []Transaction
	if err := q.Order("timestamp_unix DESC").Order("transaction_id").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// SaveTransactions upserts transactions by id.
func (s *Store) SaveTransactions(ctx context.Context, txns ...Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&txns).Error
}

// SaveKYCProfiles upserts profiles by user id.
func (s *Store) SaveKYCProfiles(ctx context.Context, profiles ...KYCProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&profiles).Error
}

// SaveSIEMEvents upserts events by id.
func (s *Store) SaveSIEMEvents(ctx context.Context, events ...SIEMEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&events).Error
}
