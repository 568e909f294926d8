// Package db is the snapshot ledger: a sqlite file with one row per
// artifact write.
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/amonks/tastes/data"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB represents our sqlite3 database file.
type DB struct{ *gorm.DB }

//go:embed schema.sql
var schema string

// Open returns a connection to a migrated sqlite3 database file on disk,
// creating the file and running migrations if necessary.
func Open(filename string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(filename), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", filename, err)
	}

	db := &DB{gdb}

	if err := db.Exec(schema).Error; err != nil {
		return nil, fmt.Errorf("error migrating db at '%s': %w", filename, err)
	}

	return db, nil
}

func (db *DB) Close() error {
	sqldb, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("error getting sql db: %w", err)
	}
	if err := sqldb.Close(); err != nil {
		return fmt.Errorf("error closing db: %w", err)
	}
	return nil
}

// InsertRecord appends one artifact write to the ledger.
func (db *DB) InsertRecord(ctx context.Context, rec *data.SnapshotRecord) error {
	if err := db.
		WithContext(ctx).
		Create(rec).
		Error; err != nil {
		return fmt.Errorf("error inserting %s record for run '%s': %w", rec.Artifact, rec.RunID, err)
	}
	return nil
}

// LatestRecord returns the most recent write of the given artifact. It
// returns an error wrapping gorm.ErrRecordNotFound if there is none.
func (db *DB) LatestRecord(ctx context.Context, artifact string) (*data.SnapshotRecord, error) {
	var rec data.SnapshotRecord
	if err := db.
		WithContext(ctx).
		Where("artifact = ?", artifact).
		Order("updated_at desc").
		Order("id desc").
		First(&rec).
		Error; err != nil {
		return nil, fmt.Errorf("error getting latest %s record: %w", artifact, err)
	}
	return &rec, nil
}

// RunRecords returns every write made during one run, in write order.
func (db *DB) RunRecords(ctx context.Context, runID string) ([]data.SnapshotRecord, error) {
	var recs []data.SnapshotRecord
	if err := db.
		WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&recs).
		Error; err != nil {
		return nil, fmt.Errorf("error getting records for run '%s': %w", runID, err)
	}
	return recs, nil
}
