package data

import "time"

// A SnapshotRecord is one row in the snapshot ledger: one artifact write
// during one run.
type SnapshotRecord struct {
	ID uint `gorm:"primaryKey"`

	RunID    string
	Artifact string
	Source   string
	Country  string
	Count    int

	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`

	ArchivePath string
	PublicPath  string
}
