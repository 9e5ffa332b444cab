package localstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one persisted key/value pair. The store is the client's durable
// scratch space across restarts: auth tokens and the active subscription
// reference live here.
type Entry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "local_entries"
}

// Store is a durable key-value store backed by a local sqlite file.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the store at the given path. ":memory:" gives an
// ephemeral store, used by tests.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("localstore: path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("localstore: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("localstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool) {
	if s == nil || s.db == nil {
		return "", false
	}
	var entry Entry
	err := s.db.First(&entry, "key = ?", key).Error
	if err != nil {
		return "", false
	}
	return entry.Value, true
}

// Set upserts a value for the key.
func (s *Store) Set(key, value string) error {
	if s == nil || s.db == nil {
		return errors.New("localstore: store not open")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("localstore: key is required")
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.Save(&entry).Error
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if s == nil || s.db == nil {
		return errors.New("localstore: store not open")
	}
	return s.db.Delete(&Entry{}, "key = ?", key).Error
}

// Close releases the underlying connection.
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
