// Package history persists completed translations for later inspection.
// This is an audit log, not the result cache: the in-memory cache stays
// process-local and the dispatcher works fine with no store configured.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lingobridge/lingobridge/internal/translation"
)

// Record is one completed translation.
type Record struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	SourceLang     string    `gorm:"size:16;index" json:"source_lang"`
	TargetLang     string    `gorm:"size:16;index" json:"target_lang"`
	SourceText     string    `gorm:"type:text" json:"source_text"`
	TranslatedText string    `gorm:"type:text" json:"translated_text"`
	Engine         string    `gorm:"size:32" json:"engine"`
	LatencyMS      int64     `json:"latency_ms"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (Record) TableName() string {
	return "translation_history"
}

// Store writes and reads translation records. It implements
// translation.Recorder.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the history table.
func Open(databaseURL string) (*Store, error) {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores one completed translation.
func (s *Store) Record(ctx context.Context, entry translation.RecordedTranslation) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("history store is not initialized")
	}

	row := Record{
		ID:             uuid.NewString(),
		SourceLang:     entry.SourceLang,
		TargetLang:     entry.TargetLang,
		SourceText:     entry.SourceText,
		TranslatedText: entry.TranslatedText,
		Engine:         entry.Engine,
		LatencyMS:      entry.Latency.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert translation record: %w", err)
	}
	return nil
}

// Recent returns the newest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store is not initialized")
	}
	if limit < 1 {
		limit = 25
	}

	rows := make([]Record, 0, limit)
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query translation records: %w", err)
	}
	return rows, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("resolve history database handle: %w", err)
	}
	return sqlDB.Close()
}
