// Package storage persists saved analyses so they can be listed and
// re-evaluated later.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/rental-valuation/internal/valuation"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when no saved analysis has the requested id.
var ErrNotFound = errors.New("saved analysis not found")

// SavedAnalysis is a named input kept for later evaluation. Metrics are not
// stored; callers recompute them so saved records follow policy changes.
type SavedAnalysis struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Preset    string                    `json:"preset,omitempty"`
	Input     valuation.InvestmentInput `json:"input"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// Store is the persistence contract used by the API.
type Store interface {
	Save(ctx context.Context, a *SavedAnalysis) error
	Get(ctx context.Context, id string) (*SavedAnalysis, error)
	List(ctx context.Context) ([]SavedAnalysis, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

type analysisRecord struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Preset    string    `gorm:"type:varchar(64)"`
	InputJSON string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (analysisRecord) TableName() string {
	return "saved_analyses"
}

// SQLiteStore keeps saved analyses in a SQLite database through gorm.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates its schema.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&analysisRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database %s: %w", path, err)
	}

	logger.Debug("opened analysis store",
		zap.String("op", "storage.NewSQLiteStore"),
		zap.String("path", path),
	)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save inserts a new analysis, assigning its ID and creation time.
func (s *SQLiteStore) Save(ctx context.Context, a *SavedAnalysis) error {
	input, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	record := analysisRecord{
		ID:        a.ID,
		Name:      a.Name,
		Preset:    a.Preset,
		InputJSON: string(input),
		CreatedAt: a.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", a.Name, err)
	}

	s.logger.Debug("saved analysis",
		zap.String("op", "storage.Save"),
		zap.String("id", a.ID),
		zap.String("name", a.Name),
	)
	return nil
}

// Get loads one analysis by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*SavedAnalysis, error) {
	var record analysisRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}

	a, err := record.toSaved()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns every saved analysis, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]SavedAnalysis, error) {
	var records []analysisRecord
	if err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	saved := make([]SavedAnalysis, 0, len(records))
	for _, record := range records {
		a, err := record.toSaved()
		if err != nil {
			return nil, err
		}
		saved = append(saved, a)
	}
	return saved, nil
}

// Delete removes an analysis, returning ErrNotFound if it does not exist.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&analysisRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete analysis %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r analysisRecord) toSaved() (SavedAnalysis, error) {
	a := SavedAnalysis{
		ID:        r.ID,
		Name:      r.Name,
		Preset:    r.Preset,
		CreatedAt: r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.InputJSON), &a.Input); err != nil {
		return SavedAnalysis{}, fmt.Errorf("failed to decode input for analysis %s: %w", r.ID, err)
	}
	return a, nil
}
