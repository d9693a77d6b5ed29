package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/sweep"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SweepRow is one persisted sweep scenario
type SweepRow struct {
	ID             uint      `gorm:"primaryKey"`
	CreatedAt      time.Time
	RunID          string    `gorm:"index;size:36"`
	Devices        int
	UAVs           int
	TimeSlots      int
	Seed           int64
	Efficiency     float64
	Energy         float64
	Utility        float64
	TasksDecided   int
	TasksOffloaded int
}

// Store persists sweep rows in SQLite
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates the schema
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	if err := db.AutoMigrate(&SweepRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate results database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Rows converts a sweep result into storable rows
func Rows(result *sweep.Result) []SweepRow {
	rows := make([]SweepRow, 0, len(result.Rows))
	for _, r := range result.Rows {
		rows = append(rows, SweepRow{
			RunID:          result.RunID,
			Devices:        r.Devices,
			UAVs:           result.UAVCount,
			TimeSlots:      result.TimeSlots,
			Seed:           r.Seed,
			Efficiency:     r.Efficiency,
			Energy:         r.Energy,
			Utility:        r.Utility,
			TasksDecided:   r.TasksDecided,
			TasksOffloaded: r.TasksOffloaded,
		})
	}
	return rows
}

// SaveSweep stores every row of result in one transaction
func (s *Store) SaveSweep(result *sweep.Result) error {
	rows := Rows(result)
	if len(rows) == 0 {
		return nil
	}

	if err := s.db.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("failed to save sweep %s: %w", result.RunID, err)
	}
	return nil
}

// ListRows returns the rows of a run in device-count order
func (s *Store) ListRows(runID string) ([]SweepRow, error) {
	var rows []SweepRow
	err := s.db.Where("run_id = ?", runID).
		Order("devices ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rows of %s: %w", runID, err)
	}
	return rows, nil
}

// ListRuns returns the stored run ids, most recent first
func (s *Store) ListRuns() ([]string, error) {
	var runs []string
	err := s.db.Model(&SweepRow{}).
		Group("run_id").
		Order("MAX(created_at) DESC").
		Pluck("run_id", &runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
