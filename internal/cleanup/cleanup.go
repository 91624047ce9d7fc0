package cleanup

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pricing-compliance-portal/internal/models"
)

// Service handles retention of upload logs and removal of orphaned units
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Config holds configuration for cleanup operations
type Config struct {
	RetentionDays    int  // Days to keep upload logs (default: 180)
	MaxDeletionCount int  // Maximum number of rows to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RetentionDays:    180,
		MaxDeletionCount: 50000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	ExpiredLogs  int64     `json:"expired_logs"`  // Upload logs past retention
	DeletedLogs  int64     `json:"deleted_logs"`  // Upload logs actually deleted
	OrphanUnits  int64     `json:"orphan_units"`  // Units whose project no longer exists
	DeletedUnits int64     `json:"deleted_units"` // Orphaned units actually deleted
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// Run removes upload logs past retention and units left behind by a
// deleted project. Orphans should not occur in normal operation; they can
// appear after a crash between delete and insert phases of a replace.
func (s *Service) Run(cfg Config) (*Result, error) {
	result := &Result{DryRun: cfg.DryRun, ExecutedAt: time.Now()}
	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)

	if err := s.db.Model(&models.UploadLog{}).Where("created_at < ?", cutoff).Count(&result.ExpiredLogs).Error; err != nil {
		return nil, fmt.Errorf("failed to count expired upload logs: %w", err)
	}

	orphanWhere := "project_id NOT IN (SELECT id FROM projects)"
	if err := s.db.Model(&models.Unit{}).Where(orphanWhere).Count(&result.OrphanUnits).Error; err != nil {
		return nil, fmt.Errorf("failed to count orphaned units: %w", err)
	}

	// Safety check: abort if too many rows would be deleted
	if total := result.ExpiredLogs + result.OrphanUnits; total > int64(cfg.MaxDeletionCount) {
		return nil, fmt.Errorf("safety check failed: %d rows exceed max deletion limit of %d",
			total, cfg.MaxDeletionCount)
	}

	if cfg.DryRun {
		log.Printf("[cleanup] DRY-RUN would delete %d upload logs (older than %s) and %d orphaned units",
			result.ExpiredLogs, cutoff.Format("2006-01-02"), result.OrphanUnits)
		return result, nil
	}

	res := s.db.Where("created_at < ?", cutoff).Delete(&models.UploadLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete expired upload logs: %w", res.Error)
	}
	result.DeletedLogs = res.RowsAffected

	res = s.db.Where(orphanWhere).Delete(&models.Unit{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete orphaned units: %w", res.Error)
	}
	result.DeletedUnits = res.RowsAffected

	log.Printf("[cleanup] Completed: %d upload logs and %d orphaned units deleted (retention: %d days)",
		result.DeletedLogs, result.DeletedUnits, cfg.RetentionDays)
	return result, nil
}
