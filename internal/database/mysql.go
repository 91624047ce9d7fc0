package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pricing-compliance-portal/internal/models"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Project{},
		&models.Unit{},
		&models.UploadLog{},
	)
}

// GetProject retrieves a project by id; (nil, nil) when absent
func (gdb *GormDB) GetProject(id string) (*models.Project, error) {
	var project models.Project
	err := gdb.db.Where("id = ?", id).First(&project).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindProjectBySlug retrieves a project by owner and slug; (nil, nil) when absent
func (gdb *GormDB) FindProjectBySlug(ownerID, slug string) (*models.Project, error) {
	var project models.Project
	err := gdb.db.Where("owner_id = ? AND slug = ?", ownerID, slug).First(&project).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject inserts a new project
func (gdb *GormDB) CreateProject(p *models.Project) error {
	return gdb.db.Create(p).Error
}

// ReplaceProjectUnits deletes all of the project's units and inserts the
// new batch inside one transaction. A re-upload fully supersedes the
// previous upload; records are never merged field-by-field.
func (gdb *GormDB) ReplaceProjectUnits(projectID string, units []models.Unit) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Unit{}).Error; err != nil {
			return err
		}
		if len(units) == 0 {
			return nil
		}
		return tx.CreateInBatches(units, 200).Error
	})
}

// CreateUploadLog records one ingestion invocation
func (gdb *GormDB) CreateUploadLog(l *models.UploadLog) error {
	return gdb.db.Create(l).Error
}

// ListProjects retrieves all projects of an owner, newest first
func (gdb *GormDB) ListProjects(ownerID string) ([]models.Project, error) {
	var projects []models.Project
	err := gdb.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// GetProjectUnits retrieves a page of a project's units plus the total count
func (gdb *GormDB) GetProjectUnits(projectID string, limit, offset int) ([]models.Unit, int64, error) {
	var total int64
	if err := gdb.db.Model(&models.Unit{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var units []models.Unit
	q := gdb.db.Where("project_id = ?", projectID).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&units).Error
	return units, total, err
}

// RecentUploadLogs retrieves the latest upload logs of an owner
func (gdb *GormDB) RecentUploadLogs(ownerID string, limit int) ([]models.UploadLog, error) {
	var logs []models.UploadLog
	err := gdb.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// AllUnits retrieves every stored unit (used by the reindex job)
func (gdb *GormDB) AllUnits() ([]models.Unit, error) {
	var units []models.Unit
	err := gdb.db.Order("project_id, id").Find(&units).Error
	return units, err
}
