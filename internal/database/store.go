package database

import "pricing-compliance-portal/internal/models"

// Store is the backend-neutral persistence surface: everything the
// pipeline and the read API need. MySQL (GORM) and PostgreSQL (lib/pq)
// both implement it; admin statistics and maintenance jobs additionally
// require the GORM backend.
type Store interface {
	GetProject(id string) (*models.Project, error)
	FindProjectBySlug(ownerID, slug string) (*models.Project, error)
	CreateProject(p *models.Project) error
	ReplaceProjectUnits(projectID string, units []models.Unit) error
	CreateUploadLog(l *models.UploadLog) error

	ListProjects(ownerID string) ([]models.Project, error)
	GetProjectUnits(projectID string, limit, offset int) ([]models.Unit, int64, error)
	RecentUploadLogs(ownerID string, limit int) ([]models.UploadLog, error)
	AllUnits() ([]models.Unit, error)

	Close() error
}
