package ingest

import "pricing-compliance-portal/internal/models"

// Store is the persistence surface the orchestrator needs. Both database
// backends implement it; tests use an in-memory fake.
type Store interface {
	// GetProject fetches a project by id; (nil, nil) when absent
	GetProject(id string) (*models.Project, error)

	// FindProjectBySlug fetches a project by owner and slug; (nil, nil) when absent
	FindProjectBySlug(ownerID, slug string) (*models.Project, error)

	// CreateProject inserts a new project
	CreateProject(p *models.Project) error

	// ReplaceProjectUnits atomically deletes all units of the project and
	// inserts the given batch. No partial commit may survive a failure.
	ReplaceProjectUnits(projectID string, units []models.Unit) error

	// CreateUploadLog records one ingestion invocation
	CreateUploadLog(l *models.UploadLog) error
}
