package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"pricing-compliance-portal/internal/models"
)

type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS projects (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (owner_id, slug)
	);

	CREATE TABLE IF NOT EXISTS units (
		id SERIAL PRIMARY KEY,
		project_id VARCHAR(36) NOT NULL,
		owner_id VARCHAR(64) NOT NULL,
		region VARCHAR(100) NOT NULL,
		county VARCHAR(100) NOT NULL,
		municipality VARCHAR(100) NOT NULL,
		unit_number VARCHAR(100) NOT NULL,
		kind VARCHAR(20) NOT NULL,
		usable_area DECIMAL(10,2) NOT NULL,
		price_per_m2 DECIMAL(12,2) NOT NULL,
		base_price DECIMAL(14,2) NOT NULL,
		base_price_date VARCHAR(10) NOT NULL,
		final_price DECIMAL(14,2) NOT NULL,
		final_price_date VARCHAR(10) NOT NULL,
		parking TEXT,
		storage TEXT,
		necessary_rights TEXT,
		other_services TEXT,
		prospectus_url TEXT,
		rooms INTEGER,
		floor INTEGER,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS upload_logs (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(64) NOT NULL,
		project_id VARCHAR(36) NOT NULL,
		file_name VARCHAR(255) NOT NULL,
		encoding VARCHAR(20) NOT NULL,
		confidence VARCHAR(10) NOT NULL,
		dialect VARCHAR(30) NOT NULL,
		format_confidence INTEGER NOT NULL,
		accepted_count INTEGER NOT NULL,
		rejected_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_units_project_id ON units(project_id);
	CREATE INDEX IF NOT EXISTS idx_units_owner_id ON units(owner_id);
	CREATE INDEX IF NOT EXISTS idx_upload_logs_owner_id ON upload_logs(owner_id);
	`
	_, err := db.conn.Exec(query)
	return err
}

// GetProject retrieves a project by id; (nil, nil) when absent
func (db *DB) GetProject(id string) (*models.Project, error) {
	row := db.conn.QueryRow(`
		SELECT id, owner_id, name, slug, created_at, updated_at
		FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// FindProjectBySlug retrieves a project by owner and slug; (nil, nil) when absent
func (db *DB) FindProjectBySlug(ownerID, slug string) (*models.Project, error) {
	row := db.conn.QueryRow(`
		SELECT id, owner_id, name, slug, created_at, updated_at
		FROM projects WHERE owner_id = $1 AND slug = $2`, ownerID, slug)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a new project
func (db *DB) CreateProject(p *models.Project) error {
	_, err := db.conn.Exec(`
		INSERT INTO projects (id, owner_id, name, slug) VALUES ($1, $2, $3, $4)`,
		p.ID, p.OwnerID, p.Name, p.Slug)
	return err
}

// ReplaceProjectUnits deletes all of the project's units and inserts the
// new batch inside one transaction.
func (db *DB) ReplaceProjectUnits(projectID string, units []models.Unit) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM units WHERE project_id = $1`, projectID); err != nil {
		tx.Rollback()
		return err
	}

	insert := `
		INSERT INTO units (
			project_id, owner_id, region, county, municipality, unit_number, kind,
			usable_area, price_per_m2, base_price, base_price_date, final_price, final_price_date,
			parking, storage, necessary_rights, other_services, prospectus_url,
			rooms, floor, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`
	for _, u := range units {
		_, err := tx.Exec(insert,
			projectID, u.OwnerID, u.Region, u.County, u.Municipality, u.UnitNumber, u.Kind,
			u.UsableArea, u.PricePerM2, u.BasePrice, u.BasePriceDate, u.FinalPrice, u.FinalPriceDate,
			u.Parking, u.Storage, u.NecessaryRights, u.OtherServices, u.ProspectusURL,
			u.Rooms, u.Floor, u.Status)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// CreateUploadLog records one ingestion invocation
func (db *DB) CreateUploadLog(l *models.UploadLog) error {
	_, err := db.conn.Exec(`
		INSERT INTO upload_logs (
			id, owner_id, project_id, file_name, encoding, confidence,
			dialect, format_confidence, accepted_count, rejected_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		l.ID, l.OwnerID, l.ProjectID, l.FileName, l.Encoding, l.Confidence,
		l.Dialect, l.FormatConfidence, l.AcceptedCount, l.RejectedCount)
	return err
}

// ListProjects retrieves all projects of an owner, newest first
func (db *DB) ListProjects(ownerID string) ([]models.Project, error) {
	rows, err := db.conn.Query(`
		SELECT id, owner_id, name, slug, created_at, updated_at
		FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const unitColumns = `
	id, project_id, owner_id, region, county, municipality, unit_number, kind,
	usable_area, price_per_m2, base_price, base_price_date, final_price, final_price_date,
	parking, storage, necessary_rights, other_services, prospectus_url,
	rooms, floor, status, created_at`

// GetProjectUnits retrieves a page of a project's units plus the total count
func (db *DB) GetProjectUnits(projectID string, limit, offset int) ([]models.Unit, int64, error) {
	var total int64
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM units WHERE project_id = $1`, projectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.Query(`
		SELECT `+unitColumns+` FROM units
		WHERE project_id = $1 ORDER BY id ASC LIMIT $2 OFFSET $3`,
		projectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	units, err := scanUnits(rows)
	return units, total, err
}

// AllUnits retrieves every stored unit (used by the reindex job)
func (db *DB) AllUnits() ([]models.Unit, error) {
	rows, err := db.conn.Query(`SELECT ` + unitColumns + ` FROM units ORDER BY project_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUnits(rows)
}

func scanUnits(rows *sql.Rows) ([]models.Unit, error) {
	var units []models.Unit
	for rows.Next() {
		var u models.Unit
		err := rows.Scan(
			&u.ID, &u.ProjectID, &u.OwnerID, &u.Region, &u.County, &u.Municipality, &u.UnitNumber, &u.Kind,
			&u.UsableArea, &u.PricePerM2, &u.BasePrice, &u.BasePriceDate, &u.FinalPrice, &u.FinalPriceDate,
			&u.Parking, &u.Storage, &u.NecessaryRights, &u.OtherServices, &u.ProspectusURL,
			&u.Rooms, &u.Floor, &u.Status, &u.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// RecentUploadLogs retrieves the latest upload logs of an owner
func (db *DB) RecentUploadLogs(ownerID string, limit int) ([]models.UploadLog, error) {
	rows, err := db.conn.Query(`
		SELECT id, owner_id, project_id, file_name, encoding, confidence,
		       dialect, format_confidence, accepted_count, rejected_count, created_at
		FROM upload_logs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.UploadLog
	for rows.Next() {
		var l models.UploadLog
		err := rows.Scan(&l.ID, &l.OwnerID, &l.ProjectID, &l.FileName, &l.Encoding, &l.Confidence,
			&l.Dialect, &l.FormatConfidence, &l.AcceptedCount, &l.RejectedCount, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
