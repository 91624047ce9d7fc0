package models

import "time"

// Project is the grouping entity that owns one batch of ingested units.
// A re-upload to the same (owner_id, slug) fully supersedes its units.
type Project struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_owner_slug,priority:1;index" json:"owner_id"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Slug    string `gorm:"type:varchar(64);not null;uniqueIndex:idx_owner_slug,priority:2" json:"slug"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name explicitly
func (Project) TableName() string {
	return "projects"
}
