package models

import "time"

// UploadLog records one ingestion invocation for auditing, so a developer
// can see what was uploaded, how it was decoded and how many rows survived.
type UploadLog struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID   string `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	ProjectID string `gorm:"type:varchar(36);not null;index" json:"project_id"`

	FileName         string `gorm:"type:varchar(255);not null" json:"file_name"`
	Encoding         string `gorm:"type:varchar(20);not null" json:"encoding"`
	Confidence       string `gorm:"type:varchar(10);not null" json:"confidence"`
	Dialect          string `gorm:"type:varchar(30);not null" json:"dialect"`
	FormatConfidence int    `gorm:"type:int;not null" json:"format_confidence"`

	AcceptedCount int `gorm:"type:int;not null" json:"accepted_count"`
	RejectedCount int `gorm:"type:int;not null" json:"rejected_count"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name explicitly
func (UploadLog) TableName() string {
	return "upload_logs"
}
