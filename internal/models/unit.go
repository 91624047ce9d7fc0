package models

import "time"

// Unit is the canonical record every source dialect is mapped into.
// Required fields are never null: prices fall back to the documented
// placeholder 1 and dates to the upload day, so downstream report
// generation can assume completeness.
type Unit struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID string `gorm:"type:varchar(36);not null;index" json:"project_id"`
	OwnerID   string `gorm:"type:varchar(64);not null;index" json:"owner_id"`

	// Location hierarchy
	Region       string `gorm:"type:varchar(100);not null" json:"region" validate:"required"`
	County       string `gorm:"type:varchar(100);not null" json:"county" validate:"required"`
	Municipality string `gorm:"type:varchar(100);not null" json:"municipality" validate:"required"`

	UnitNumber string   `gorm:"type:varchar(100);not null" json:"unit_number"`
	Kind       UnitKind `gorm:"type:varchar(20);not null" json:"kind"`

	// Pricing (placeholder 1 when the source has no usable value)
	UsableArea     float64 `gorm:"type:decimal(10,2);not null" json:"usable_area" validate:"gte=0"`
	PricePerM2     float64 `gorm:"type:decimal(12,2);not null" json:"price_per_m2" validate:"gte=0"`
	BasePrice      float64 `gorm:"type:decimal(14,2);not null" json:"base_price" validate:"gte=0"`
	BasePriceDate  string  `gorm:"type:varchar(10);not null" json:"base_price_date"`
	FinalPrice     float64 `gorm:"type:decimal(14,2);not null" json:"final_price" validate:"gte=0"`
	FinalPriceDate string  `gorm:"type:varchar(10);not null" json:"final_price_date"`

	// Optional extras (null means the source said nothing)
	Parking         *string `gorm:"type:text" json:"parking,omitempty"`
	Storage         *string `gorm:"type:text" json:"storage,omitempty"`
	NecessaryRights *string `gorm:"type:text" json:"necessary_rights,omitempty"`
	OtherServices   *string `gorm:"type:text" json:"other_services,omitempty"`
	ProspectusURL   *string `gorm:"type:text" json:"prospectus_url,omitempty"`
	Rooms           *int    `gorm:"type:int" json:"rooms,omitempty"`
	Floor           *int    `gorm:"type:int" json:"floor,omitempty"`

	Status UnitStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// UnitKind distinguishes houses from apartments
type UnitKind string

const (
	UnitKindApartment UnitKind = "apartment"
	UnitKindHouse     UnitKind = "house"
)

// UnitStatus is the sales status of a unit
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusSold      UnitStatus = "sold"
)

// TableName specifies the table name explicitly
func (Unit) TableName() string {
	return "units"
}
