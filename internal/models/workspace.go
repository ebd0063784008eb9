package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notebook is a student-owned collection of editable cells. The portal only
// stores notebook content; execution happens in an external environment.
type Notebook struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	OwnerID   uint              `gorm:"not null;index" json:"owner_id"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Subject   string            `gorm:"size:128" json:"subject"`
	Cells     datatypes.JSON    `gorm:"type:json" json:"cells"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Spreadsheet is a student-owned grid document stored as JSON rows.
type Spreadsheet struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	OwnerID   uint              `gorm:"not null;index" json:"owner_id"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Rows      datatypes.JSON    `gorm:"type:json" json:"rows"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
