package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlugUpSheet is the per job plug-up paperwork header. Its id is the job id.
type PlugUpSheet struct {
	JobID              string  `gorm:"primaryKey;type:char(36)"`
	LastEditedByUserID *string `gorm:"size:255"`
	LastEditedAt       *time.Time
	Version            uint64 `gorm:"not null;default:0"`
	CreatedAt          time.Time

	Rows []PlugUpRow `gorm:"foreignKey:SheetID;references:JobID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for PlugUpSheet
func (PlugUpSheet) TableName() string {
	return "plug_up_sheets"
}

// PlugUpRow is one label/value line of a sheet. Position records the order
// rows were written in and breaks ties between equal order indexes.
type PlugUpRow struct {
	RowID      string `gorm:"primaryKey;type:char(36)"`
	SheetID    string `gorm:"type:char(36);not null;index:idx_sheet_order,priority:1"`
	OrderIndex int    `gorm:"not null;index:idx_sheet_order,priority:2"`
	Position   int    `gorm:"not null;default:0"`
	Label      string `gorm:"not null"`
	Value      string `gorm:"not null"`
}

// TableName overrides the table name for PlugUpRow
func (PlugUpRow) TableName() string {
	return "plug_up_rows"
}

// BeforeCreate assigns a fresh row id.
func (r *PlugUpRow) BeforeCreate(tx *gorm.DB) error {
	if r.RowID == "" {
		r.RowID = uuid.NewString()
	}
	return nil
}
