package models

import (
	"time"
)

// Collection groups notes by weak reference: membership in Notes implies the
// note still exists, reconciled when notes are deleted. The collection never
// owns a note's lifetime.
type Collection struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    uint      `gorm:"not null;index" json:"owner_id"`
	Name       string    `gorm:"not null" json:"name"`
	Notes      IDList    `gorm:"serializer:json" json:"notes"`
	SharedWith IDList    `gorm:"serializer:json" json:"shared_with"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Collection) TableName() string {
	return "collections"
}
