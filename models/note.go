package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlayerNote is a free-text staff note attached to a player record.
type PlayerNote struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerUUID string    `gorm:"index;not null" json:"player_uuid"`
	StaffID    string    `gorm:"not null" json:"staff_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (n *PlayerNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// PlayerReport is a player-vs-player report reviewed by staff. Reports are
// resolved, never deleted.
type PlayerReport struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerUUID   string     `gorm:"index;not null" json:"player_uuid"` // reported player
	ReporterUUID string     `gorm:"index" json:"reporter_uuid"`
	Reason       string     `gorm:"type:text;not null" json:"reason"`
	Resolved     bool       `gorm:"default:false" json:"resolved"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (r *PlayerReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
