package models

import (
	"time"
)

// PlayerAPIKey is a key issued against a player account for the companion
// API. Keys are created and revoked by staff; revocation is a hard delete.
type PlayerAPIKey struct {
	Key        string     `gorm:"primaryKey" json:"key"`
	PlayerUUID string     `gorm:"index;not null" json:"player_uuid"`
	Name       string     `gorm:"not null" json:"name"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
}
