package models

import (
	"time"
)

// GiftType indicates what a gift code grants when redeemed.
type GiftType string

const (
	GiftTypeRole GiftType = "role"
)

// GiftCode is a redeemable token. Uses keeps the redeeming player UUIDs in
// redemption order (order only matters for audit display). The Version column
// guards the Uses append against concurrent redemptions.
type GiftCode struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Code string `gorm:"uniqueIndex;not null" json:"code"`
	Name string `gorm:"not null" json:"name"`

	Uses    []string `gorm:"serializer:json;type:text" json:"uses"`
	MaxUses int      `gorm:"not null" json:"max_uses"`

	GiftType       GiftType `gorm:"type:varchar(16);default:'role'" json:"gift_type"`
	GiftValue      string   `gorm:"not null" json:"gift_value"`  // role name
	GiftDurationMs *int64   `json:"gift_duration_ms,omitempty"` // nil = permanent grant

	ExpiresAt *time.Time `json:"expires_at,omitempty"` // code-level expiry, independent of the grant's

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	Version   int64     `gorm:"not null;default:0" json:"-"`
}

// ValidAt reports whether the code can still be redeemed at the given instant:
// uses below the ceiling and the code itself not expired.
func (c *GiftCode) ValidAt(now time.Time) bool {
	if len(c.Uses) >= c.MaxUses {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(now)
}

// UsesLeft returns the remaining redemption count, never below zero.
func (c *GiftCode) UsesLeft() int {
	left := c.MaxUses - len(c.Uses)
	if left < 0 {
		return 0
	}
	return left
}

// RedeemedBy reports whether the given player already redeemed this code.
func (c *GiftCode) RedeemedBy(playerUUID string) bool {
	for _, u := range c.Uses {
		if u == playerUUID {
			return true
		}
	}
	return false
}

// GiftDuration converts the stored millisecond duration, nil for permanent.
func (c *GiftCode) GiftDuration() *time.Duration {
	if c.GiftDurationMs == nil {
		return nil
	}
	d := time.Duration(*c.GiftDurationMs) * time.Millisecond
	return &d
}
