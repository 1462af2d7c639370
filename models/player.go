package models

import (
	"time"
)

// RoleGrant is one grant event on a player's role list. Rows are never
// physically deleted — removal sets ExpiresAt to the removal time so the
// history stays queryable.
type RoleGrant struct {
	Name          string     `json:"name"`
	AddedAt       time.Time  `json:"added_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"` // nil = permanent
	Reason        string     `json:"reason"`
	ManuallyAdded bool       `json:"manually_added"`
}

// ActiveAt reports whether the grant is active at the given instant.
// A grant is active iff it has no expiry or the expiry is strictly in the future.
func (g *RoleGrant) ActiveAt(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// Connections holds the player's linked external accounts.
type Connections struct {
	DiscordID string `gorm:"index" json:"discord_id,omitempty"`
	XboxXUID  string `json:"xbox_xuid,omitempty"`
}

// Player is the moderation record for one game account. Roles are stored as
// a JSON document column so grant history travels with the player row; the
// Version column guards every write (compare-and-swap, see services).
type Player struct {
	UUID      string `gorm:"primaryKey" json:"uuid"`
	Username  string `gorm:"index" json:"username"`
	Tag       string `json:"tag,omitempty"`
	Watchlist bool   `gorm:"default:false" json:"watchlist"`

	Banned       bool       `gorm:"default:false" json:"banned"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BannedBy     string     `json:"banned_by,omitempty"`
	BannedAt     *time.Time `json:"banned_at,omitempty"`
	BanExpiresAt *time.Time `json:"ban_expires_at,omitempty"` // nil = permanent ban

	Roles       []RoleGrant `gorm:"serializer:json;type:text" json:"roles"`
	Connections Connections `gorm:"embedded;embeddedPrefix:connection_" json:"connections"`

	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ActiveRoles returns the subsequence of Roles active at the given instant,
// in original insertion order. Expiry is evaluated lazily here — there is no
// background sweep flipping rows to expired.
func (p *Player) ActiveRoles(now time.Time) []RoleGrant {
	var active []RoleGrant
	for i := range p.Roles {
		if p.Roles[i].ActiveAt(now) {
			active = append(active, p.Roles[i])
		}
	}
	return active
}

// ActiveRole returns the index of the active grant with the given name, or -1.
// Name uniqueness is only enforced at the "active" boundary — expired rows
// with the same name may exist alongside.
func (p *Player) ActiveRole(name string, now time.Time) int {
	for i := range p.Roles {
		if p.Roles[i].Name == name && p.Roles[i].ActiveAt(now) {
			return i
		}
	}
	return -1
}

// RoleIndex returns the index of the most recent grant with the given name
// regardless of activity, or -1.
func (p *Player) RoleIndex(name string) int {
	for i := len(p.Roles) - 1; i >= 0; i-- {
		if p.Roles[i].Name == name {
			return i
		}
	}
	return -1
}

// BanActiveAt reports whether the player is banned at the given instant.
// Ban expiry follows the same lazy evaluation rule as role expiry.
func (p *Player) BanActiveAt(now time.Time) bool {
	if !p.Banned {
		return false
	}
	return p.BanExpiresAt == nil || p.BanExpiresAt.After(now)
}
