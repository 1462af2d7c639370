package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogType identifies which moderation action produced a log entry.
type LogType string

const (
	LogTypeBan           LogType = "ban"
	LogTypeUnban         LogType = "unban"
	LogTypeTagSet        LogType = "tag_set"
	LogTypeTagClear      LogType = "tag_clear"
	LogTypeWatchlistOn   LogType = "watchlist_on"
	LogTypeWatchlistOff  LogType = "watchlist_off"
	LogTypeNoteAdd       LogType = "note_add"
	LogTypeNoteDelete    LogType = "note_delete"
	LogTypeReportAdd     LogType = "report_add"
	LogTypeReportResolve LogType = "report_resolve"
	LogTypeRoleGrant     LogType = "role_grant"
	LogTypeRoleRemove    LogType = "role_remove"
	LogTypeRoleEdit      LogType = "role_edit"
	LogTypeCodeCreate    LogType = "giftcode_create"
	LogTypeCodeDelete    LogType = "giftcode_delete"
	LogTypeCodeRedeem    LogType = "giftcode_redeem"
	LogTypeAPIKeyCreate  LogType = "apikey_create"
	LogTypeAPIKeyRevoke  LogType = "apikey_revoke"
)

// ModerationLogEntry is the persisted audit row written after every
// successful mutation. Exported marks rows already shipped to the R2 archive.
type ModerationLogEntry struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	LogType      LogType   `gorm:"index;not null" json:"log_type"`
	StaffID      string    `gorm:"index" json:"staff_id"`
	TargetUUID   string    `gorm:"index" json:"target_uuid,omitempty"`
	Role         string    `json:"role,omitempty"`
	Code         string    `gorm:"index" json:"code,omitempty"`
	Key          string    `json:"key,omitempty"`
	Note         string    `json:"note,omitempty"`
	Report       string    `json:"report,omitempty"`
	RolesAdded   []string  `gorm:"serializer:json;type:text" json:"roles_added,omitempty"`
	RolesRemoved []string  `gorm:"serializer:json;type:text" json:"roles_removed,omitempty"`
	Exported     bool      `gorm:"default:false;index" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (e *ModerationLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
