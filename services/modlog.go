// services/modlog.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"player-moderation-system/metrics"
	"player-moderation-system/models"
)

// ModLog is the audit pipeline: every successful mutation is persisted as a
// ModerationLogEntry and fanned out to the notifier. Both legs are
// best-effort relative to the mutation itself — a failed log write or a
// failed notification never undoes a committed change.
type ModLog struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewModLog(db *gorm.DB, notifier Notifier) *ModLog {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ModLog{DB: db, Notifier: notifier}
}

// Record writes the audit row and dispatches the notifier without blocking
// the caller. Call only after the mutation committed.
func (l *ModLog) Record(event ModEvent) {
	entry := models.ModerationLogEntry{
		ID:           uuid.NewString(),
		LogType:      event.LogType,
		StaffID:      event.StaffID,
		TargetUUID:   event.TargetUUID,
		Role:         event.Role,
		Code:         event.Code,
		Key:          event.Key,
		Note:         event.Note,
		Report:       event.Report,
		RolesAdded:   event.RolesAdded,
		RolesRemoved: event.RolesRemoved,
		CreatedAt:    time.Now(),
	}
	if err := l.DB.Create(&entry).Error; err != nil {
		log.Printf("⚠️ [MODLOG] failed to persist log entry (%s): %v", event.LogType, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.Notifier.Notify(ctx, event); err != nil {
			metrics.NotifierFailures.Inc()
			log.Printf("⚠️ [MODLOG] notifier delivery failed (%s): %v", event.LogType, err)
		}
	}()
}

// Entries returns a page of log entries, newest first.
func (l *ModLog) Entries(limit, offset int) ([]models.ModerationLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.ModerationLogEntry
	if err := l.DB.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, errPersistence(err, "failed to fetch moderation log")
	}
	return entries, nil
}

// HasRedemption reports whether a redeem entry exists for the code/player
// pair. The reconcile worker uses this to spot orphaned code uses.
func (l *ModLog) HasRedemption(code, playerUUID string) (bool, error) {
	var count int64
	err := l.DB.Model(&models.ModerationLogEntry{}).
		Where("log_type = ? AND code = ? AND target_uuid = ?", models.LogTypeCodeRedeem, code, playerUUID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
