// services/scheduler.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"player-moderation-system/models"
	"player-moderation-system/utils"
)

// StartAuditExportScheduler ships unexported moderation log entries to the
// R2 archive once a day. Entries stay in the table either way; the Exported
// flag only tracks what has been shipped.
func (l *ModLog) StartAuditExportScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			if err := l.exportBatch(); err != nil {
				log.Printf("[AuditExport] export failed: %v", err)
			}
		}),
	)
}

func (l *ModLog) exportBatch() error {
	var entries []models.ModerationLogEntry
	if err := l.DB.Where("exported = ?", false).Order("created_at ASC").Find(&entries).Error; err != nil {
		return fmt.Errorf("failed to collect entries: %w", err)
	}
	if len(entries) == 0 {
		log.Println("[AuditExport] nothing to export")
		return nil
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to serialize entries: %w", err)
	}

	key := fmt.Sprintf("modlog/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	url, err := utils.UploadArchiveToR2(key, payload, "application/json")
	if err != nil {
		return err
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := l.DB.Model(&models.ModerationLogEntry{}).Where("id IN ?", ids).Update("exported", true).Error; err != nil {
		// entries will be re-exported next run; the archive key is unique per run
		return fmt.Errorf("failed to mark entries exported: %w", err)
	}

	log.Printf("✅ [AuditExport] archived %d entries to %s", len(entries), url)
	return nil
}
