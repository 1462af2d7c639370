// workers/reconcile_worker.go
package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"player-moderation-system/metrics"
	"player-moderation-system/models"
)

// GiftCodeReconcileWorker releases gift-code uses that never produced a
// redemption log entry — the player write failed after the use was appended
// and the inline compensation also failed. Runs on a fixed interval with a
// grace window so in-flight redemptions are left alone.
type GiftCodeReconcileWorker struct {
	db       *gorm.DB
	interval time.Duration
	grace    time.Duration
}

func NewGiftCodeReconcileWorker(db *gorm.DB) *GiftCodeReconcileWorker {
	return &GiftCodeReconcileWorker{
		db:       db,
		interval: 10 * time.Minute,
		grace:    15 * time.Minute,
	}
}

func (w *GiftCodeReconcileWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Gift Code Reconcile Worker (orphaned uses → released)…")
	go w.run(ctx)
}

func (w *GiftCodeReconcileWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := w.Reconcile(); err != nil {
				log.Printf("❌ [RECONCILE] pass failed: %v", err)
			} else if n > 0 {
				log.Printf("✅ [RECONCILE] released %d orphaned use(s)", n)
			}
		case <-ctx.Done():
			log.Println("⏹️ Gift Code Reconcile Worker stopped")
			return
		}
	}
}

// Reconcile runs one pass over all codes and returns how many orphaned uses
// it released.
func (w *GiftCodeReconcileWorker) Reconcile() (int, error) {
	var codes []models.GiftCode
	if err := w.db.Find(&codes).Error; err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-w.grace)
	released := 0
	for i := range codes {
		c := &codes[i]
		if len(c.Uses) == 0 || c.UpdatedAt.After(cutoff) {
			continue
		}

		kept := make([]string, 0, len(c.Uses))
		for _, use := range c.Uses {
			redeemed, err := w.hasRedemptionEntry(c.Code, use)
			if err != nil {
				return released, err
			}
			if redeemed {
				kept = append(kept, use)
			}
		}
		if len(kept) == len(c.Uses) {
			continue
		}

		orphans := len(c.Uses) - len(kept)
		payload, err := json.Marshal(kept)
		if err != nil {
			return released, err
		}
		// version-guarded write; a lost race just defers to the next pass
		res := w.db.Model(&models.GiftCode{}).
			Where("id = ? AND version = ?", c.ID, c.Version).
			Updates(map[string]interface{}{
				"uses":    string(payload),
				"version": c.Version + 1,
			})
		if res.Error != nil {
			return released, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}

		released += orphans
		metrics.OrphanedUsesReclaimed.Add(float64(orphans))
		log.Printf("🧹 [RECONCILE] code %s: released %d orphaned use(s)", c.Code, orphans)
	}
	return released, nil
}

func (w *GiftCodeReconcileWorker) hasRedemptionEntry(code, playerUUID string) (bool, error) {
	var count int64
	err := w.db.Model(&models.ModerationLogEntry{}).
		Where("log_type = ? AND code = ? AND target_uuid = ?", models.LogTypeCodeRedeem, code, playerUUID).
		Count(&count).Error
	return count > 0, err
}
