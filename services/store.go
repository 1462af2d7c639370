// services/store.go
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"player-moderation-system/metrics"
	"player-moderation-system/models"
)

// maxWriteAttempts bounds the optimistic-concurrency retry loop on a single
// document. Exhaustion surfaces as a persistence failure (safe to retry).
const maxWriteAttempts = 3

// errStaleWrite signals that a version-guarded update matched no row because
// another writer committed first.
var errStaleWrite = errors.New("stale write: document version changed")

func fetchPlayer(db *gorm.DB, uuid string) (*models.Player, error) {
	var p models.Player
	if err := db.First(&p, "uuid = ?", uuid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("player not found")
		}
		return nil, errPersistence(err, "failed to load player record")
	}
	return &p, nil
}

func fetchCode(db *gorm.DB, code string) (*models.GiftCode, error) {
	var c models.GiftCode
	if err := db.First(&c, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("gift code not found")
		}
		return nil, errPersistence(err, "failed to load gift code")
	}
	return &c, nil
}

// savePlayer writes the player back under a version guard. The caller holds
// the snapshot the guard was read from; errStaleWrite means re-read and retry.
func savePlayer(db *gorm.DB, p *models.Player) error {
	prev := p.Version
	p.Version = prev + 1
	res := db.Model(&models.Player{}).
		Where("uuid = ? AND version = ?", p.UUID, prev).
		Select("*").Omit("created_at").
		Updates(p)
	if res.Error != nil {
		p.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		p.Version = prev
		metrics.WriteConflicts.Inc()
		return errStaleWrite
	}
	return nil
}

// saveGiftCode is the gift-code counterpart of savePlayer.
func saveGiftCode(db *gorm.DB, c *models.GiftCode) error {
	prev := c.Version
	c.Version = prev + 1
	res := db.Model(&models.GiftCode{}).
		Where("id = ? AND version = ?", c.ID, prev).
		Select("*").Omit("created_at").
		Updates(c)
	if res.Error != nil {
		c.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		c.Version = prev
		metrics.WriteConflicts.Inc()
		return errStaleWrite
	}
	return nil
}

// withPlayer loads the player, applies fn to the snapshot and writes it back
// under the version guard, retrying with a fresh snapshot when another
// writer got there first. fn runs once per attempt, so precondition checks
// always evaluate against the exact snapshot being written — no
// check-then-act gap across writers.
func withPlayer(db *gorm.DB, uuid string, fn func(p *models.Player, now time.Time) error) (*models.Player, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		p, err := fetchPlayer(db, uuid)
		if err != nil {
			return nil, err
		}
		if err := fn(p, time.Now()); err != nil {
			return nil, err
		}
		switch err := savePlayer(db, p); {
		case err == nil:
			return p, nil
		case !errors.Is(err, errStaleWrite):
			return nil, errPersistence(err, "failed to write player record")
		}
	}
	return nil, errPersistence(errStaleWrite, "player record kept changing under concurrent writes")
}
