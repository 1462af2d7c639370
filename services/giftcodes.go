// services/giftcodes.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"player-moderation-system/metrics"
	"player-moderation-system/models"
	"player-moderation-system/utils"
)

// CreateCodeInput is the staff-facing creation payload. Code is optional; a
// random token is generated when omitted.
type CreateCodeInput struct {
	Name           string
	Code           string
	MaxUses        int
	RoleName       string
	GiftDurationMs *int64 // nil = permanent grant
	ExpiresAt      *time.Time
	CreatedBy      string
}

// GiftCodeService owns gift code lifecycle and exactly-once-per-player
// redemption, delegating role mutation semantics to the role lifecycle
// helpers.
type GiftCodeService struct {
	DB  *gorm.DB
	Log *ModLog
}

func NewGiftCodeService(db *gorm.DB, modlog *ModLog) *GiftCodeService {
	return &GiftCodeService{DB: db, Log: modlog}
}

// Create validates and persists a new gift code. A collision on the unique
// code index is surfaced as a conflict, not retried.
func (s *GiftCodeService) Create(in CreateCodeInput) (*models.GiftCode, error) {
	if in.MaxUses < 1 {
		return nil, errValidation("max_uses must be at least 1")
	}
	role := NormalizeRoleName(in.RoleName)
	if role == "" {
		return nil, errValidation("gift role name must not be empty")
	}
	if in.GiftDurationMs != nil && *in.GiftDurationMs <= 0 {
		return nil, errValidation("gift duration must be positive")
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		generated, err := utils.RandomToken(utils.GiftCodeLength)
		if err != nil {
			return nil, errPersistence(err, "failed to generate gift code")
		}
		code = generated
	}

	gc := &models.GiftCode{
		ID:             uuid.NewString(),
		Code:           code,
		Name:           in.Name,
		Uses:           []string{},
		MaxUses:        in.MaxUses,
		GiftType:       models.GiftTypeRole,
		GiftValue:      role,
		GiftDurationMs: in.GiftDurationMs,
		ExpiresAt:      in.ExpiresAt,
		CreatedBy:      in.CreatedBy,
	}
	if err := s.DB.Create(gc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errConflict("a gift code with that value already exists")
		}
		return nil, errPersistence(err, "failed to create gift code")
	}

	s.Log.Record(ModEvent{
		LogType: models.LogTypeCodeCreate,
		StaffID: in.CreatedBy,
		Code:    gc.Code,
		Role:    role,
	})
	return gc, nil
}

// Redeem redeems the code for the player and returns the resulting role
// expiry (nil = permanent). An invalid code (expired or exhausted) fails
// exactly like a nonexistent one so callers cannot probe whether a dead
// code ever existed.
//
// The use is appended to the code first (cheap, reversible); the player role
// mutation is the commit point. When the player write fails, the use is
// released best-effort and the reconcile worker catches any leftovers.
func (s *GiftCodeService) Redeem(codeStr, playerUUID string) (*time.Time, error) {
	if playerUUID == "" {
		return nil, errValidation("player uuid must not be empty")
	}

	var code *models.GiftCode
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		c, err := fetchCode(s.DB, codeStr)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		if !c.ValidAt(now) {
			return nil, errNotFound("gift code not found")
		}
		if c.RedeemedBy(playerUUID) {
			return nil, errConflict("gift code already redeemed")
		}

		c.Uses = append(c.Uses, playerUUID)
		switch err := saveGiftCode(s.DB, c); {
		case err == nil:
			code = c
		case !errors.Is(err, errStaleWrite):
			return nil, errPersistence(err, "failed to record gift code use")
		}
		if code != nil {
			break
		}
	}
	if code == nil {
		return nil, errPersistence(errStaleWrite, "gift code kept changing under concurrent redemptions")
	}

	var expires *time.Time
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, now time.Time) error {
		expires = applyRedemption(p, code, now)
		return nil
	}); err != nil {
		s.releaseUse(code.Code, playerUUID)
		return nil, err
	}

	metrics.GiftCodeRedemptions.Inc()
	s.Log.Record(ModEvent{
		LogType:    models.LogTypeCodeRedeem,
		TargetUUID: playerUUID,
		Code:       code.Code,
		Role:       code.GiftValue,
	})
	return expires, nil
}

// IsValid reports whether the code can currently be redeemed.
func (s *GiftCodeService) IsValid(codeStr string) (bool, error) {
	c, err := fetchCode(s.DB, codeStr)
	if err != nil {
		return false, err
	}
	return c.ValidAt(time.Now()), nil
}

// UsesLeft returns max_uses minus recorded uses, including zero.
func (s *GiftCodeService) UsesLeft(codeStr string) (int, error) {
	c, err := fetchCode(s.DB, codeStr)
	if err != nil {
		return 0, err
	}
	return c.UsesLeft(), nil
}

// Get returns the full code record for staff display.
func (s *GiftCodeService) Get(codeStr string) (*models.GiftCode, error) {
	return fetchCode(s.DB, codeStr)
}

// List returns all codes, newest first.
func (s *GiftCodeService) List() ([]models.GiftCode, error) {
	var codes []models.GiftCode
	if err := s.DB.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, errPersistence(err, "failed to list gift codes")
	}
	return codes, nil
}

// Delete hard-deletes a code by internal id. Terminal — redeemed roles stay.
func (s *GiftCodeService) Delete(id, staffID string) error {
	res := s.DB.Delete(&models.GiftCode{}, "id = ?", id)
	if res.Error != nil {
		return errPersistence(res.Error, "failed to delete gift code")
	}
	if res.RowsAffected == 0 {
		return errNotFound("gift code not found")
	}

	s.Log.Record(ModEvent{
		LogType: models.LogTypeCodeDelete,
		StaffID: staffID,
		Code:    id,
	})
	return nil
}

// applyRedemption grants or extends the code's role on the player and
// returns the resulting expiry. Extending an active grant is allowed here —
// the code path is the one sanctioned exception to the grant path's
// no-silent-extend rule, and it annotates the reason so provenance is kept.
func applyRedemption(p *models.Player, code *models.GiftCode, now time.Time) *time.Time {
	name := NormalizeRoleName(code.GiftValue)
	dur := code.GiftDuration()

	if i := p.ActiveRole(name, now); i >= 0 {
		g := &p.Roles[i]
		switch {
		case dur == nil:
			g.ExpiresAt = nil // permanent gift upgrades a timed grant
		case g.ExpiresAt != nil:
			t := g.ExpiresAt.Add(*dur) // extend from the current expiry, not from now
			g.ExpiresAt = &t
		}
		// an already-permanent grant stays permanent
		g.AddedAt = now
		g.Reason += " | Gift code: " + code.Code
		return g.ExpiresAt
	}

	var expires *time.Time
	if dur != nil {
		t := now.Add(*dur)
		expires = &t
	}
	g, err := applyGrant(p, name, GrantOptions{
		Reason:        "Gift code: " + code.Code,
		ManuallyAdded: false,
		ExpiresAt:     expires,
	}, now)
	if err != nil {
		// unreachable: the role is not active and the name was validated at
		// code creation
		return expires
	}
	return g.ExpiresAt
}

// releaseUse removes the player's use entry again after a failed redemption.
// Best effort only; the reconcile worker handles anything left behind.
func (s *GiftCodeService) releaseUse(codeStr, playerUUID string) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		c, err := fetchCode(s.DB, codeStr)
		if err != nil {
			return
		}

		kept := make([]string, 0, len(c.Uses))
		found := false
		for _, u := range c.Uses {
			if !found && u == playerUUID {
				found = true
				continue
			}
			kept = append(kept, u)
		}
		if !found {
			return
		}

		c.Uses = kept
		switch err := saveGiftCode(s.DB, c); {
		case err == nil:
			return
		case !errors.Is(err, errStaleWrite):
			log.Printf("⚠️ [GIFTCODE] failed to release use of %s for %s: %v", codeStr, playerUUID, err)
			return
		}
	}
	log.Printf("⚠️ [GIFTCODE] could not release use of %s for %s, leaving it to the reconcile worker", codeStr, playerUUID)
}
