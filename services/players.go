// services/players.go
package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"player-moderation-system/models"
	"player-moderation-system/utils"
)

// PlayerService covers the player-record CRUD around the role core: bans,
// tags, watchlist, notes, reports and API keys. Every successful mutation
// lands in the moderation log.
type PlayerService struct {
	DB  *gorm.DB
	Log *ModLog
}

func NewPlayerService(db *gorm.DB, modlog *ModLog) *PlayerService {
	return &PlayerService{DB: db, Log: modlog}
}

// Get loads a player by UUID.
func (s *PlayerService) Get(playerUUID string) (*models.Player, error) {
	return fetchPlayer(s.DB, playerUUID)
}

// GetByDiscordID loads a player by linked Discord account id.
func (s *PlayerService) GetByDiscordID(discordID string) (*models.Player, error) {
	var p models.Player
	if err := s.DB.First(&p, "connection_discord_id = ?", discordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("player not found")
		}
		return nil, errPersistence(err, "failed to load player record")
	}
	return &p, nil
}

// Ensure returns the player record, creating an empty one when the UUID has
// never been seen.
func (s *PlayerService) Ensure(playerUUID, username string) (*models.Player, error) {
	if strings.TrimSpace(playerUUID) == "" {
		return nil, errValidation("player uuid must not be empty")
	}
	p, err := fetchPlayer(s.DB, playerUUID)
	if err == nil {
		return p, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	created := &models.Player{UUID: playerUUID, Username: username, Roles: []models.RoleGrant{}}
	if err := s.DB.Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a creation race; the record exists now
			return fetchPlayer(s.DB, playerUUID)
		}
		return nil, errPersistence(err, "failed to create player record")
	}
	return created, nil
}

// Ban bans the player. Re-banning while a ban is active is a conflict; an
// expired ban may be replaced.
func (s *PlayerService) Ban(playerUUID, reason, staffID string, expiresAt *time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return errValidation("ban reason must not be empty")
	}
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, now time.Time) error {
		if p.BanActiveAt(now) {
			return errConflict("player is already banned")
		}
		bannedAt := now
		p.Banned = true
		p.BanReason = reason
		p.BannedBy = staffID
		p.BannedAt = &bannedAt
		p.BanExpiresAt = expiresAt
		return nil
	}); err != nil {
		return err
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeBan,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Note:       reason,
	})
	return nil
}

// Unban lifts an active ban. Unbanning a player who is not banned is a
// conflict so the caller learns nothing changed.
func (s *PlayerService) Unban(playerUUID, staffID string) error {
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, now time.Time) error {
		if !p.BanActiveAt(now) {
			return errConflict("player is not banned")
		}
		p.Banned = false
		p.BanReason = ""
		p.BannedBy = ""
		p.BannedAt = nil
		p.BanExpiresAt = nil
		return nil
	}); err != nil {
		return err
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeUnban,
		StaffID:    staffID,
		TargetUUID: playerUUID,
	})
	return nil
}

// SetTag sets the player's moderation tag.
func (s *PlayerService) SetTag(playerUUID, tag, staffID string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return errValidation("tag must not be empty")
	}
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, _ time.Time) error {
		p.Tag = tag
		return nil
	}); err != nil {
		return err
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeTagSet,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Note:       tag,
	})
	return nil
}

// ClearTag removes the tag; clearing an unset tag is a conflict.
func (s *PlayerService) ClearTag(playerUUID, staffID string) error {
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, _ time.Time) error {
		if p.Tag == "" {
			return errConflict("player has no tag set")
		}
		p.Tag = ""
		return nil
	}); err != nil {
		return err
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeTagClear,
		StaffID:    staffID,
		TargetUUID: playerUUID,
	})
	return nil
}

// SetWatchlist flips the watchlist flag. Setting the flag to the state it
// is already in is a conflict, per the "tell me if nothing changed"
// contract.
func (s *PlayerService) SetWatchlist(playerUUID string, watching bool, staffID string) error {
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, _ time.Time) error {
		if p.Watchlist == watching {
			if watching {
				return errConflict("player is already on the watchlist")
			}
			return errConflict("player is not on the watchlist")
		}
		p.Watchlist = watching
		return nil
	}); err != nil {
		return err
	}

	logType := models.LogTypeWatchlistOn
	if !watching {
		logType = models.LogTypeWatchlistOff
	}
	s.Log.Record(ModEvent{
		LogType:    logType,
		StaffID:    staffID,
		TargetUUID: playerUUID,
	})
	return nil
}

// --- Notes ---

func (s *PlayerService) AddNote(playerUUID, body, staffID string) (*models.PlayerNote, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errValidation("note body must not be empty")
	}
	if _, err := fetchPlayer(s.DB, playerUUID); err != nil {
		return nil, err
	}

	note := &models.PlayerNote{PlayerUUID: playerUUID, StaffID: staffID, Body: body}
	if err := s.DB.Create(note).Error; err != nil {
		return nil, errPersistence(err, "failed to create note")
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeNoteAdd,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Note:       note.ID,
	})
	return note, nil
}

func (s *PlayerService) DeleteNote(playerUUID, noteID, staffID string) error {
	res := s.DB.Delete(&models.PlayerNote{}, "id = ? AND player_uuid = ?", noteID, playerUUID)
	if res.Error != nil {
		return errPersistence(res.Error, "failed to delete note")
	}
	if res.RowsAffected == 0 {
		return errNotFound("note not found")
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeNoteDelete,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Note:       noteID,
	})
	return nil
}

func (s *PlayerService) Notes(playerUUID string) ([]models.PlayerNote, error) {
	var notes []models.PlayerNote
	if err := s.DB.Where("player_uuid = ?", playerUUID).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, errPersistence(err, "failed to fetch notes")
	}
	return notes, nil
}

// --- Reports ---

func (s *PlayerService) AddReport(playerUUID, reporterUUID, reason string) (*models.PlayerReport, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errValidation("report reason must not be empty")
	}
	if _, err := fetchPlayer(s.DB, playerUUID); err != nil {
		return nil, err
	}

	report := &models.PlayerReport{PlayerUUID: playerUUID, ReporterUUID: reporterUUID, Reason: reason}
	if err := s.DB.Create(report).Error; err != nil {
		return nil, errPersistence(err, "failed to create report")
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeReportAdd,
		StaffID:    reporterUUID,
		TargetUUID: playerUUID,
		Report:     report.ID,
	})
	return report, nil
}

func (s *PlayerService) ResolveReport(playerUUID, reportID, staffID string) error {
	var report models.PlayerReport
	if err := s.DB.First(&report, "id = ? AND player_uuid = ?", reportID, playerUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound("report not found")
		}
		return errPersistence(err, "failed to load report")
	}
	if report.Resolved {
		return errConflict("report is already resolved")
	}

	now := time.Now()
	report.Resolved = true
	report.ResolvedBy = staffID
	report.ResolvedAt = &now
	if err := s.DB.Save(&report).Error; err != nil {
		return errPersistence(err, "failed to resolve report")
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeReportResolve,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Report:     reportID,
	})
	return nil
}

func (s *PlayerService) Reports(playerUUID string, includeResolved bool) ([]models.PlayerReport, error) {
	query := s.DB.Where("player_uuid = ?", playerUUID)
	if !includeResolved {
		query = query.Where("resolved = ?", false)
	}
	var reports []models.PlayerReport
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, errPersistence(err, "failed to fetch reports")
	}
	return reports, nil
}

// --- API keys ---

func (s *PlayerService) CreateAPIKey(playerUUID, name, staffID string) (*models.PlayerAPIKey, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errValidation("key name must not be empty")
	}
	if _, err := fetchPlayer(s.DB, playerUUID); err != nil {
		return nil, err
	}

	key, err := utils.NewAPIKey()
	if err != nil {
		return nil, errPersistence(err, "failed to generate API key")
	}
	record := &models.PlayerAPIKey{Key: key, PlayerUUID: playerUUID, Name: name, CreatedBy: staffID}
	if err := s.DB.Create(record).Error; err != nil {
		return nil, errPersistence(err, "failed to create API key")
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeAPIKeyCreate,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Key:        name, // never log the key material itself
	})
	return record, nil
}

func (s *PlayerService) RevokeAPIKey(playerUUID, key, staffID string) error {
	res := s.DB.Delete(&models.PlayerAPIKey{}, "key = ? AND player_uuid = ?", key, playerUUID)
	if res.Error != nil {
		return errPersistence(res.Error, "failed to revoke API key")
	}
	if res.RowsAffected == 0 {
		return errNotFound("API key not found")
	}

	s.Log.Record(ModEvent{
		LogType:    models.LogTypeAPIKeyRevoke,
		StaffID:    staffID,
		TargetUUID: playerUUID,
	})
	return nil
}

func (s *PlayerService) APIKeys(playerUUID string) ([]models.PlayerAPIKey, error) {
	var keys []models.PlayerAPIKey
	if err := s.DB.Where("player_uuid = ?", playerUUID).Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, errPersistence(err, "failed to fetch API keys")
	}
	return keys, nil
}
