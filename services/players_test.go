package services

import (
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"

	"player-moderation-system/models"
)

func TestEnsureCreatesAndReturnsExisting(t *testing.T) {
	_, players, _, _ := newTestServices(t)

	created, err := players.Ensure("p1", "Steve")
	require.NoError(t, err)
	require.Equal(t, "p1", created.UUID)
	require.Equal(t, "Steve", created.Username)

	again, err := players.Ensure("p1", "SomebodyElse")
	require.NoError(t, err)
	require.Equal(t, "Steve", again.Username, "existing record must not be overwritten")

	_, err = players.Ensure("  ", "x")
	requireCategory(t, err, goerrors.CategoryValidation)
}

func TestGetByDiscordID(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	require.NoError(t, db.Create(&models.Player{
		UUID:        "p1",
		Username:    "Steve",
		Roles:       []models.RoleGrant{},
		Connections: models.Connections{DiscordID: "123456789"},
	}).Error)

	p, err := players.GetByDiscordID("123456789")
	require.NoError(t, err)
	require.Equal(t, "p1", p.UUID)

	_, err = players.GetByDiscordID("000000000")
	requireCategory(t, err, goerrors.CategoryNotFound)
}

func TestBanLifecycle(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	err := players.Ban("p1", "", "staff1", nil)
	requireCategory(t, err, goerrors.CategoryValidation)

	require.NoError(t, players.Ban("p1", "griefing", "staff1", nil))

	err = players.Ban("p1", "again", "staff1", nil)
	requireCategory(t, err, goerrors.CategoryConflict)

	p, err := players.Get("p1")
	require.NoError(t, err)
	require.True(t, p.BanActiveAt(time.Now()))
	require.Equal(t, "griefing", p.BanReason)

	require.NoError(t, players.Unban("p1", "staff1"))

	err = players.Unban("p1", "staff1")
	requireCategory(t, err, goerrors.CategoryConflict)
}

func TestExpiredBanCanBeReplaced(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, players.Ban("p1", "old offense", "staff1", &past))

	p, err := players.Get("p1")
	require.NoError(t, err)
	require.False(t, p.BanActiveAt(time.Now()))

	// the expired ban does not block a new one
	require.NoError(t, players.Ban("p1", "new offense", "staff2", nil))
}

func TestTagSetAndClear(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	err := players.ClearTag("p1", "staff1")
	requireCategory(t, err, goerrors.CategoryConflict)

	require.NoError(t, players.SetTag("p1", "suspicious", "staff1"))

	p, err := players.Get("p1")
	require.NoError(t, err)
	require.Equal(t, "suspicious", p.Tag)

	require.NoError(t, players.ClearTag("p1", "staff1"))
}

func TestWatchlistToggle(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	err := players.SetWatchlist("p1", false, "staff1")
	requireCategory(t, err, goerrors.CategoryConflict)

	require.NoError(t, players.SetWatchlist("p1", true, "staff1"))

	err = players.SetWatchlist("p1", true, "staff1")
	requireCategory(t, err, goerrors.CategoryConflict)

	require.NoError(t, players.SetWatchlist("p1", false, "staff1"))
}

func TestNotes(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := players.AddNote("p1", "  ", "staff1")
	requireCategory(t, err, goerrors.CategoryValidation)

	note, err := players.AddNote("p1", "keeps evading filters", "staff1")
	require.NoError(t, err)
	require.NotEmpty(t, note.ID)

	notes, err := players.Notes("p1")
	require.NoError(t, err)
	require.Len(t, notes, 1)

	require.NoError(t, players.DeleteNote("p1", note.ID, "staff1"))

	err = players.DeleteNote("p1", note.ID, "staff1")
	requireCategory(t, err, goerrors.CategoryNotFound)
}

func TestReports(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	report, err := players.AddReport("p1", "p2", "spamming chat")
	require.NoError(t, err)

	open, err := players.Reports("p1", false)
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, players.ResolveReport("p1", report.ID, "staff1"))

	err = players.ResolveReport("p1", report.ID, "staff1")
	requireCategory(t, err, goerrors.CategoryConflict)

	open, err = players.Reports("p1", false)
	require.NoError(t, err)
	require.Empty(t, open)

	all, err := players.Reports("p1", true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].Resolved)
	require.Equal(t, "staff1", all[0].ResolvedBy)
}

func TestAPIKeys(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	key, err := players.CreateAPIKey("p1", "companion app", "staff1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key.Key, "pmk_"))

	keys, err := players.APIKeys("p1")
	require.NoError(t, err)
	require.Len(t, keys, 1)

	require.NoError(t, players.RevokeAPIKey("p1", key.Key, "staff1"))

	err = players.RevokeAPIKey("p1", key.Key, "staff1")
	requireCategory(t, err, goerrors.CategoryNotFound)
}

func TestOptimisticRetrySurvivesConcurrentWrite(t *testing.T) {
	db, players, _, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	// bump the version behind the first snapshot's back on attempt one
	attempt := 0
	_, err := withPlayer(db, "p1", func(p *models.Player, _ time.Time) error {
		attempt++
		if attempt == 1 {
			require.NoError(t, db.Model(&models.Player{}).
				Where("uuid = ?", "p1").
				Update("version", p.Version+1).Error)
		}
		p.Tag = "retried"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempt, "stale first write should trigger one retry")

	p, err := players.Get("p1")
	require.NoError(t, err)
	require.Equal(t, "retried", p.Tag)
}
