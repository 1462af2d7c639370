package services

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestGrantAndActive(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	grant, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "test grant", ManuallyAdded: true})
	require.NoError(t, err)
	require.Equal(t, "vip", grant.Name)
	require.Nil(t, grant.ExpiresAt)
	require.True(t, grant.ManuallyAdded)

	active, err := roles.Active("p1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "vip", active[0].Name)
}

func TestGrantNormalizesRoleName(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	grant, err := roles.Grant("p1", "VIP Plus", "staff1", GrantOptions{Reason: "typed by hand"})
	require.NoError(t, err)
	require.Equal(t, "vip-plus", grant.Name)

	// same role under a different spelling is the same role
	_, err = roles.Grant("p1", "vip plus", "staff1", GrantOptions{Reason: "again"})
	requireCategory(t, err, goerrors.CategoryConflict)
}

func TestGrantConflictOnActiveRole(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "first"})
	require.NoError(t, err)

	_, err = roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "second"})
	requireCategory(t, err, goerrors.CategoryConflict)
}

func TestGrantEmptyNameValidation(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := roles.Grant("p1", "", "staff1", GrantOptions{})
	requireCategory(t, err, goerrors.CategoryValidation)
}

func TestGrantMissingPlayerNotFound(t *testing.T) {
	_, _, roles, _ := newTestServices(t)

	_, err := roles.Grant("nope", "vip", "staff1", GrantOptions{})
	requireCategory(t, err, goerrors.CategoryNotFound)
}

func TestGrantTimedRoleExpires(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	past := time.Now().Add(-time.Minute)
	_, err := roles.Grant("p1", "trial", "staff1", GrantOptions{Reason: "already over", ExpiresAt: &past})
	require.NoError(t, err)

	active, err := roles.Active("p1")
	require.NoError(t, err)
	require.Empty(t, active)

	// the row still exists as history
	p, err := fetchPlayer(db, "p1")
	require.NoError(t, err)
	require.Len(t, p.Roles, 1)
}

func TestRemoveSoftExpiresRole(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "grant"})
	require.NoError(t, err)
	require.NoError(t, roles.Remove("p1", "vip", "staff1"))

	active, err := roles.Active("p1")
	require.NoError(t, err)
	require.Empty(t, active)

	p, err := fetchPlayer(db, "p1")
	require.NoError(t, err)
	require.Len(t, p.Roles, 1)
	require.NotNil(t, p.Roles[0].ExpiresAt)
}

func TestRemoveInactiveRoleConflict(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	err := roles.Remove("p1", "vip", "staff1")
	requireCategory(t, err, goerrors.CategoryConflict)
}

func TestRegrantReusesExpiredRow(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "first"})
	require.NoError(t, err)
	require.NoError(t, roles.Remove("p1", "vip", "staff1"))
	time.Sleep(2 * time.Millisecond)

	grant, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "second"})
	require.NoError(t, err)
	require.Equal(t, "second", grant.Reason)

	p, err := fetchPlayer(db, "p1")
	require.NoError(t, err)
	require.Len(t, p.Roles, 1, "expired row should be reused, not duplicated")
	require.Nil(t, p.Roles[0].ExpiresAt)
}

func TestReconcileSymmetricDiff(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	for _, r := range []string{"alpha", "beta"} {
		_, err := roles.Grant("p1", r, "staff1", GrantOptions{Reason: "seed"})
		require.NoError(t, err)
	}
	time.Sleep(2 * time.Millisecond)

	added, removed, err := roles.Reconcile("p1", []string{"beta", "gamma"}, GrantOptions{Reason: "bulk"}, "staff1")
	require.NoError(t, err)
	require.Equal(t, []string{"gamma"}, added)
	require.Equal(t, []string{"alpha"}, removed)

	active, err := roles.Active("p1")
	require.NoError(t, err)
	names := make([]string, len(active))
	for i, g := range active {
		names[i] = g.Name
	}
	require.ElementsMatch(t, []string{"beta", "gamma"}, names)
}

func TestReconcileNoChanges(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "seed"})
	require.NoError(t, err)

	added, removed, err := roles.Reconcile("p1", []string{"vip"}, GrantOptions{}, "staff1")
	require.NoError(t, err)
	require.Empty(t, added)
	require.Empty(t, removed)
	require.NotNil(t, added)
	require.NotNil(t, removed)
}

func TestReconcileDeduplicatesAndNormalizes(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	added, removed, err := roles.Reconcile("p1", []string{"VIP Plus", "vip-plus", "", "mod"}, GrantOptions{Reason: "bulk"}, "staff1")
	require.NoError(t, err)
	require.Equal(t, []string{"vip-plus", "mod"}, added)
	require.Empty(t, removed)
}

func TestReconcileEmptyDesiredRemovesAll(t *testing.T) {
	db, _, roles, _ := newTestServices(t)
	seedPlayer(t, db, "p1")

	_, err := roles.Grant("p1", "vip", "staff1", GrantOptions{Reason: "seed"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	added, removed, err := roles.Reconcile("p1", nil, GrantOptions{}, "staff1")
	require.NoError(t, err)
	require.Empty(t, added)
	require.Equal(t, []string{"vip"}, removed)
}
