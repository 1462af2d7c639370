// services/roles.go
package services

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"player-moderation-system/metrics"
	"player-moderation-system/models"
)

// GrantOptions carries the provenance of a role grant.
type GrantOptions struct {
	Reason        string
	ManuallyAdded bool
	ExpiresAt     *time.Time // nil = permanent
}

// RoleService owns add/remove/reconcile/query-active semantics for the role
// list on a player record. All mutations are idempotent with respect to the
// final active state, but granting over a live role is a conflict rather
// than a silent extension — you cannot shorten or re-describe a live grant
// through the grant path.
type RoleService struct {
	DB  *gorm.DB
	Log *ModLog
}

func NewRoleService(db *gorm.DB, modlog *ModLog) *RoleService {
	return &RoleService{DB: db, Log: modlog}
}

// NormalizeRoleName slugs free-form role input ("VIP Plus" → "vip-plus") so
// the same role always compares equal regardless of how staff typed it.
func NormalizeRoleName(name string) string {
	return slug.Make(name)
}

// Active returns the player's currently active roles in insertion order.
func (s *RoleService) Active(playerUUID string) ([]models.RoleGrant, error) {
	p, err := fetchPlayer(s.DB, playerUUID)
	if err != nil {
		return nil, err
	}
	return p.ActiveRoles(time.Now()), nil
}

// Grant grants roleName to the player, reusing an expired row when one
// exists. Returns the resulting grant.
func (s *RoleService) Grant(playerUUID, roleName, staffID string, opts GrantOptions) (models.RoleGrant, error) {
	name := NormalizeRoleName(roleName)
	var granted models.RoleGrant
	_, err := withPlayer(s.DB, playerUUID, func(p *models.Player, now time.Time) error {
		g, err := applyGrant(p, name, opts, now)
		if err != nil {
			return err
		}
		granted = g
		return nil
	})
	if err != nil {
		return models.RoleGrant{}, err
	}

	metrics.RoleGrants.Inc()
	s.Log.Record(ModEvent{
		LogType:    models.LogTypeRoleGrant,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Role:       name,
	})
	return granted, nil
}

// Remove soft-expires an active role by setting its expiry to now. The row
// stays in place as audit trail. Removing a role that is not active is a
// conflict — callers that need to know whether their action had effect get
// told when it did not.
func (s *RoleService) Remove(playerUUID, roleName, staffID string) error {
	name := NormalizeRoleName(roleName)
	if _, err := withPlayer(s.DB, playerUUID, func(p *models.Player, now time.Time) error {
		return applyRemove(p, name, now)
	}); err != nil {
		return err
	}

	metrics.RoleRemovals.Inc()
	s.Log.Record(ModEvent{
		LogType:    models.LogTypeRoleRemove,
		StaffID:    staffID,
		TargetUUID: playerUUID,
		Role:       name,
	})
	return nil
}

// Reconcile applies a complete desired role set in one pass: grants every
// desired role not currently active, removes every active role not desired.
// Returns the names added and removed. Emits a single log entry for the
// whole edit.
func (s *RoleService) Reconcile(playerUUID string, desired []string, defaults GrantOptions, staffID string) (added, removed []string, err error) {
	if _, err = withPlayer(s.DB, playerUUID, func(p *models.Player, now time.Time) error {
		added, removed = applyReconcile(p, desired, defaults, now)
		return nil
	}); err != nil {
		return nil, nil, err
	}

	metrics.RoleGrants.Add(float64(len(added)))
	metrics.RoleRemovals.Add(float64(len(removed)))
	if len(added)+len(removed) > 0 {
		s.Log.Record(ModEvent{
			LogType:      models.LogTypeRoleEdit,
			StaffID:      staffID,
			TargetUUID:   playerUUID,
			RolesAdded:   added,
			RolesRemoved: removed,
		})
	}
	return added, removed, nil
}

// applyGrant is the in-memory grant mutation. Conflict when the role is
// already active; an expired row with the same name is reused instead of
// growing history for frequently re-granted roles; otherwise a new row is
// appended. name must already be normalized.
func applyGrant(p *models.Player, name string, opts GrantOptions, now time.Time) (models.RoleGrant, error) {
	if name == "" {
		return models.RoleGrant{}, errValidation("role name must not be empty")
	}
	if p.ActiveRole(name, now) >= 0 {
		return models.RoleGrant{}, errConflict(fmt.Sprintf("role %q is already active", name))
	}

	if i := p.RoleIndex(name); i >= 0 {
		g := &p.Roles[i]
		g.AddedAt = now
		g.ExpiresAt = opts.ExpiresAt
		g.Reason = opts.Reason
		g.ManuallyAdded = opts.ManuallyAdded
		return *g, nil
	}

	p.Roles = append(p.Roles, models.RoleGrant{
		Name:          name,
		AddedAt:       now,
		ExpiresAt:     opts.ExpiresAt,
		Reason:        opts.Reason,
		ManuallyAdded: opts.ManuallyAdded,
	})
	return p.Roles[len(p.Roles)-1], nil
}

// applyRemove is the in-memory removal mutation: soft expiry at now.
func applyRemove(p *models.Player, name string, now time.Time) error {
	i := p.ActiveRole(name, now)
	if i < 0 {
		return errConflict(fmt.Sprintf("role %q is not active", name))
	}
	expires := now
	p.Roles[i].ExpiresAt = &expires
	return nil
}

// applyReconcile computes the symmetric difference between the desired set
// and the currently active set exactly once, then applies it.
func applyReconcile(p *models.Player, desired []string, defaults GrantOptions, now time.Time) (added, removed []string) {
	added = []string{}
	removed = []string{}

	want := make(map[string]bool, len(desired))
	var wantOrder []string
	for _, raw := range desired {
		name := NormalizeRoleName(raw)
		if name == "" || want[name] {
			continue
		}
		want[name] = true
		wantOrder = append(wantOrder, name)
	}

	// Snapshot the active set before mutating anything.
	have := make(map[string]bool)
	var haveOrder []string
	for _, g := range p.ActiveRoles(now) {
		if !have[g.Name] {
			have[g.Name] = true
			haveOrder = append(haveOrder, g.Name)
		}
	}

	for _, name := range haveOrder {
		if !want[name] {
			if err := applyRemove(p, name, now); err == nil {
				removed = append(removed, name)
			}
		}
	}
	for _, name := range wantOrder {
		if !have[name] {
			if _, err := applyGrant(p, name, defaults, now); err == nil {
				added = append(added, name)
			}
		}
	}
	return added, removed
}
