// Package metrics exposes Prometheus counters for moderation mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoleGrants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_role_grants_total",
		Help: "Role grants applied, including gift-code grants.",
	})

	RoleRemovals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_role_removals_total",
		Help: "Roles soft-expired by staff action or reconciliation.",
	})

	GiftCodeRedemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_giftcode_redemptions_total",
		Help: "Successful gift code redemptions.",
	})

	WriteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_write_conflicts_total",
		Help: "Version-guarded writes that lost the race and were retried.",
	})

	NotifierFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_notifier_failures_total",
		Help: "Moderation log notifications that failed to deliver.",
	})

	OrphanedUsesReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_orphaned_uses_reclaimed_total",
		Help: "Gift code uses removed by the reconciliation worker.",
	})
)
