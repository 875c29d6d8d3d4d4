package database

import (
	"fmt"

	"gorm.io/gorm"
)

// constraintStatement is one idempotent DDL statement applied after the
// schema migration. Postgres has no IF NOT EXISTS form for ADD CONSTRAINT,
// so uniqueness is enforced through unique indexes, which raise the same
// named violation on duplicate keys.
type constraintStatement struct {
	name string
	sql  string
}

var constraintStatements = []constraintStatement{
	{
		// One inventory row per seat per event seating; the conditional
		// update in apply_transition depends on this being unique.
		name: "unique_event_seat",
		sql: `CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS unique_event_seat
			ON event_seats (event_seating_id, seat_uid);`,
	},
	{
		// One live hold per seat. A second create_hold on the same seat must
		// fail at the storage layer even if two processes race past the
		// status check.
		name: "unique_seat_hold",
		sql: `CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS unique_seat_hold
			ON seat_holds (event_seating_id, seat_uid);`,
	},
	{
		// Purchase confirmations are at-most-once per idempotency token
		name: "unique_idempotency_token",
		sql: `CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS unique_idempotency_token
			ON purchase_confirmations (idempotency_token);`,
	},
	{
		// Reaper sweeps expired holds ordered by expires_at
		name: "idx_seat_holds_expires_at",
		sql: `CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_seat_holds_expires_at
			ON seat_holds (expires_at);`,
	},
	{
		// Session-scoped hold lookups (renew/release/cart)
		name: "idx_seat_holds_session",
		sql: `CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_seat_holds_session
			ON seat_holds (session_uid);`,
	},
	{
		// Map rendering scans seats per event seating in seat_uid order
		name: "idx_event_seats_listing",
		sql: `CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_event_seats_listing
			ON event_seats (event_seating_id, seat_uid);`,
	},
}

// MigrateConstraints adds the indexes and uniqueness guarantees the seat
// state machine relies on
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("applying %s: %w", stmt.name, err)
		}
	}
	return nil
}
