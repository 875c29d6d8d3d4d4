package constants

import (
	"fmt"
	"time"
)

// Redis key and TTL catalog.
// Pattern: seatcore:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static data (long TTL: frozen after publish)
const (
	TTL_GEOMETRY_SNAPSHOT = 4 * time.Hour // layout geometry is immutable post-publish
	TTL_LAYOUT_DETAIL     = 1 * time.Hour
)

// Read-mostly pricing data (short TTL, invalidated on admin write)
const (
	TTL_PRICE_TIERS   = 2 * time.Minute
	TTL_PRICING_RULES = 2 * time.Minute
	TTL_CUSTOM_PRICE  = 30 * time.Second // custom-adapter last resolved value
)

// Highly dynamic (micro TTL: real-time sensitive)
const (
	TTL_SEAT_MAP = 15 * time.Second // seat-map page cache for burst reads
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "seatcore"
)

// ================== CATALOG MODULE ==================

const (
	CACHE_KEY_LAYOUT_DETAIL = CACHE_PREFIX + ":catalog:layout:uuid:"   // + layout-id
	CACHE_KEY_GEOMETRY      = CACHE_PREFIX + ":catalog:geometry:uuid:" // + event-seating-id
)

// ================== PRICING MODULE ==================

const (
	CACHE_KEY_PRICE_TIER    = CACHE_PREFIX + ":pricing:tier:uuid:"  // + tier-id
	CACHE_KEY_PRICING_RULES = CACHE_PREFIX + ":pricing:rules:uuid:" // + event-seating-id
	CACHE_KEY_CUSTOM_PRICE  = CACHE_PREFIX + ":pricing:custom:"     // + event-seating-id:seat-uid
	KEY_VELOCITY_BUCKET     = CACHE_PREFIX + ":pricing:velocity:"   // + scope-key:unix-minute
)

// ================== INVENTORY MODULE ==================

const (
	CACHE_KEY_SEAT_MAP = CACHE_PREFIX + ":inventory:seat_map:uuid:" // + event-seating-id:cursor:N
)

// ================== HOLDS MODULE ==================

const (
	// Fast-path mirror of seat_holds rows; Postgres stays the source of truth.
	KEY_SEAT_HOLD_MIRROR = CACHE_PREFIX + ":holds:seat:" // + event-seating-id:seat-uid
)

// ================== KEY BUILDERS ==================

// BuildGeometryKey builds the cache key for a frozen geometry snapshot
func BuildGeometryKey(eventSeatingID string) string {
	return CACHE_KEY_GEOMETRY + eventSeatingID
}

// BuildPricingRulesKey builds the cache key for the active rules of an event seating
func BuildPricingRulesKey(eventSeatingID string) string {
	return CACHE_KEY_PRICING_RULES + eventSeatingID
}

// BuildCustomPriceKey builds the cache key for a custom-adapter resolved price
func BuildCustomPriceKey(eventSeatingID, seatUID string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_CUSTOM_PRICE, eventSeatingID, seatUID)
}

// BuildSeatHoldMirrorKey builds the fast-path hold mirror key for a seat
func BuildSeatHoldMirrorKey(eventSeatingID, seatUID string) string {
	return fmt.Sprintf("%s%s:%s", KEY_SEAT_HOLD_MIRROR, eventSeatingID, seatUID)
}

// BuildSeatMapKey builds the seat-map page cache key
func BuildSeatMapKey(eventSeatingID, cursor string, limit int) string {
	return fmt.Sprintf("%s%s:cursor:%s:limit:%d", CACHE_KEY_SEAT_MAP, eventSeatingID, cursor, limit)
}

// BuildVelocityBucketKey builds the rolling sale-counter bucket key for a
// pricing scope at a given minute
func BuildVelocityBucketKey(scopeKey string, unixMinute int64) string {
	return fmt.Sprintf("%s%s:%d", KEY_VELOCITY_BUCKET, scopeKey, unixMinute)
}
