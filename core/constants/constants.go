package constants

import "time"

// Request handling
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
)

// Database pool defaults
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Date and time wire formats used in bot dialogue and the admin API.
const (
	DateFormat  = "2006-01-02"
	ClockFormat = "15:04"
)

// Booking policy defaults. CutoffHour locks next-day bookings and
// cancellations from this hour (operational timezone) onwards.
const (
	DefaultCutoffHour = 19
	DefaultTimezone   = "Europe/Moscow"
	DefaultWeekLimit  = 2
	DefaultSlotLimit  = 5
)

// Bulk schedule creation cap: inclusive date range must not span more days.
const MaxScheduleSpanDays = 7

// DefaultClassHours pre-fills the admin bulk-create form.
var DefaultClassHours = []string{"10:00", "12:00", "14:00", "16:00", "18:00", "20:00"}

// Redis cache keys
const (
	RedisKeyActiveGroups = "timechart:active_groups"
	RedisKeyActivePlaces = "timechart:active_places"
	CacheListTTL         = 1 * time.Minute
)

// Echo context keys
const ContextTokenData = "token_data"

// Token scopes
const ScopeTokenAdmin = "admin"
