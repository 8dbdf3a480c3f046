package models

import "time"

// URL represents a shortened URL mapping and its access metadata.
type URL struct {
	// ID is the unique identifier for the mapping record.
	ID int64
	// ShortCode is the short code associated with the original URL.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// AccessCount tracks the number of times the shortened URL has been resolved.
	AccessCount int64
	// CreatedAt is the timestamp indicating when the mapping was created.
	CreatedAt time.Time
	// LastAccessedAt is the timestamp of the most recent successful resolve.
	// It starts equal to CreatedAt.
	LastAccessedAt time.Time
}

// URLAccessCount is one row of the top-accessed ranking.
type URLAccessCount struct {
	ShortCode   string
	AccessCount int64
}

// URLIdleStat describes how long a mapping has been idle.
type URLIdleStat struct {
	ShortCode   string
	AccessCount int64
	IdleFor     time.Duration
}

// URLDayCount is the number of accesses a mapping received on a given day.
type URLDayCount struct {
	ShortCode   string
	Day         time.Time
	AccessCount int64
}

// DayCount is the number of mappings registered on a given day.
type DayCount struct {
	Day   time.Time
	Count int64
}
