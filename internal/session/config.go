package session

import (
	"fmt"
	"strings"
)

// Mode selects the search strategy.
type Mode string

const (
	ModeVector Mode = "vector"
	ModeText   Mode = "text"
)

// ParseMode accepts "vector" or "text", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeVector:
		return ModeVector, nil
	case ModeText:
		return ModeText, nil
	}
	return "", fmt.Errorf("unknown search mode %q", s)
}

const (
	MinMaxResults = 10
	MaxMaxResults = 1000
)

// Config holds the per-session search parameters.
type Config struct {
	SearchMode          Mode
	SimilarityThreshold float64
	MaxResults          int
	TimeFilter          string
	BucketFilter        string
	Locale              string
}

// DefaultConfig returns the settings of a fresh session.
func DefaultConfig() Config {
	return Config{
		SearchMode:          ModeVector,
		SimilarityThreshold: 0.7,
		MaxResults:          500,
		TimeFilter:          "all_time",
		BucketFilter:        "all",
		Locale:              "en",
	}
}

// ConfigUpdate carries the fields to change; nil fields are left alone.
type ConfigUpdate struct {
	SearchMode          *Mode
	SimilarityThreshold *float64
	MaxResults          *int
	TimeFilter          *string
	BucketFilter        *string
	Locale              *string
}

// Apply merges u into c, clamping numeric fields into range. An invalid
// mode rejects the whole update.
func (c Config) Apply(u ConfigUpdate) (Config, error) {
	next := c
	if u.SearchMode != nil {
		m, err := ParseMode(string(*u.SearchMode))
		if err != nil {
			return c, err
		}
		next.SearchMode = m
	}
	if u.SimilarityThreshold != nil {
		next.SimilarityThreshold = clampFloat(*u.SimilarityThreshold, 0, 1)
	}
	if u.MaxResults != nil {
		next.MaxResults = clampInt(*u.MaxResults, MinMaxResults, MaxMaxResults)
	}
	if u.TimeFilter != nil {
		next.TimeFilter = *u.TimeFilter
	}
	if u.BucketFilter != nil {
		next.BucketFilter = *u.BucketFilter
	}
	if u.Locale != nil {
		next.Locale = *u.Locale
	}
	return next, nil
}

// Normalized returns c with out-of-range values clamped and blanks
// replaced by defaults.
func (c Config) Normalized() Config {
	d := DefaultConfig()
	if m, err := ParseMode(string(c.SearchMode)); err == nil {
		c.SearchMode = m
	} else {
		c.SearchMode = d.SearchMode
	}
	c.SimilarityThreshold = clampFloat(c.SimilarityThreshold, 0, 1)
	c.MaxResults = clampInt(c.MaxResults, MinMaxResults, MaxMaxResults)
	if c.TimeFilter == "" {
		c.TimeFilter = d.TimeFilter
	}
	if c.BucketFilter == "" {
		c.BucketFilter = d.BucketFilter
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	return c
}

func clampFloat(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
