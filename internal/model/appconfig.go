package model

import "time"

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Checker service
	ServerURL      string `json:"server_url"`
	DefaultShape   string `json:"default_shape"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// Session defaults
	DefaultGrid       Dimensions `json:"default_grid"`
	MessageDurationMS int        `json:"message_duration_ms"`
	HistoryDepth      int        `json:"history_depth"`

	// Application preferences
	JournalPath  string   `json:"journal_path"` // empty = journal disabled
	RecentShapes []string `json:"recent_shapes"`
}

// MaxRecentShapes bounds AppConfig.RecentShapes.
const MaxRecentShapes = 10

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		ServerURL:         "http://localhost:5000",
		DefaultShape:      "cube",
		TimeoutSeconds:    10,
		DefaultGrid:       Dimensions{Width: 3, Height: 3, Depth: 3},
		MessageDurationMS: int(DefaultMessageDuration / time.Millisecond),
		HistoryDepth:      50,
		RecentShapes:      []string{},
	}
}

// Timeout returns the HTTP timeout, falling back to the default when unset.
func (c AppConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MessageDuration returns how long transient messages stay visible.
func (c AppConfig) MessageDuration() time.Duration {
	if c.MessageDurationMS <= 0 {
		return DefaultMessageDuration
	}
	return time.Duration(c.MessageDurationMS) * time.Millisecond
}

// AddRecentShape moves id to the front of RecentShapes, dropping duplicates
// and trimming the list to MaxRecentShapes.
func (c *AppConfig) AddRecentShape(id string) {
	if id == "" {
		return
	}
	out := []string{id}
	for _, s := range c.RecentShapes {
		if s != id {
			out = append(out, s)
		}
	}
	if len(out) > MaxRecentShapes {
		out = out[:MaxRecentShapes]
	}
	c.RecentShapes = out
}
