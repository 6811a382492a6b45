package models

import "time"

// SystemMetrics is a point-in-time view of the process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SubjectsCreated          uint64    `json:"subjects_created"`
	TranscriptsRendered      uint64    `json:"transcripts_rendered"`
	AuthRejected             uint64    `json:"auth_rejected"`
	OpenStreams              int64     `json:"open_streams"`
	Goroutines               int       `json:"goroutines"`
	UptimeSeconds            int64     `json:"uptime_seconds"`
	GeneratedAt              time.Time `json:"generated_at"`
}
