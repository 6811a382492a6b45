package models

import "time"

// TranscriptFile is a rendered transcript ready to be served.
type TranscriptFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// TranscriptShare describes a signed, expiring transcript download link.
type TranscriptShare struct {
	Format    string    `json:"format"`
	Token     string    `json:"token"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
