package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes where a job description came from.
type Metadata struct {
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
	Site      string `json:"site,omitempty"`
	Rendered  bool   `json:"rendered,omitempty"` // Text came from a headless browser
	Truncated bool   `json:"truncated,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
	Hash      string `json:"hash"`      // SHA256 of the cleaned text
}

func newMetadata(text, url string) *Metadata {
	sum := sha256.Sum256([]byte(text))
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      hex.EncodeToString(sum[:]),
	}
}
