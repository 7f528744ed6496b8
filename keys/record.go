package keys

import "time"

// KeyRecord is one wrapped data-encryption key and its metadata, as
// persisted in a KeyStoreFile.
type KeyRecord struct {
	Key       string    `json:"key"` // base64(nonce||ciphertext||tag)
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UseCount  uint64    `json:"use_count"`
	Rotated   bool      `json:"rotated"`
}

// KeyStoreFile is the full durable document: which key is active, and the
// full map of known keys by id.
type KeyStoreFile struct {
	ActiveKeyID string                `json:"active_key_id"`
	Keys        map[string]*KeyRecord `json:"keys"`
}

// KeySummary is the caller-facing view of a key returned by ListKeys. It
// never carries wrapped key material.
type KeySummary struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UseCount  uint64    `json:"use_count"`
	Rotated   bool      `json:"rotated"`
	IsActive  bool      `json:"is_active"`
}
