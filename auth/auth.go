// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidVoterID  = errors.New("invalid voter id")
)

// NewID returns a random UUID string for a database record
func NewID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based key for an admin identity
// This is deterministic and verifiable
func GenerateAdminKey(adminID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(adminID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided key belongs to the admin
func ValidateAdminKey(adminID, adminKey, salt string) error {
	if adminID == "" || adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(adminID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// NormalizeVoterID checks that a voter reference is a UUID and returns it
// in canonical lowercase form, so "ABC..." and "abc..." count as one voter
func NormalizeVoterID(voterID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(voterID))
	if err != nil || id == uuid.Nil {
		return "", ErrInvalidVoterID
	}
	return id.String(), nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
