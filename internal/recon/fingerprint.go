package recon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"expenso/internal/domain"
)

// HashHexLength is the length of a SHA-256 hex digest.
const HashHexLength = 64

// Fingerprint computes the SHA-256 hex digest of everything readable from r.
// The digest doubles as the artifact's identity key across the batch history,
// so a cryptographic hash is required here, not a fast non-cryptographic one.
// I/O errors are surfaced unchanged.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("fingerprinting artifact: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintBytes computes the SHA-256 hex digest of b.
func FingerprintBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ValidateHash rejects malformed fingerprints before any history query.
func ValidateHash(hash string) error {
	if len(hash) != HashHexLength {
		return domain.ErrInvalidHash
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return domain.ErrInvalidHash
	}
	return nil
}
