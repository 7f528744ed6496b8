// Package recovery generates, hashes, and verifies single-use recovery
// codes used as a TOTP fallback.
package recovery

import (
	"encoding/hex"
	"fmt"
	"strings"

	gocrypto "github.com/ol-s-cloud/circle-core-sub001/crypto"
	"github.com/ol-s-cloud/circle-core-sub001/errs"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
)

// SaltSize is the length in bytes of each code's KDF salt.
const SaltSize = 16

// codeHalfSize is the number of random bytes rendered as hex for each half
// of an XXXX-XXXX code.
const codeHalfSize = 2

// HashedCode is the persisted, non-reversible form of a recovery code.
type HashedCode struct {
	Salt string `json:"salt"` // base64
	Hash string `json:"hash"` // base64
	Used bool   `json:"used"`
}

// Generate returns n distinct plaintext codes of the form "xxxx-xxxx",
// character class [a-z0-9]. Collisions within the batch are regenerated.
func Generate(n int) ([]string, error) {
	logger := obslog.New("recovery", "Generate").WithField("count", n)
	logger.Entry("generating recovery codes")
	defer logger.Exit()

	if n <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", errs.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, n)
	codes := make([]string, 0, n)

	for len(codes) < n {
		code, err := generateOne()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	logger.Debug("recovery codes generated")
	return codes, nil
}

func generateOne() (string, error) {
	raw, err := gocrypto.RandomBytes(codeHalfSize * 2)
	if err != nil {
		return "", err
	}
	first := hex.EncodeToString(raw[:codeHalfSize])
	second := hex.EncodeToString(raw[codeHalfSize:])
	return first + "-" + second, nil
}

// HashAll derives a HashedCode for each plaintext code, preserving order.
func HashAll(codes []string) ([]HashedCode, error) {
	logger := obslog.New("recovery", "HashAll").WithField("count", len(codes))
	logger.Entry("hashing recovery codes")
	defer logger.Exit()

	hashed := make([]HashedCode, 0, len(codes))
	for _, code := range codes {
		salt, err := gocrypto.RandomBytes(SaltSize)
		if err != nil {
			return nil, err
		}
		digest := gocrypto.DeriveKey([]byte(normalizeCode(code)), salt)
		hashed = append(hashed, HashedCode{
			Salt: gocrypto.EncodeBase64(salt),
			Hash: gocrypto.EncodeBase64(digest),
			Used: false,
		})
	}

	logger.Debug("recovery codes hashed")
	return hashed, nil
}

// Verify checks submitted against hashedList in order, matching only
// unused entries by recomputing the KDF with each entry's stored salt. On
// the first match it returns (true, a copy of hashedList with that entry
// marked used). Verify never mutates hashedList; on no match it returns
// (false, hashedList) unchanged.
func Verify(submitted string, hashedList []HashedCode) (bool, []HashedCode) {
	logger := obslog.New("recovery", "Verify")
	logger.Entry("verifying recovery code")
	defer logger.Exit()

	normalized := normalizeCode(submitted)
	target := []byte(normalized)

	for i, entry := range hashedList {
		if entry.Used {
			continue
		}

		salt, err := gocrypto.DecodeBase64(entry.Salt)
		if err != nil {
			continue
		}
		storedHash, err := gocrypto.DecodeBase64(entry.Hash)
		if err != nil {
			continue
		}

		candidate := gocrypto.DeriveKey(target, salt)
		if gocrypto.ConstantTimeEqual(candidate, storedHash) {
			updated := make([]HashedCode, len(hashedList))
			copy(updated, hashedList)
			updated[i].Used = true
			logger.Info("recovery code consumed")
			return true, updated
		}
	}

	return false, hashedList
}

// normalizeCode strips whitespace and lowercases a submitted recovery code
// before it's used as KDF input.
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
