package crypto

import (
	"fmt"

	"github.com/ol-s-cloud/circle-core-sub001/errs"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
	"golang.org/x/crypto/chacha20poly1305"
)

// Seal authenticated-encrypts plaintext under key using a fresh random
// 12-byte nonce, and returns nonce||ciphertext||tag as a single slice — the
// wrapped form persisted (base64-encoded) in a KeyRecord.
func Seal(key, plaintext []byte) ([]byte, error) {
	logger := obslog.New("crypto", "Seal").WithFields(obslog.SecretPreview("plaintext", plaintext))
	logger.Entry("sealing plaintext")
	defer logger.Exit()

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		logger.WithError(err, "chacha20poly1305.New").Error("invalid key")
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}

	nonce, err := RandomBytes(chacha20poly1305.NonceSize)
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	wrapped := make([]byte, 0, len(nonce)+len(sealed))
	wrapped = append(wrapped, nonce...)
	wrapped = append(wrapped, sealed...)

	logger.WithField("wrapped_size", len(wrapped)).Debug("plaintext sealed")
	return wrapped, nil
}

// Open verifies and decrypts a nonce||ciphertext||tag value produced by
// Seal. It returns errs.ErrIntegrity (wrapped) if the tag doesn't verify or
// the key is wrong.
func Open(key, wrapped []byte) ([]byte, error) {
	logger := obslog.New("crypto", "Open").WithField("wrapped_size", len(wrapped))
	logger.Entry("opening sealed value")
	defer logger.Exit()

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		logger.WithError(err, "chacha20poly1305.New").Error("invalid key")
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}

	if len(wrapped) < chacha20poly1305.NonceSize+chacha20poly1305.Overhead {
		logger.Error("wrapped value shorter than nonce+tag")
		return nil, ErrCiphertextTooShort
	}

	nonce := wrapped[:chacha20poly1305.NonceSize]
	ciphertext := wrapped[chacha20poly1305.NonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		logger.WithError(err, "aead.Open").Warn("authentication failed, ciphertext rejected")
		return nil, errs.Wrap("Open", "", errs.ErrIntegrity)
	}

	logger.WithFields(obslog.SecretPreview("plaintext", plaintext)).Debug("value opened")
	return plaintext, nil
}
