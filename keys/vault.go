package keys

import (
	"errors"
	"fmt"
	"os"
	"sync"

	gocrypto "github.com/ol-s-cloud/circle-core-sub001/crypto"
	"github.com/ol-s-cloud/circle-core-sub001/errs"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
)

// MasterKeySize is the length in bytes of the persisted master key.
const MasterKeySize = 32

// masterKeyFileMode restricts the master key file to owner read/write where
// the platform honors POSIX permissions.
const masterKeyFileMode = 0o600

// MasterKeyVault owns the single long-lived key that wraps every data key
// in a KeyStore. It is created once per path and never rewritten.
type MasterKeyVault struct {
	mu   sync.Mutex
	key  []byte
	path string
}

// LoadOrCreateMasterKeyVault reads the 32-byte master key at path, or
// generates and persists one with mode 0600 if the file does not exist.
func LoadOrCreateMasterKeyVault(path string) (*MasterKeyVault, error) {
	logger := obslog.New("keys", "LoadOrCreateMasterKeyVault").WithField("path", path)
	logger.Entry("loading or creating master key")
	defer logger.Exit()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) != MasterKeySize {
			logger.Error("master key file has unexpected size")
			return nil, errs.Wrap("LoadOrCreateMasterKeyVault", path, errs.ErrIntegrity)
		}
		logger.Debug("loaded existing master key")
		return &MasterKeyVault{key: data, path: path}, nil

	case errors.Is(err, os.ErrNotExist):
		key, genErr := gocrypto.RandomBytes(MasterKeySize)
		if genErr != nil {
			return nil, errs.Wrap("LoadOrCreateMasterKeyVault", path, genErr)
		}
		if writeErr := os.WriteFile(path, key, masterKeyFileMode); writeErr != nil {
			logger.WithError(writeErr, "os.WriteFile").Error("failed to persist new master key")
			return nil, errs.Wrap("LoadOrCreateMasterKeyVault", path, fmt.Errorf("%w: %v", errs.ErrIO, writeErr))
		}
		if chmodErr := os.Chmod(path, masterKeyFileMode); chmodErr != nil {
			// Not fatal: some platforms (and some filesystems) don't support
			// POSIX permission bits. We already wrote with an explicit mode above.
			logger.WithError(chmodErr, "os.Chmod").Debug("chmod not supported on this platform")
		}
		logger.Info("created new master key")
		return &MasterKeyVault{key: key, path: path}, nil

	default:
		logger.WithError(err, "os.ReadFile").Error("failed to read master key file")
		return nil, errs.Wrap("LoadOrCreateMasterKeyVault", path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}
}

// Wrap authenticated-encrypts plaintext under the master key.
func (v *MasterKeyVault) Wrap(plaintext []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	wrapped, err := gocrypto.Seal(v.key, plaintext)
	if err != nil {
		return nil, errs.Wrap("Wrap", "", err)
	}
	return wrapped, nil
}

// Unwrap verifies and decrypts a value produced by Wrap.
func (v *MasterKeyVault) Unwrap(wrapped []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	plaintext, err := gocrypto.Open(v.key, wrapped)
	if err != nil {
		return nil, errs.Wrap("Unwrap", "", err)
	}
	return plaintext, nil
}

// Close zeroizes the in-memory master key. The vault must not be used
// afterward.
func (v *MasterKeyVault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	gocrypto.ZeroBytes(v.key)
	return nil
}
