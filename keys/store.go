package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ol-s-cloud/circle-core-sub001/errs"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
)

// keyStoreFileMode restricts the keystore document to owner read/write.
const keyStoreFileMode = 0o600

// KeyStore is the durable JSON document backing a KeyManager. Reads
// deserialize the whole document; writes are atomic (temp file + rename)
// so a reader never observes a torn write.
type KeyStore struct {
	path string
}

// NewKeyStore returns a KeyStore rooted at path. It does not touch the
// filesystem; call Load to read an existing document.
func NewKeyStore(path string) *KeyStore {
	return &KeyStore{path: path}
}

// Load reads and parses the keystore document. It returns an error wrapping
// errs.ErrNotFound if the file does not exist or is empty — callers
// (KeyManager) treat that as a signal to bootstrap a fresh store, not as a
// failure.
func (s *KeyStore) Load() (*KeyStoreFile, error) {
	logger := obslog.New("keys", "Load").WithField("path", s.path)
	logger.Entry("loading keystore document")
	defer logger.Exit()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap("Load", s.path, errs.ErrNotFound)
		}
		logger.WithError(err, "os.ReadFile").Error("failed to read keystore file")
		return nil, errs.Wrap("Load", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}
	if len(data) == 0 {
		return nil, errs.Wrap("Load", s.path, errs.ErrNotFound)
	}

	var file KeyStoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.WithError(err, "json.Unmarshal").Error("keystore document is not valid JSON")
		return nil, errs.Wrap("Load", s.path, fmt.Errorf("%w: %v", errs.ErrIntegrity, err))
	}

	if err := validateKeyStoreFile(&file); err != nil {
		logger.WithError(err, "validateKeyStoreFile").Error("keystore document violates invariants")
		return nil, errs.Wrap("Load", s.path, err)
	}

	logger.WithField("key_count", len(file.Keys)).Debug("keystore document loaded")
	return &file, nil
}

// Save serializes file and writes it atomically: a sibling temp file is
// written and flushed, then renamed over the target path.
func (s *KeyStore) Save(file *KeyStoreFile) error {
	logger := obslog.New("keys", "Save").WithField("path", s.path)
	logger.Entry("saving keystore document")
	defer logger.Exit()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errs.Wrap("Save", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		logger.WithError(err, "os.CreateTemp").Error("failed to create temp file")
		return errs.Wrap("Save", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		logger.WithError(err, "tmp.Write").Error("failed to write temp file")
		return errs.Wrap("Save", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.Wrap("Save", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap("Save", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}
	if err := os.Chmod(tmpPath, keyStoreFileMode); err != nil {
		logger.WithError(err, "os.Chmod").Debug("chmod not supported on this platform")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		logger.WithError(err, "os.Rename").Error("failed to rename temp file into place")
		return errs.Wrap("Save", s.path, fmt.Errorf("%w: %v", errs.ErrIO, err))
	}

	logger.Debug("keystore document saved")
	return nil
}

// validateKeyStoreFile enforces the invariants a loaded document must
// satisfy: the active key exists, is not itself rotated, and is the only
// non-rotated key.
func validateKeyStoreFile(file *KeyStoreFile) error {
	if len(file.Keys) == 0 {
		return fmt.Errorf("%w: keystore has no keys", errs.ErrIntegrity)
	}

	active, ok := file.Keys[file.ActiveKeyID]
	if !ok {
		return fmt.Errorf("%w: active_key_id %q not present in keys", errs.ErrIntegrity, file.ActiveKeyID)
	}
	if active.Rotated {
		return fmt.Errorf("%w: active key %q is marked rotated", errs.ErrIntegrity, file.ActiveKeyID)
	}

	for id, rec := range file.Keys {
		if id == file.ActiveKeyID {
			continue
		}
		if !rec.Rotated {
			return fmt.Errorf("%w: key %q is non-active and non-rotated", errs.ErrIntegrity, id)
		}
	}

	return nil
}
