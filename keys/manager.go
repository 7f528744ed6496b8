package keys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	gocrypto "github.com/ol-s-cloud/circle-core-sub001/crypto"
	"github.com/ol-s-cloud/circle-core-sub001/errs"
	"github.com/ol-s-cloud/circle-core-sub001/internal/obslog"
	"github.com/google/uuid"
)

// dataKeySize is the length in bytes of a minted data-encryption key.
const dataKeySize = 32

// KeyManager owns the keystore file and master key vault behind one
// exclusive lock. Mutating operations (GenerateKey, GetKey, RotateKey,
// DeleteKey) and persistence happen under that lock; read-only operations
// observe a consistent snapshot.
type KeyManager struct {
	mu       sync.Mutex
	vault    *MasterKeyVault
	store    *KeyStore
	state    *KeyStoreFile
	rotation RotationConfig
	now      TimeProvider
}

// NewKeyManager loads or creates the master key at masterKeyPath, then
// loads the keystore at keyStorePath — bootstrapping a single active data
// key if the keystore file is absent or empty.
func NewKeyManager(keyStorePath, masterKeyPath string, rotation RotationConfig) (*KeyManager, error) {
	logger := obslog.New("keys", "NewKeyManager").WithField("keystore", keyStorePath)
	logger.Entry("constructing key manager")
	defer logger.Exit()

	vault, err := LoadOrCreateMasterKeyVault(masterKeyPath)
	if err != nil {
		return nil, err
	}

	store := NewKeyStore(keyStorePath)
	state, err := store.Load()
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}

		logger.Info("keystore absent, bootstrapping initial active key")
		state, err = bootstrapKeyStore(vault)
		if err != nil {
			return nil, err
		}
		if err := store.Save(state); err != nil {
			return nil, err
		}
	}

	return &KeyManager{
		vault:    vault,
		store:    store,
		state:    state,
		rotation: rotation,
		now:      GetDefaultTimeProvider(),
	}, nil
}

func bootstrapKeyStore(vault *MasterKeyVault) (*KeyStoreFile, error) {
	rec, id, err := mintKeyRecord(vault, GetDefaultTimeProvider())
	if err != nil {
		return nil, err
	}
	return &KeyStoreFile{
		ActiveKeyID: id,
		Keys:        map[string]*KeyRecord{id: rec},
	}, nil
}

func mintKeyRecord(vault *MasterKeyVault, now TimeProvider) (*KeyRecord, string, error) {
	raw, err := gocrypto.RandomBytes(dataKeySize)
	if err != nil {
		return nil, "", err
	}
	defer gocrypto.ZeroBytes(raw)

	wrapped, err := vault.Wrap(raw)
	if err != nil {
		return nil, "", err
	}

	id := uuid.New().String()
	rec := &KeyRecord{
		Key:       base64.StdEncoding.EncodeToString(wrapped),
		Type:      "data",
		CreatedAt: now.Now().UTC(),
		UseCount:  0,
		Rotated:   false,
	}
	return rec, id, nil
}

// GenerateKey mints a new data key, wraps it under the master key, and
// persists it. It does not change the active key.
func (m *KeyManager) GenerateKey() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := obslog.New("keys", "GenerateKey")
	logger.Entry("generating new data key")
	defer logger.Exit()

	rec, id, err := mintKeyRecord(m.vault, m.now)
	if err != nil {
		return "", errs.Wrap("GenerateKey", "", err)
	}

	m.state.Keys[id] = rec
	if err := m.store.Save(m.state); err != nil {
		delete(m.state.Keys, id)
		return "", err
	}

	logger.WithField("key_id", id).Info("data key generated")
	return id, nil
}

// GetKey unwraps and returns the raw bytes of the key identified by id,
// incrementing its use count. An empty id resolves to the active key.
func (m *KeyManager) GetKey(id string) (string, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := obslog.New("keys", "GetKey").WithField("key_id", id)
	logger.Entry("fetching data key")
	defer logger.Exit()

	resolvedID := id
	if resolvedID == "" {
		resolvedID = m.state.ActiveKeyID
	}

	rec, ok := m.state.Keys[resolvedID]
	if !ok {
		return "", nil, errs.Wrap("GetKey", resolvedID, errs.ErrNotFound)
	}

	wrapped, err := base64.StdEncoding.DecodeString(rec.Key)
	if err != nil {
		return "", nil, errs.Wrap("GetKey", resolvedID, fmt.Errorf("%w: %v", errs.ErrIntegrity, err))
	}

	raw, err := m.vault.Unwrap(wrapped)
	if err != nil {
		logger.WithError(err, "vault.Unwrap").Warn("key unwrap failed")
		return "", nil, errs.Wrap("GetKey", resolvedID, err)
	}

	rec.UseCount++
	if err := m.store.Save(m.state); err != nil {
		rec.UseCount--
		gocrypto.ZeroBytes(raw)
		return "", nil, err
	}

	logger.Debug("data key fetched")
	return resolvedID, raw, nil
}

// ListKeys returns a caller-facing summary of every stored key. Wrapped key
// material is never included.
func (m *KeyManager) ListKeys() []KeySummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summaries := make([]KeySummary, 0, len(m.state.Keys))
	for id, rec := range m.state.Keys {
		summaries = append(summaries, KeySummary{
			ID:        id,
			Type:      rec.Type,
			CreatedAt: rec.CreatedAt,
			UseCount:  rec.UseCount,
			Rotated:   rec.Rotated,
			IsActive:  id == m.state.ActiveKeyID,
		})
	}
	return summaries
}

// RotateKey mints a new active key and marks the previous one rotated.
// Existing ciphertext is never re-encrypted; rotation is prospective only.
func (m *KeyManager) RotateKey() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := obslog.New("keys", "RotateKey")
	logger.Entry("rotating active key")
	defer logger.Exit()

	oldID := m.state.ActiveKeyID
	rec, newID, err := mintKeyRecord(m.vault, m.now)
	if err != nil {
		return "", errs.Wrap("RotateKey", "", err)
	}

	m.state.Keys[newID] = rec
	if oldRec, ok := m.state.Keys[oldID]; ok {
		oldRec.Rotated = true
	}
	m.state.ActiveKeyID = newID

	if err := m.store.Save(m.state); err != nil {
		delete(m.state.Keys, newID)
		if oldRec, ok := m.state.Keys[oldID]; ok {
			oldRec.Rotated = false
		}
		m.state.ActiveKeyID = oldID
		return "", err
	}

	logger.WithField("old_key_id", oldID).WithField("new_key_id", newID).Info("active key rotated")
	return newID, nil
}

// DeleteKey removes a non-active key. Deleting the active key is refused
// by returning false with no change; deleting an unknown id is ErrNotFound.
func (m *KeyManager) DeleteKey(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := obslog.New("keys", "DeleteKey").WithField("key_id", id)
	logger.Entry("deleting key")
	defer logger.Exit()

	if id == m.state.ActiveKeyID {
		logger.Warn("refusing to delete active key")
		return false, nil
	}

	if _, ok := m.state.Keys[id]; !ok {
		return false, errs.Wrap("DeleteKey", id, errs.ErrNotFound)
	}

	delete(m.state.Keys, id)
	if err := m.store.Save(m.state); err != nil {
		return false, err
	}

	logger.Info("key deleted")
	return true, nil
}

// CheckRotationNeeded evaluates the active key against the configured
// rotation policy.
func (m *KeyManager) CheckRotationNeeded() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, ok := m.state.Keys[m.state.ActiveKeyID]
	if !ok {
		return false, errs.Wrap("CheckRotationNeeded", m.state.ActiveKeyID, errs.ErrIntegrity)
	}

	switch m.rotation.Policy {
	case RotationNone, "":
		return false, nil
	case RotationTimeBased:
		return m.ageExceeded(active), nil
	case RotationUsageBased:
		return m.usageExceeded(active), nil
	case RotationCombined:
		return m.ageExceeded(active) || m.usageExceeded(active), nil
	default:
		return false, errs.Wrap("CheckRotationNeeded", "", errs.ErrConfiguration)
	}
}

func (m *KeyManager) ageExceeded(rec *KeyRecord) bool {
	if m.rotation.MaxAgeDays == nil {
		return false
	}
	maxAge := time.Duration(*m.rotation.MaxAgeDays) * 24 * time.Hour
	return m.now.Since(rec.CreatedAt) >= maxAge
}

func (m *KeyManager) usageExceeded(rec *KeyRecord) bool {
	if m.rotation.MaxUses == nil {
		return false
	}
	return rec.UseCount >= *m.rotation.MaxUses
}

// SetTimeProvider overrides the clock used for rotation-age checks. Tests
// use this to simulate key age without sleeping.
func (m *KeyManager) SetTimeProvider(tp TimeProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tp == nil {
		tp = GetDefaultTimeProvider()
	}
	m.now = tp
}
