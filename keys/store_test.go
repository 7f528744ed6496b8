package keys

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ol-s-cloud/circle-core-sub001/errs"
)

func sampleKeyStoreFile() *KeyStoreFile {
	return &KeyStoreFile{
		ActiveKeyID: "k1",
		Keys: map[string]*KeyRecord{
			"k1": {Key: "d2lyZWQ=", Type: "data", CreatedAt: time.Now().UTC(), UseCount: 0, Rotated: false},
		},
	}
}

func TestKeyStoreLoadMissingFileReturnsErrNotFound(t *testing.T) {
	store := NewKeyStore(filepath.Join(t.TempDir(), "missing.json"))
	_, err := store.Load()
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestKeyStoreSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	store := NewKeyStore(path)

	original := sampleKeyStoreFile()
	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, original.ActiveKeyID, loaded.ActiveKeyID)
	require.Len(t, loaded.Keys, 1)
	require.Equal(t, original.Keys["k1"].Key, loaded.Keys["k1"].Key)
}

func TestKeyStoreLoadRejectsMissingActiveKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	store := NewKeyStore(path)

	file := &KeyStoreFile{
		ActiveKeyID: "does-not-exist",
		Keys: map[string]*KeyRecord{
			"k1": {Key: "d2lyZWQ=", CreatedAt: time.Now().UTC()},
		},
	}
	require.NoError(t, store.Save(file))

	_, err := store.Load()
	require.Error(t, err)
}

func TestKeyStoreLoadRejectsMultipleNonRotatedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	store := NewKeyStore(path)

	file := &KeyStoreFile{
		ActiveKeyID: "k1",
		Keys: map[string]*KeyRecord{
			"k1": {Key: "d2lyZWQ=", CreatedAt: time.Now().UTC(), Rotated: false},
			"k2": {Key: "d2lyZWQy", CreatedAt: time.Now().UTC(), Rotated: false},
		},
	}
	require.NoError(t, store.Save(file))

	_, err := store.Load()
	require.Error(t, err)
}

func TestKeyStoreSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewKeyStore(filepath.Join(dir, "keystore.json"))
	require.NoError(t, store.Save(sampleKeyStoreFile()))

	entries, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
