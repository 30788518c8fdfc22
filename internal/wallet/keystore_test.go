package wallet

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "tsender-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

// nullKeystore has ring=nil; Retrieve fails unless the env override is set.
func nullKeystore() *Keystore { return &Keystore{ring: nil} }

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0xabc", "abc"},
		{"0Xabc", "abc"},
		{"abc", "abc"},
		{"  0xabc\n", "abc"},
		{"0x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseHexKey(tt.in), "input %q", tt.in)
	}
}

// ---------------------------------------------------------------------------
// Keystore (file backend)
// ---------------------------------------------------------------------------

func TestKeystoreStoreAndRetrieve(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := testKeystore(t)

	ref, err := ks.Store("alice", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "tsender.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", got)
}

func TestKeystoreDeleteThenRetrieveFails(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := testKeystore(t)
	ref, err := ks.Store("bob", "secret")
	require.NoError(t, err)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

func TestKeystoreDeleteMissingIsNoop(t *testing.T) {
	ks := testKeystore(t)
	assert.NoError(t, ks.Delete("tsender.ghost"))
}

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	t.Setenv(EnvPrivateKey, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	got, err := nullKeystore().Retrieve("tsender.any-ref")
	require.NoError(t, err)
	assert.Equal(t, "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := nullKeystore()

	_, err := ks.Retrieve("tsender.ghost")
	assert.ErrorContains(t, err, "keystore not available")
	_, err = ks.Store("x", "y")
	assert.Error(t, err)
	assert.NoError(t, ks.Delete("tsender.anything"))
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystoreStoreAndRetrieve(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("mykey", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "tsender.mykey", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", val)
}

func TestInMemoryKeystoreRetrieveNotFound(t *testing.T) {
	_, err := NewInMemoryKeystore().Retrieve("tsender.ghost")
	assert.ErrorContains(t, err, "not found")
}

func TestInMemoryKeystoreOverwrite(t *testing.T) {
	iks := NewInMemoryKeystore()
	iks.Store("k", "first")  //nolint:errcheck
	iks.Store("k", "second") //nolint:errcheck

	val, err := iks.Retrieve("tsender.k")
	require.NoError(t, err)
	assert.Equal(t, "second", val, "second store should overwrite first")
}

func TestInMemoryKeystoreDelete(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, _ := iks.Store("del", "secret")

	require.NoError(t, iks.Delete(ref))
	_, err := iks.Retrieve(ref)
	assert.Error(t, err, "key should be gone after delete")
	assert.NoError(t, iks.Delete(ref), "deleting missing key must not error")
}
