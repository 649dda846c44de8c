package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvStore(t *testing.T) {
	s := EnvStore{Prefix: "ASSETDASH_TEST_"}
	t.Setenv("ASSETDASH_TEST_PROD_DB", "s3cret")

	v, err := s.Get("prod-db")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), v)

	v, err = s.Get("other-db")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEnvStoreRefusesWrites(t *testing.T) {
	s := EnvStore{Prefix: "ASSETDASH_TEST_"}
	t.Setenv("ASSETDASH_TEST_PROD_DB", "")

	err := s.Set("prod-db", []byte("s3cret"))
	require.ErrorIs(t, err, ErrNotPersistent)
	assert.Contains(t, err.Error(), "ASSETDASH_TEST_PROD_DB")

	// A refused write leaves the process environment alone.
	v, err := s.Get("prod-db")
	require.NoError(t, err)
	assert.Equal(t, []byte(""), v)

	assert.ErrorIs(t, s.Delete("prod-db"), ErrNotPersistent)
}

func TestEnvStoreName(t *testing.T) {
	assert.Equal(t, "P_EXPORT_PG_MAIN", EnvStore{Prefix: "P_"}.name("export.pg-main"))
}

func TestDefaultWithoutKeychainRefusesWrites(t *testing.T) {
	if keychainAvailable() {
		t.Skip("keychain available")
	}
	t.Setenv("ASSETDASH_SECRET_DB_PASS", "")

	err := Default().Set("db-pass", []byte("hunter2"))
	require.ErrorIs(t, err, ErrNotPersistent)
	assert.Contains(t, err.Error(), "ASSETDASH_SECRET_DB_PASS")
}
