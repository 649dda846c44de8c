package secret

import "errors"

// ErrNotPersistent is returned by stores that cannot keep a value past the
// current process.
var ErrNotPersistent = errors.New("secret store is not persistent")

// SecretStore holds sensitive values such as export database passwords,
// so they stay out of the config file.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Default returns the platform store: the macOS Keychain where the
// `security` tool exists, environment variables elsewhere.
func Default() SecretStore {
	if keychainAvailable() {
		return NewKeychainStore()
	}
	return EnvStore{Prefix: "ASSETDASH_SECRET_"}
}
