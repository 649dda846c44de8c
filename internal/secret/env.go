package secret

import (
	"fmt"
	"os"
	"strings"
)

// EnvStore reads secrets from environment variables named Prefix + key,
// upper-cased with dashes and dots turned into underscores. It is read-only:
// a process cannot change its parent's environment, so Set and Delete fail
// with ErrNotPersistent naming the variable to export instead.
type EnvStore struct {
	Prefix string
}

func (e EnvStore) name(key string) string {
	return e.Prefix + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func (e EnvStore) Set(key string, _ []byte) error {
	return fmt.Errorf("%w: export %s in the environment instead", ErrNotPersistent, e.name(key))
}

func (e EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.name(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (e EnvStore) Delete(key string) error {
	return fmt.Errorf("%w: unset %s in the environment instead", ErrNotPersistent, e.name(key))
}
