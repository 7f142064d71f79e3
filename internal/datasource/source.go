package datasource

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	defaultDir = ".damselfly"
	defaultDB  = ".damselfly/damselfly.db"
)

// Discover finds the trace database path.
// Priority: DAMSELFLY_DB env var > .damselfly/damselfly.db in CWD > walk up parents.
func Discover() (string, error) {
	if env := os.Getenv("DAMSELFLY_DB"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", errors.Wrapf(os.ErrNotExist, "DAMSELFLY_DB=%q", env)
	}

	// Check CWD first.
	if _, err := os.Stat(defaultDB); err == nil {
		abs, err := filepath.Abs(defaultDB)
		if err != nil {
			return "", errors.Wrapf(err, "resolve absolute path for %s", defaultDB)
		}
		return abs, nil
	}

	// Walk up parent directories.
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "get working directory")
	}
	for {
		candidate := filepath.Join(dir, defaultDB)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.Newf("no damselfly trace database found (looked for %s)", defaultDB)
}

// Open discovers and opens the trace store.
func Open() (*Store, string, error) {
	path, err := Discover()
	if err != nil {
		return nil, "", err
	}
	s, err := NewStore(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "open %s", path)
	}
	return s, path, nil
}
