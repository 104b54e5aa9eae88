package sorter

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrPassInProgress is returned when another process is sorting the same directory
var ErrPassInProgress = errors.New("another sortify pass is running in this directory")

// lockPath keeps lock files out of the sorted directory itself
func lockPath(lockDir, dir string) string {
	sum := sha256.Sum256([]byte(dir))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

func acquireLock(lockDir, dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(lockPath(lockDir, dir))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrPassInProgress
	}
	return lock, nil
}
