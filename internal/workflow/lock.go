package workflow

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the advisory lock held on an output folder during a run.
const LockFileName = ".voiceblog.lock"

// acquireFolderLock takes a non-blocking exclusive lock on dir. A held lock
// means another voiceblog process is working on the same folder.
func acquireFolderLock(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, configurationError("lock", "lock output folder", err)
	}
	if !locked {
		return nil, configurationError("lock", fmt.Sprintf("%s is in use by another run", dir), nil)
	}
	return lock, nil
}
