package board

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/andywolf/stigmergy/internal/errs"
)

const lockRetryInterval = 100 * time.Millisecond

// acquireLock attempts exclusive creation of path+".lock", retrying with a
// fixed backoff for up to timeout. The lock file contains the current
// process id, per spec.md's locking protocol.
func acquireLock(path string, timeout time.Duration) (string, error) {
	lockPath := path + ".lock"
	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return lockPath, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("acquire status board lock: %w", err)
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: timed out waiting for lock %s", errs.ErrStatusBoardContention, lockPath)
		}
		time.Sleep(lockRetryInterval)
	}
}

// releaseLock removes the lock file. Safe to call even if the file is
// already gone.
func releaseLock(lockPath string) {
	_ = os.Remove(lockPath)
}

// readLockPID returns the pid recorded in an existing lock file, or 0 if
// it cannot be read or parsed. Used only for diagnostics.
func readLockPID(lockPath string) int {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(trimNewline(data)))
	if err != nil {
		return 0
	}
	return pid
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
