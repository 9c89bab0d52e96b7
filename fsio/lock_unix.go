//go:build unix

package fsio

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockShared acquires a non-blocking advisory shared lock on f.
// Returns false if the lock could not be acquired.
func lockShared(f *os.File) bool {
	err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB)
	return err == nil
}

func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
