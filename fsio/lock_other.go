//go:build !unix

package fsio

import "os"

// lockShared is a no-op on platforms without flock. Reads still work;
// the atomic rename on the write side keeps them consistent.
func lockShared(_ *os.File) bool { return false }

func unlock(_ *os.File) {}
