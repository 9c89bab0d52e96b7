// Package fsio provides small filesystem helpers for safe persistence.
//
// Key capabilities:
//   - WriteFileAtomic: temp file + fsync + rename, with restrictive permissions
//   - ReadFileShared: read under a best-effort advisory shared lock
//
// The shared lock is advisory only: it coordinates cooperating readers but
// does not exclude writers. Writers rely on the atomic rename so a reader
// never observes a half-written file. On platforms without flock the lock
// is skipped and the read proceeds normally.
package fsio
