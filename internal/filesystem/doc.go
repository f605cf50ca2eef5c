/*
Package filesystem wraps the filesystem calls photoframe makes against the
photo tree, which is usually an NFS or SMB mount.

Stat, ReadFile and ReadDir are retried with exponential backoff when they
fail with ESTALE (stale file handle). Every other error is returned at once.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Defaults: 3 retries, 50ms initial backoff, 500ms cap.

Move relocates a photo between bucket directories. os.Rename is tried first;
across devices it copies, preserves the modification time, and removes the
source. UniqueDestination picks a free name by appending a millisecond
timestamp.

Metrics are recorded through an Observer installed with SetObserver so this
package does not import metrics.
*/
package filesystem
