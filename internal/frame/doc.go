// Package frame is the serving facade of the photo frame.
//
// A Service ties the library store, selection policy, text cache, generator
// and relocation handler together behind the handful of operations the
// HTTP layer needs: pick the next photo with its text, move a photo
// between buckets, omit or delete it, and trigger a re-index.
//
// Selection is self-healing: a pick whose file has vanished is dropped from
// the library and the cache and another pick is made. When the library is
// empty the service distinguishes an unreachable photo root
// (ErrStorageUnavailable) from a reachable but empty one (ErrEmptyLibrary).
//
// Text generation never holds the library lock. Concurrent requests for
// the same uncached photo share one generator call.
package frame
