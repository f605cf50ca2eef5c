// Package indexer keeps the photo library in step with the photo tree.
//
// Each run starts one scan worker (see package scanner) in its own
// goroutine and consumes its batches on the calling goroutine, merging
// them into the library store one at a time. Only one run may be active;
// a second request while a run is in progress gets ErrIndexInProgress.
//
// Runs come in three flavours:
//   - defaults: favorites only, used at first start with an empty library
//   - full: the whole tree, merged into the existing library
//   - rebuild: a full scan into a cleared library, after which cached text
//     for photos that were not found again is dropped
//
// RunNightly schedules a non-destructive full scan once a day.
package indexer
