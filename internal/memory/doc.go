// Package memory sets the Go runtime soft memory limit for constrained
// hosts such as a single-board computer or a container behind a kiosk.
//
// Decoding a full-resolution photo before downscaling can briefly need
// several hundred megabytes. Without GOMEMLIMIT the collector only reacts
// to heap growth ratios, so a frame with a hard cgroup limit can be
// OOM-killed between collections. Configure derives the limit from the
// configured memory size and a ratio, leaving the remainder for libvips
// and other non-heap allocations.
//
// An explicit GOMEMLIMIT in the environment always wins.
package memory
