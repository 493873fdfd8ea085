// Package resource implements the Controller for memory and IO governance.
//
// The Controller manages two resource types:
//
//   - Memory: bytes reserved by arena chunks across every pool of a graph
//     (non-blocking, fail-fast)
//   - IO: token-bucket rate limit for export streams so a large dump does not
//     saturate the disk or network the host process also depends on
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic counter
// for usage. AcquireMemory returns ErrMemoryLimitExceeded immediately when the
// limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(ctx, chunkBytes); err != nil {
//	    // arena growth rejected
//	}
//	defer rc.ReleaseMemory(chunkBytes)
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 64 * 1024 * 1024,
//	})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
