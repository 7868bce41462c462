// Package memory controls the Go runtime memory limit and holds background
// work back under memory pressure.
//
// # Configuration
//
// Call [ConfigureFromEnv] early in main, before significant allocations:
//
//   - GOMEMLIMIT: standard Go variable, takes precedence when set.
//   - MEMORY_LIMIT: container memory limit, either raw bytes (as the
//     Kubernetes Downward API provides it) or a size such as "512MiB".
//   - MEMORY_RATIO: fraction of MEMORY_LIMIT given to the Go heap
//     (default 0.85). Lower it when many ffmpeg processes run at once,
//     since their memory is outside the Go heap.
//
// # Backpressure
//
// [Monitor] samples heap allocation against the limit. Above the critical
// watermark it pauses; below the high watermark it resumes. Its Wait method
// satisfies workers.Gate, so thumbnail and probe jobs queue instead of
// spawning more ffmpeg processes while the heap is near the limit:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//	pool.SetGate(monitor)
//
// Without a limit the monitor never pauses.
package memory
