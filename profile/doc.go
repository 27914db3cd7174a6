// Package profile provides optional runtime profiling for jmes.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o jmes .
//
// Without the tag, [Profiler.Start] returns a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// The jmes command exposes the same settings as --pprof-mode and
// --pprof-dir. A typical session profiles a large search and inspects the
// result with go tool pprof:
//
//	jmes --pprof-mode=cpu 'items[?price > `10`].name' big.json
//	go tool pprof -http=: ~/.cache/jmes/pprof/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
