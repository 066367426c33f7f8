//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// cpuID is folded into [0, runtime.NumCPU()-1].
func pinToCore(cpuID int) (int, error) {
	cpuID = coreFor(cpuID)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}

	return cpuID, nil
}

// PinSupported reports whether LockWorker can pin threads on this platform.
func PinSupported() bool {
	return true
}

// LockWorker locks the calling goroutine to its own OS thread. When pin is
// set the thread is also bound to the core chosen from workerID. The lock
// stays in place if pinning fails; the error is returned so the caller can
// report it.
//
// The returned func releases an unpinned thread back to the scheduler. A
// pinned thread is never released: it is destroyed when the goroutine
// exits, so its affinity mask cannot leak to other goroutines.
func LockWorker(workerID int, pin bool) (func(), error) {
	runtime.LockOSThread()

	if !pin {
		return runtime.UnlockOSThread, nil
	}

	if _, err := pinToCore(workerID); err != nil {
		return runtime.UnlockOSThread, err
	}
	return func() {}, nil
}
