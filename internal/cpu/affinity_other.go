//go:build !linux

package cpu

import "runtime"

// PinSupported reports whether LockWorker can pin threads on this platform.
func PinSupported() bool {
	return false
}

// LockWorker locks the calling goroutine to its own OS thread.
// CPU pinning is not available on this platform, so pin is ignored.
func LockWorker(workerID int, pin bool) (func(), error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
