//go:build linux

package bench

import "golang.org/x/sys/unix"

// readCPUTimes returns the CPU time of the calling OS thread. The runner
// locks the goroutine to its thread while a case is running.
func readCPUTimes() (user, kernel int64, err error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0, 0, err
	}
	return ru.Utime.Nano(), ru.Stime.Nano(), nil
}
