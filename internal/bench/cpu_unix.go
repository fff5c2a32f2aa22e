//go:build unix && !linux

package bench

import "golang.org/x/sys/unix"

func readCPUTimes() (user, kernel int64, err error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, 0, err
	}
	return ru.Utime.Nano(), ru.Stime.Nano(), nil
}
