//go:build windows

package bench

import "golang.org/x/sys/windows"

const hundredNSTicks = 100

func filetimeTicks(ft windows.Filetime) int64 {
	return int64(ft.HighDateTime)<<32 | int64(ft.LowDateTime)
}

// readCPUTimes returns the CPU time of the current process.
func readCPUTimes() (user, kernel int64, err error) {
	var creation, exit, kernelTime, userTime windows.Filetime
	if err := windows.GetProcessTimes(windows.CurrentProcess(), &creation, &exit, &kernelTime, &userTime); err != nil {
		return 0, 0, err
	}
	return filetimeTicks(userTime) * hundredNSTicks, filetimeTicks(kernelTime) * hundredNSTicks, nil
}
