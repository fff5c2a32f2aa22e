package bench

// cpuTimer accumulates the user and kernel CPU time spent between Reset and
// Stop. Granularity is whatever the OS accounting offers, so it is only read
// around a whole case and never around a single sample.
type cpuTimer struct {
	userStart, kernelStart int64
	userTime, kernelTime   int64
}

func (c *cpuTimer) Reset() error {
	c.userTime, c.kernelTime = 0, 0
	user, kernel, err := readCPUTimes()
	if err != nil {
		return err
	}
	c.userStart, c.kernelStart = user, kernel
	return nil
}

func (c *cpuTimer) Stop() error {
	user, kernel, err := readCPUTimes()
	if err != nil {
		return err
	}
	c.userTime = user - c.userStart
	c.kernelTime = kernel - c.kernelStart
	return nil
}

func (c *cpuTimer) GetUserTime() int64 { return c.userTime }

func (c *cpuTimer) GetKernelTime() int64 { return c.kernelTime }
