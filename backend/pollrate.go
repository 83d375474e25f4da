package backend

import (
	"sync/atomic"
	"time"
)

// The polling rate is process-wide, like a display refresh rate: every
// continuous sampler in the process ticks at the same frequency.
// Callers sharing a backend must coordinate changes externally.

const defaultPollingRate = 120

var pollingRate atomic.Int64

func init() {
	pollingRate.Store(defaultPollingRate)
}

// SetPollingRate sets the process-wide sampling frequency in Hz for
// continuous samplers. Values below 1 are clamped to 1.
func SetPollingRate(hz int) {
	if hz < 1 {
		hz = 1
	}
	pollingRate.Store(int64(hz))
}

// PollingRate returns the process-wide sampling frequency in Hz.
func PollingRate() int {
	return int(pollingRate.Load())
}

// PollingInterval returns the tick interval for continuous samplers.
func PollingInterval() time.Duration {
	return time.Second / time.Duration(pollingRate.Load())
}
