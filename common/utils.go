package common

import "time"

// ConvertDurationToMs converts a duration to floating point milliseconds
func ConvertDurationToMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
