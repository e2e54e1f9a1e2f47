package testutils

import (
	"context"
	"sync"

	"github.com/DataDog/datadog-netdiag/result"
)

// FakeSnapshotter replays scripted interface snapshots and counter readings.
// Once the readings are exhausted the last one is repeated.
type FakeSnapshotter struct {
	mu            sync.Mutex
	Ifaces        result.Interfaces
	InterfacesErr error
	Readings      []result.IOCounters
	// CounterErrs fails the nth Counters call (0-based)
	CounterErrs map[int]error
	calls       int
}

func (f *FakeSnapshotter) Interfaces(ctx context.Context) (result.Interfaces, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Ifaces, f.InterfacesErr
}

func (f *FakeSnapshotter) Counters(ctx context.Context) (result.IOCounters, error) {
	if err := ctx.Err(); err != nil {
		return result.IOCounters{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.calls
	f.calls++
	if err := f.CounterErrs[call]; err != nil {
		return result.IOCounters{}, err
	}
	if len(f.Readings) == 0 {
		return result.IOCounters{}, nil
	}
	return f.Readings[min(call, len(f.Readings)-1)], nil
}

// CounterCalls returns how many times Counters was called
func (f *FakeSnapshotter) CounterCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
