package main

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/desertwitch/krkio/internal/resource"
	"github.com/dustin/go-humanize"
)

// usageInterval is the interval at which a [usageObserver] takes samples.
const usageInterval = 100 * time.Millisecond

// usageSample is the resource usage of the process at one point in time.
type usageSample struct {
	// Alloc is the size of the allocated heap, which is dominated by the
	// read buffers of large files.
	Alloc uint64

	// Streams is the amount of managed files and directories still open.
	Streams int
}

// usageObserver tracks the peak resource usage while a command runs.
type usageObserver struct {
	sync.Mutex
	tracker *resource.Tracker
	peak    usageSample

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// newUsageObserver returns a pointer to a new [usageObserver], counting the
// open handles of tracker. The tracking is started and needs to be stopped by
// e.g. deferred calling of [usageObserver.Stop] before program exit.
func newUsageObserver(ctx context.Context, tracker *resource.Tracker, interval time.Duration) *usageObserver {
	obs := &usageObserver{
		tracker:  tracker,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go obs.monitor(ctx, interval)

	return obs
}

// Peak returns the peak recorded usage.
func (o *usageObserver) Peak() usageSample {
	o.Lock()
	defer o.Unlock()

	return o.peak
}

// Stop halts the tracking, takes a last sample and logs the peak usage.
func (o *usageObserver) Stop() usageSample {
	o.stopOnce.Do(func() {
		close(o.stopChan)
	})
	<-o.doneChan

	o.sample()
	peak := o.Peak()

	slog.Debug("Resource usage peaked at:",
		"alloc", humanize.IBytes(peak.Alloc),
		"streams", peak.Streams,
	)

	return peak
}

func (o *usageObserver) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	live := o.tracker.Live()

	o.Lock()
	defer o.Unlock()

	o.peak.Alloc = max(o.peak.Alloc, m.Alloc)
	o.peak.Streams = max(o.peak.Streams, live)
}

func (o *usageObserver) monitor(ctx context.Context, interval time.Duration) {
	defer close(o.doneChan)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sample()
		}
	}
}
