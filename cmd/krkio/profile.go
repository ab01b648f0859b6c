package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/dustin/go-humanize"
)

// The kinds of profiles a [profiler] can write.
const (
	profileCPU    = "cpu"
	profileAllocs = "allocs"
)

// errUnknownProfile is returned for a profile kind other than [profileCPU]
// and [profileAllocs].
var errUnknownProfile = errors.New("unknown profile kind")

// profiler writes a runtime profile of the process into a file. The CPU
// profile covers the time between [startProfiler] and [profiler.Stop], during
// which the samples carry the label of the running command. The allocations
// are written on [profiler.Stop].
type profiler struct {
	kind string
	file *os.File
}

// startProfiler creates the profile file at path and starts the CPU profile.
// An empty path returns a nil [profiler], which does nothing.
func startProfiler(kind, path string) (*profiler, error) {
	if path == "" {
		return nil, nil //nolint:nilnil
	}

	if kind != profileCPU && kind != profileAllocs {
		return nil, fmt.Errorf("(main-profile) %q: %w", kind, errUnknownProfile)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("(main-profile) failed to create %s profile: %w", kind, err)
	}

	if kind == profileCPU {
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()

			return nil, fmt.Errorf("(main-profile) failed to start %s profile: %w", kind, err)
		}
	}

	return &profiler{kind: kind, file: f}, nil
}

// Stop completes the profile and closes its file.
func (p *profiler) Stop() error {
	if p == nil {
		return nil
	}

	var errs []error

	switch p.kind {
	case profileCPU:
		pprof.StopCPUProfile()
	case profileAllocs:
		if err := pprof.Lookup(profileAllocs).WriteTo(p.file, 0); err != nil {
			errs = append(errs, err)
		}
	}

	if info, err := p.file.Stat(); err == nil {
		slog.Debug("Wrote profile:",
			"kind", p.kind,
			"path", p.file.Name(),
			"size", humanize.IBytes(uint64(info.Size())), //nolint:gosec
		)
	}

	if err := p.file.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("(main-profile) failed to write %s profile: %w", p.kind, err)
	}

	return nil
}
