// Command krkio reads, writes and lists files through managed streams, and
// inspects or changes the process environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/desertwitch/krkio/internal/configuration"
	"github.com/desertwitch/krkio/internal/environ"
	"github.com/desertwitch/krkio/internal/fileio"
	"github.com/desertwitch/krkio/internal/hosterr"
	"github.com/desertwitch/krkio/internal/platform"
	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

const (
	stackTraceBufMax = 1 << 24

	terminalHandler = "terminal"
	uiLogHandler    = "ui"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	logLevel = new(slog.LevelVar)

	configFile = flag.String("config", "", "read the configuration from this file")
	rootDir    = flag.String("root", "", "confine all file access to this directory")
	workDir    = flag.String("C", "", "change to this directory before running the command")
	debug      = flag.Bool("debug", false, "enable debug logging")
	jsonErrors = flag.Bool("json-errors", false, "report errors as JSON on stderr")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func setupLogging() *SlogManager {
	logs := NewSlogManager()
	logs.AddHandler(terminalHandler, tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(slog.New(logs))

	return logs
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()

	sigChan3 := make(chan os.Signal, 1)
	signal.Notify(sigChan3, syscall.SIGUSR2)
	go func() {
		for range sigChan3 {
			runtime.GC()
		}
	}()
}

// loadConfiguration reads the configuration file (if any) and applies the
// process environment on top of it.
func loadConfiguration(env *environ.Overlay) (*configuration.AppConfiguration, error) {
	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})

	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}

	config, err := configHandler.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("(main-config) %w", err)
	}

	if err := configHandler.Apply(config, env.Snapshot()); err != nil {
		return nil, fmt.Errorf("(main-config) %w", err)
	}

	if *debug {
		config.LogLevel = slog.LevelDebug
	}

	return config, nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newFileSystem() platform.FileSystem {
	if *rootDir != "" {
		return platform.NewChroot(*rootDir)
	}

	return &platform.OS{}
}

func stopProfiler(prof *profiler) {
	if err := prof.Stop(); err != nil {
		slog.Error("Could not write profile", "err", err)
	}
}

// report logs a failed operation and sets the [ExitCode].
func report(op string, err error) {
	herr := hosterr.Convert(op, err)
	if herr == nil {
		return
	}

	ExitCode = hosterr.ExitCode(herr)

	if *jsonErrors {
		data, jerr := hosterr.JSON(herr)
		if jerr == nil {
			fmt.Fprintln(os.Stderr, string(data))

			return
		}
	}

	slog.Error(herr.Message(),
		"code", herr.Code(),
		"err", err,
	)
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Usage = func() { Usage(flag.CommandLine.Output()) }
	flag.Parse()

	logs := setupLogging()
	setupSignalHandlers(cancel)

	for kind, path := range map[string]string{profileCPU: *cpuprofile, profileAllocs: *memprofile} {
		prof, err := startProfiler(kind, path)
		if err != nil {
			report("profile", err)

			return
		}
		defer stopProfiler(prof)
	}

	if *workDir != "" {
		if err := (&platform.OSSystem{}).Chdir(*workDir); err != nil {
			report("chdir", err)

			return
		}
	}

	env := environ.Load(&platform.OSEnv{})

	config, err := loadConfiguration(env)
	if err != nil {
		report("config", err)

		return
	}
	logLevel.Set(config.LogLevel)

	slog.Debug("Loaded configuration:",
		"version", Version,
		"chunkSize", config.ChunkSize,
		"logLevel", config.LogLevel,
		"envFiles", config.EnvFiles,
	)

	if err := env.Import(&configuration.GodotenvProvider{}, config.EnvFiles...); err != nil {
		report("env", err)

		return
	}

	files := fileio.NewHandler(newFileSystem(), fileio.WithChunkSize(config.ChunkSize))
	app := NewApp(files, env, logs)
	app.interactive = isInteractive()

	usage := newUsageObserver(ctx, files.Tracker(), usageInterval)
	defer usage.Stop()

	op, err := app.Run(ctx, flag.Args())
	if err != nil {
		report(op, err)
	}

	if err := files.Shutdown(); err != nil {
		report("shutdown", err)
	}
}
