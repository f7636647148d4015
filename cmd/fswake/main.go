package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fswake/internal/cli"
	"fswake/internal/logging"
	"fswake/internal/version"
	"fswake/internal/watcher"
	"fswake/internal/worker"
)

const programName = "fswake"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := cli.AddHelpVersionFlags(fs, "", "")

	if err := fs.Parse(args); err != nil {
		printUsage(stderr)
		return 2
	}
	if flags.Help {
		printUsage(stdout)
		return 0
	}
	if flags.Version {
		fmt.Fprintln(stdout, version.String(programName))
		return 0
	}
	if fs.NArg() > 0 {
		printUsage(stderr)
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		printUsage(stderr)
		return 2
	}

	logBuffer := logging.NewBuffer(logging.DefaultBufferSize)
	logger := logging.NewLoggerWithOutput(logBuffer, cfg.LogLevel, stdout)

	fmt.Fprintln(stdout, version.String(programName))

	service, err := watcher.New(watcher.Options{Logger: logger})
	if err != nil {
		logger.Error("watcher init failed", map[string]string{"error": err.Error()})
		return 1
	}

	idle := worker.NewIdle(worker.IdleOptions{
		Interval: cfg.IdleInterval,
		Logger:   logger,
	})
	fsWorker := worker.NewFSWatch(worker.FSWatchOptions{
		Path:    cfg.WatchPath,
		Service: service,
		Logger:  logger,
	})
	pool := worker.NewPool(logger, idle, fsWorker)

	cancelWakeups := worker.RegisterWakeups(service, pool, fsWorker, cfg.WakePolicy)
	defer cancelWakeups()

	pool.Start()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		runConsole(stdin, stdout)
	}()

	select {
	case <-quit:
		logger.Info("quit command received", nil)
	case sig := <-signalCh:
		logger.Info("shutdown signal received", map[string]string{"signal": sig.String()})
	}

	shutdown := newShutdownRunner(logger)
	shutdown.Add("workers", func() error {
		pool.Shutdown()
		return nil
	})
	shutdown.Add("watcher", func() error {
		service.Stop()
		return nil
	})
	if err := shutdown.Run(); err != nil {
		logger.Warn("shutdown finished with errors", map[string]string{"error": err.Error()})
	}
	return 0
}

func printUsage(output io.Writer) {
	fmt.Fprintf(output, "Usage: %s [OPTION]\n", programName)
	fmt.Fprintln(output, "  -v, --version            version")
	fmt.Fprintln(output, "  -h, --help               this message")
	fmt.Fprintln(output)
}
