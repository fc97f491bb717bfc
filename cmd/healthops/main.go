// Command healthops serves health reports and telemetry for the dependencies
// listed in an observability settings document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/server"
	"github.com/jonwraymond/healthops/setting"
)

const applicationName = "healthops"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	config      string
	addr        string
	envFiles    []string
	logLevel    string
	showVersion bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	f := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	f.StringVarP(&opts.config, "config", "c", setting.DefaultFile, "observability settings document")
	f.StringVarP(&opts.addr, "addr", "a", server.DefaultAddr, "listen address")
	f.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "environment files loaded before the settings")
	f.StringVar(&opts.logLevel, "log-level", "info", "level of the startup logger (debug|info|warn|error)")
	f.BoolVarP(&opts.showVersion, "version", "v", false, "print the version and exit")
	return f
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(arguments []string) int {
	var opts options
	f := newFlagSet(&opts)
	if err := f.Parse(arguments); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if opts.showVersion {
		fmt.Println(applicationName, version)
		return 0
	}

	logger := observe.NewLogger(opts.logLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Existing variables win over the files.
	for _, file := range opts.envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn(ctx, "environment file not loaded", observe.F("path", file), observe.F("error", err))
		}
	}

	srv, err := server.New(ctx, server.Config{
		Addr:        opts.addr,
		SettingPath: opts.config,
		Version:     version,
		Logger:      logger,
	})
	if err != nil {
		logger.Error(ctx, "could not start", observe.F("error", err))
		return 1
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", observe.F("error", err))
		return 1
	}
	logger.Info(context.Background(), "shut down")
	return 0
}
