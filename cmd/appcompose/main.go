// Package main provides the appcompose binary.
//
// appcompose builds and runs docker compose command lines for one managed
// app, picking the compose and env files that apply to this host.
//
// Usage:
//
//	appcompose [-config file] <command> [args...]
//
// Commands:
//
//	run <app-id> <compose command...>    - Run compose, capturing output
//	stream <app-id> <compose command...> - Run compose with output streamed
//	args <app-id> <compose command...>   - Print the command line without running it
//	paths <app-id>                       - Print the resolved file layout
//	config <app-id>                      - Print the merged compose project
//	env <app-id>                         - Print the merged env-file values
//	status <app-id>                      - List the app's containers
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("appcompose %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return ExitUsageError
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	// Setup logger
	logger, closeLog, err := SetupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}
	defer closeLog()

	rt, err := newDeps(cfg, logger)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			logger.Error("failed to start",
				"error", cmdErr.Err,
				"operation", cmdErr.Op,
			)
			fmt.Fprintf(os.Stderr, "appcompose: %v\n", err)
			return cmdErr.ExitCode
		}
		logger.Error("failed to start", "error", err)
		return ExitConfigError
	}
	defer rt.Close()

	c := &cli{
		service: rt.service,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logger,

		stderrLogged: cfg.Log.File == "",
	}
	return c.dispatch(context.Background(), flag.Arg(0), flag.Args()[1:])
}
