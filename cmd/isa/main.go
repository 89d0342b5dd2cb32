// Command isa queries, plots, stores and serves the International Standard
// Atmosphere model.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/atmosphere/internal/config"
	"github.com/banshee-data/atmosphere/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "conditions":
		err = handleConditions(rest, stdout)
	case "table":
		err = handleTable(rest, stdout)
	case "profile":
		err = handleProfile(rest, stdout)
	case "pressure-altitude":
		err = handlePressureAltitude(rest, stdout)
	case "plot":
		err = handlePlot(rest, stdout)
	case "chart":
		err = handleChart(rest, stdout)
	case "serve":
		err = handleServe(rest)
	case "migrate":
		err = handleMigrate(rest, stdout)
	case "remote":
		err = handleRemote(rest, stdout)
	case "version":
		fmt.Fprintln(stdout, version.Current())
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}

	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "isa %s: %v\n", command, err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `isa - International Standard Atmosphere toolkit

Usage: isa <command> [options]

Commands:
  conditions         Print the atmospheric state at an altitude
  table              Print the layer table with resolved base states
  profile            Sample one quantity from sea level upwards (csv or json)
  pressure-altitude  Convert a static pressure to a pressure altitude
  plot               Render PNG/SVG profile plots into a directory
  chart              Render an interactive HTML dashboard
  serve              Run the HTTP API and gRPC service
  migrate            Manage the profile database schema (up, down, version)
  remote             Query a running gRPC service
  version            Show version information
  help               Show this help message

Every command accepts --config <file> to load display units and defaults.

Examples:
  isa conditions --altitude 35000 --altitude-units ft
  isa profile --quantity pressure --max 20000 --count 21 --format csv
  isa plot --out plots --format svg
  isa serve --listen :8080 --grpc-listen :9090 --db atmosphere.db`)
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// carries the shared --config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to a profile configuration JSON file")
	return fs, cfgPath
}

// loadConfig returns the configuration at path, or the built-in defaults
// when path is empty.
func loadConfig(path string) (*config.ProfileConfig, error) {
	if path == "" {
		return config.EmptyProfileConfig(), nil
	}
	return config.LoadProfileConfig(path)
}
