// lodtool is a CLI utility for simplifying meshes and inspecting LOD level sets.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/meshlod/internal/config"
	"github.com/Faultbox/meshlod/internal/logger"
)

func main() {
	if err := config.ParseFlags(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, args[0], args[1:], os.Stdout); err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, command string, args []string, out io.Writer) error {
	switch command {
	case "simplify":
		return cmdSimplify(cfg, args, out)
	case "levels", "ls":
		return cmdLevels(cfg, args, out)
	case "select", "sel":
		return cmdSelect(cfg, args, out)
	case "sweep":
		return cmdSweep(cfg, args, out)
	case "config":
		return cmdConfig(cfg, args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `lodtool - mesh simplification and level of detail utility

Usage:
  lodtool [global options] <command> [options]

Commands:
  simplify <mesh> [-ratio r]          Simplify a mesh and print run statistics
  levels [mesh...]                    Bake level sets and print their tables
  select <mesh> <value...>            Print the levels chosen for distances or coverages
  sweep <mesh> [-steps n] [-zoom z]   Zoom a camera out and print level transitions
  config [-save path] [-install]      Print or save the effective configuration

Meshes:
  cube, grid:<n>, sphere:<rings>,<segments>

Global options:
  -config <path>   Config file (default ./lodtool.yaml)
  -levels <n>      Number of levels
  -factor <f>      Reduction factor between levels
  -placement <p>   optimal or midpoint
  -bias <b>        LOD bias
  -coverage        Select by screen coverage instead of distance
  -workers <n>     Parallel bake workers
  -debug           Enable debug logging

Examples:
  lodtool simplify -ratio 0.25 sphere:16,24
  lodtool -levels 5 levels cube grid:8
  lodtool -bias 2 select sphere:16,24 5 12 40
  lodtool -coverage select -json cube 0.4 0.1
  lodtool sweep -steps 60 grid:16`)
}
