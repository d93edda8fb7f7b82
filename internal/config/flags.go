package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLevels    = flag.Int("levels", 0, "Number of LOD levels")
	flagFactor    = flag.Float64("factor", 0, "Reduction factor between levels")
	flagPlacement = flag.String("placement", "", "Collapse placement: optimal or midpoint")
	flagBias      = flag.Float64("bias", 0, "LOD bias")
	flagCoverage  = flag.Bool("coverage", false, "Select levels by screen coverage")
	flagWorkers   = flag.Int("workers", 0, "Parallel bake workers")
)

// ParseFlags parses command-line flags from args. Pass os.Args[1:] or the
// arguments following a subcommand.
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the positional arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLevels > 0 {
		cfg.LOD.LevelCount = *flagLevels
	}
	if *flagFactor > 0 {
		cfg.LOD.ReductionFactor = float32(*flagFactor)
	}
	if *flagPlacement != "" {
		cfg.Simplify.Placement = *flagPlacement
	}
	if *flagBias > 0 {
		cfg.LOD.Bias = float32(*flagBias)
	}
	if *flagCoverage {
		cfg.LOD.Mode = "coverage"
	}
	if *flagWorkers > 0 {
		cfg.Bake.Workers = *flagWorkers
	}
}
