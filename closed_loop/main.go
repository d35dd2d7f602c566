package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"servo-foc-core/utils"
)

func main() {
	var (
		scenPath = flag.String("scenario", "", "Scenario JSON file (default: built-in move to 100)")
		mapPath  = flag.String("map", "", "Path to a status frame can_map.csv (default: built-in)")
		trace    = flag.String("trace", "", "Write status frames as a candump log to this file")
		iface    = flag.String("iface", "servo0", "Interface name recorded in the trace")
		goal     = flag.String("goal", "", "Override the goal position")
		ticks    = flag.Int("ticks", 0, "Override the tick count")
		logPath  = flag.String("logfile", "servo.log", "Log file, empty logs to stdout only")
		logLevel = flag.String("log", "info", "trace|debug|info|warn|error|critical")
	)
	flag.Parse()

	level := utils.ParseLevel(*logLevel)

	log := utils.NewLogger(os.Stdout, level)
	if *logPath != "" {
		var err error
		log, err = utils.NewFileLogger(*logPath, level, true)
		if err != nil {
			_, _ = os.Stderr.WriteString("ERROR: cannot open " + *logPath + ": " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	defer log.Close()

	cfg := RunnerConfig{
		ScenarioPath: *scenPath,
		MapPath:      *mapPath,
		TracePath:    *trace,
		Interface:    *iface,
		Ticks:        *ticks,
	}
	if *goal != "" {
		g, err := strconv.ParseFloat(*goal, 64)
		if err != nil {
			log.Critical("Invalid -goal %q: %v", *goal, err)
			os.Exit(1)
		}
		cfg.Goal = &g
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := NewRunner(cfg, log)
	if err != nil {
		log.Critical("Startup failed: %v", err)
		os.Exit(1)
	}
	defer runner.Close()

	if _, err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}
