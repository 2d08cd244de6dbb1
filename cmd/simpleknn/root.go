package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/TrevorS/simpleknn"
)

type computeFlags struct {
	input       string
	output      string
	configPath  string
	mode        string
	k           int
	window      int
	workers     int
	memoryLimit int64
	scales      bool
	metricsOut  string
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "simpleknn",
		Short:         "Mean squared nearest-neighbor distances for 3D point clouds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newComputeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newComputeCmd() *cobra.Command {
	f := &computeFlags{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the mean squared distance of every point to its k nearest neighbors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runCompute(ctx, cmd, f, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "input point file, '-' for stdin (required)")
	fl.StringVarP(&f.output, "output", "o", "-", "output file, '-' for stdout")
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fl.StringVar(&f.mode, "mode", string(simpleknn.ModeWindow), "neighbor search: window, boxes, kdtree or brute")
	fl.IntVar(&f.k, "k", 3, "number of nearest neighbors")
	fl.IntVar(&f.window, "window", 8, "positions scanned on each side of a point in Z-order")
	fl.IntVar(&f.workers, "workers", 0, "parallel workers (0 = number of CPUs)")
	fl.Int64Var(&f.memoryLimit, "memory-limit", 0, "device memory budget in bytes (0 = unlimited)")
	fl.BoolVar(&f.scales, "scales", false, "write log-space initial scales instead of squared distances")
	fl.StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to this file")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// resolve loads the configuration file (if any) and applies explicitly set
// flags on top of it.
func (f *computeFlags) resolve(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = LoadConfig(f.configPath); err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("mode") {
		cfg.Compute.Mode = simpleknn.Mode(f.mode)
	}
	if fl.Changed("k") {
		cfg.Compute.K = f.k
	}
	if fl.Changed("window") {
		cfg.Compute.Window = f.window
	}
	if fl.Changed("workers") {
		cfg.Device.Workers = f.workers
	}
	if fl.Changed("memory-limit") {
		cfg.Device.MemoryLimitBytes = f.memoryLimit
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fl.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCompute(ctx context.Context, cmd *cobra.Command, f *computeFlags, cfg *Config) error {
	logger, err := cfg.newLogger()
	if err != nil {
		return err
	}
	cfg.Device.Logger = logger

	reg := prometheus.NewRegistry()
	collector, err := simpleknn.NewPrometheusCollector(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	cfg.Device.Metrics = collector

	flat, err := readInput(cmd.InOrStdin(), f.input)
	if err != nil {
		return err
	}

	dev := simpleknn.NewDevice(cfg.Device)
	dist2, err := simpleknn.MeanSquaredDistances(ctx, dev, flat, cfg.Compute)
	if err != nil {
		return err
	}

	s := simpleknn.Summarize(dist2)
	logger.InfoContext(ctx, "computed mean squared neighbor distances",
		"points", s.Count,
		"mode", string(cfg.Compute.Mode),
		"min", s.Min,
		"median", s.Median,
		"p90", s.P90,
		"max", s.Max,
		"peak_bytes", dev.Stats().PeakBytes,
	)

	if err := writeOutput(cmd.OutOrStdout(), f.output, func(w io.Writer) error {
		if f.scales {
			return writeScales(w, simpleknn.InitialScales(dist2, cfg.MinDist2))
		}
		return writeValues(w, dist2)
	}); err != nil {
		return err
	}

	if f.metricsOut != "" {
		if err := prometheus.WriteToTextfile(f.metricsOut, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]float64, error) {
	if path == "-" {
		return readPoints(stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()
	return readPoints(file)
}

func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	return file.Close()
}
