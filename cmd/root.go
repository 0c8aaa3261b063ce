// cmd/root.go
package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cachesim/cachesim/sim"
	_ "github.com/cachesim/cachesim/sim/policy"
	"github.com/cachesim/cachesim/sim/trace"
)

var (
	tracePath  string
	configJSON string
	configPath string
	statsPath  string
	warmInstr  uint64
	measInstr  uint64
	heartbeat  uint64
	bufferSize int
	queueSize  int
)

var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Trace-driven simulator for a multi-level cache hierarchy",
	Run:   runSimulation,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Spec §6 reserves -h for heartbeat-interval, not cobra's default
	// help shorthand. Register "help" ourselves, with no shorthand,
	// before Execute() runs: ExecuteC()'s InitDefaultHelpFlag() only
	// auto-registers "-h" for help when Lookup("help") finds nothing
	// yet, so pre-registering it here frees "-h" for heartbeat instead
	// of panicking on a shorthand collision in pflag's AddFlag.
	rootCmd.Flags().Bool("help", false, "help for "+rootCmd.Name())

	rootCmd.Flags().StringVarP(&tracePath, "trace", "t", "", "trace file (xz-compressed instruction records)")
	rootCmd.Flags().StringVar(&configJSON, "config", "", "configuration as an inline JSON literal")
	rootCmd.Flags().StringVarP(&configPath, "config-path", "p", "", "configuration file path")
	rootCmd.Flags().StringVar(&statsPath, "json", "", "output statistics file (pretty JSON array of CacheStats)")
	rootCmd.Flags().Uint64VarP(&warmInstr, "warm", "w", 50_000_000, "warmup instruction count")
	rootCmd.Flags().Uint64VarP(&measInstr, "instr", "i", 100_000_000, "measurement instruction count")
	rootCmd.Flags().Uint64VarP(&heartbeat, "heartbeat", "h", 0, "heartbeat interval in instructions; 0 disables")
	rootCmd.Flags().IntVar(&bufferSize, "buffer-size", 16384, "instructions per batch")
	rootCmd.Flags().IntVar(&queueSize, "queue-size", 32, "batches in flight")

	_ = rootCmd.MarkFlagRequired("trace")
	_ = rootCmd.MarkFlagRequired("json")
}

func runSimulation(cmd *cobra.Command, args []string) {
	if tracePath == "" {
		logrus.Fatalf("missing required flag: -t/--trace")
	}
	if statsPath == "" {
		logrus.Fatalf("missing required flag: --json")
	}

	raw, err := loadConfigBytes()
	if err != nil {
		logrus.Fatalf("loading configuration: %v", err)
	}

	cfg, err := sim.ParseConfig(raw)
	if err != nil {
		logrus.Fatalf("parsing configuration: %v", err)
	}

	caches, err := sim.BuildCaches(cfg)
	if err != nil {
		logrus.Fatalf("building cache stack: %v", err)
	}

	reader, err := trace.NewReader(tracePath, bufferSize, queueSize)
	if err != nil {
		logrus.Fatalf("opening trace: %v", err)
	}

	stack := sim.NewStack(caches)
	simulator := sim.NewSimulator(stack)

	done := make(chan struct{})
	go func() {
		<-done
		reader.Stop()
	}()

	logrus.Infof("starting simulation: %d cache(s), warmup=%d, measurement=%d instructions",
		len(caches), warmInstr, measInstr)

	stats := simulator.Run(reader.Batches, done, sim.RunConfig{
		NWarm:             warmInstr,
		NInstr:            measInstr,
		HeartbeatInterval: heartbeat,
		Heartbeat: func(instrIdx uint64) {
			logrus.Infof("heartbeat: %d instructions processed", instrIdx)
		},
	})

	if err := <-reader.Err; err != nil {
		logrus.Warnf("trace reader reported an error after it stopped: %v", err)
	}

	logSummary(stats)

	if err := writeStats(statsPath, stats); err != nil {
		logrus.Fatalf("writing statistics: %v", err)
	}
}

// loadConfigBytes resolves the configuration source: an inline JSON
// literal passed via --config, or a file path passed via
// -p/--config-path. Exactly one of the two must be set.
func loadConfigBytes() ([]byte, error) {
	if configJSON != "" && configPath != "" {
		logrus.Fatalf("exactly one of --config or -p/--config-path is required, not both")
	}
	if configJSON != "" {
		return []byte(configJSON), nil
	}
	if configPath != "" {
		return os.ReadFile(configPath)
	}
	logrus.Fatalf("exactly one of --config or -p/--config-path is required")
	return nil, nil
}

func logSummary(stats []sim.CacheStats) {
	for _, s := range stats {
		logrus.Infof("cache %s: %d hits, %d misses, miss_rate=%.4f", s.Name, s.Hits, s.Misses, s.MissRate)
	}
}

func writeStats(path string, stats []sim.CacheStats) error {
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
