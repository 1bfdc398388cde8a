package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/internal/logging"
	"github.com/arloliu/pagesort/sorter"
)

var (
	backingPath string
	chunkSize   int
	workers     int
	memLimit    int
	policyName  string
	compression string
	recordType  string
	noValidate  bool
	quantiles   []float64
	syncBacking bool
	verbose     bool
	quiet       bool
	jsonLog     bool
)

var rootCmd = &cobra.Command{
	Use:   "pagesort <source> <dest>",
	Short: "Sort a large text file of numbers with bounded memory",
	Long: `pagesort converts a text file holding one number per line into a binary
backing file, sorts it in place with a parallel external merge sort that keeps
only one chunk per worker in memory, validates the result and writes the
sorted numbers to the destination as text.

An existing backing file is reused as is, without reading the source again.

Example:
  pagesort input.txt sorted.txt
  pagesort input.txt.zst sorted.txt.zst --workers 8 --mem-limit 67108864
  pagesort input.txt sorted.txt --backing /tmp/plane.wf --quantiles 0.5,0.99`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSort(cmd.Context(), args)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&backingPath, "backing", "./plane.wf", "Backing file path; reused when it already exists")
	flags.IntVar(&chunkSize, "chunk-size", sorter.DefaultChunkSize, "Chunk size in bytes")
	flags.IntVar(&workers, "workers", sorter.DefaultWorkers(), "Thread budget, rounded down to even; 0 sorts serially")
	flags.IntVar(&memLimit, "mem-limit", sorter.DefaultMemLimit, "Scratch memory limit in bytes")
	flags.StringVar(&policyName, "policy", "consume", "Thread budget policy (consume, release)")
	flags.StringVar(&compression, "compress", "", "Output compression (none, zstd, s2, lz4); default from the dest extension")
	flags.StringVar(&recordType, "type", "float64", "Record type (float64, float32, int64, int32)")
	flags.BoolVar(&noValidate, "no-validate", false, "Skip post-sort validation")
	flags.Float64SliceVar(&quantiles, "quantiles", nil, "Quantiles of the sorted data to report, e.g. 0.5,0.99")
	flags.BoolVar(&syncBacking, "sync", false, "Sync the backing file to disk after sorting")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Log as JSON")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logging.Init(logging.Options{
		Enabled: true,
		Writer:  os.Stderr,
		Level:   level,
		JSON:    jsonLog,
	})
}

// containerOptions maps the flags onto container options.
func containerOptions() []container.Option {
	return []container.Option{
		container.WithChunkSize(chunkSize),
		container.WithDynamicGrowth(false),
		container.WithLogger(logging.L),
	}
}

// printInfo prints a progress message unless in quiet mode.
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}
