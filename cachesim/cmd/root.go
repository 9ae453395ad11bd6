// Package cmd provides the command-line interface for cachesim.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim [cache size: 128-4096] [dm|fa] [uc|sc] [trace file]",
	Short: "Cachesim runs a memory trace through a simulated cache.",
	Long: `Cachesim reads a trace of instruction and data accesses and ` +
		`reports how many of them hit in a direct-mapped or ` +
		`fully-associative, unified or split cache.`,
	Args:          cobra.RangeArgs(3, 4),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolP("verbose", "v", false,
		"Print every access and whether it hits.")
	rootCmd.Flags().Bool("record", false,
		"Record every access into a database.")
	rootCmd.Flags().String("record-file", "",
		"The SQLite file to record into, without the .sqlite3 extension.")
	rootCmd.Flags().Bool("monitor", false,
		"Serve the state of the cache over HTTP.")
	rootCmd.Flags().Int("monitor-port", 0,
		"The port of the monitoring server. 0 picks a random port.")
	rootCmd.Flags().Bool("open-browser", false,
		"Open the monitoring server in a browser.")
}

// loadEnv reads .env from the working directory if there is one.
func loadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load .env: %w", err)
	}

	return nil
}

func run(cmd *cobra.Command, args []string) error {
	if err := loadEnv(); err != nil {
		return err
	}

	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	builder, err := configureBuilder(cmd, parsed)
	if err != nil {
		return err
	}

	sim, err := builder.Build()
	if err != nil {
		return err
	}
	defer sim.Terminate()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stats, err := sim.RunFile(ctx, parsed.traceFile)
	if err != nil {
		if stats.Accesses > 0 {
			_ = simulation.WriteReport(cmd.ErrOrStderr(), stats)
		}

		return err
	}

	return simulation.WriteReport(cmd.OutOrStdout(), stats)
}

func configureBuilder(
	cmd *cobra.Command,
	parsed runArgs,
) (simulation.Builder, error) {
	flags := cmd.Flags()
	b := simulation.MakeBuilder().WithConfig(parsed.config)

	if verbose, _ := flags.GetBool("verbose"); verbose {
		b = b.WithLogger(log.New(cmd.OutOrStdout(), "", 0))
	}

	if monitor, _ := flags.GetBool("monitor"); monitor {
		b = b.WithMonitoring()

		port, _ := flags.GetInt("monitor-port")
		b = b.WithMonitorPort(port)

		if open, _ := flags.GetBool("open-browser"); open {
			b = b.WithBrowser()
		}
	}

	if record, _ := flags.GetBool("record"); record {
		var err error

		b, err = configureRecording(b, flags.Lookup("record-file").Value.String())
		if err != nil {
			return b, err
		}
	}

	return b, nil
}

// configureRecording picks the recorder named by CACHESIM_RECORD_BACKEND.
func configureRecording(
	b simulation.Builder,
	fileName string,
) (simulation.Builder, error) {
	backend := strings.ToLower(os.Getenv("CACHESIM_RECORD_BACKEND"))

	switch backend {
	case "", "sqlite":
		b = b.WithRecording()
		if fileName != "" {
			b = b.WithOutputFileName(fileName)
		}

		return b, nil
	case "clickhouse":
		c, err := datarecording.ClickHouseConfigFromEnv()
		if err != nil {
			return b, err
		}

		return b.WithDataRecorder(datarecording.NewClickHouseRecorder(c)), nil
	default:
		return b, fmt.Errorf("unknown record backend %q", backend)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
