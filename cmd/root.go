// Package cmd provides the command-line interface for VMSim.
package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/simulation"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "vmsim [address file]",
	Short: "VMSim simulates the address translation of a demand-paged " +
		"virtual memory system.",
	Long: `VMSim reads a file holding one decimal logical address per line ` +
		`and translates every address to a physical address, paging data ` +
		`in from a backing store file on demand. Each translation is ` +
		`printed together with the byte stored at the physical address, ` +
		`followed by the TLB hit and page fault statistics of the run.

Defaults can also be set through the VMSIM_BACKING_STORE, VMSIM_RECORD, and
VMSIM_MONITOR_PORT environment variables or a .env file.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulation,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file is optional.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

func init() {
	rootCmd.Flags().String("backing-store", "BACKING_STORE.bin",
		"path of the file that backs the pages")
	rootCmd.Flags().Bool("record", false,
		"record every translation into a SQLite database")
	rootCmd.Flags().String("output", "",
		"name of the database the translations are recorded into, "+
			"without the .sqlite3 suffix; implies --record")
	rootCmd.Flags().Bool("trace", false,
		"log every translation event to stderr")
	rootCmd.Flags().Bool("monitor", false,
		"serve the simulation state over HTTP")
	rootCmd.Flags().Int("monitor-port", 0,
		"port of the monitoring server; implies --monitor")
	rootCmd.Flags().Bool("open-browser", false,
		"open the monitoring dashboard in the default browser; "+
			"implies --monitor")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	addressFile, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open address file: %w", err)
	}
	defer addressFile.Close()

	s, err := builderFromFlags(cmd).Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	return s.Run(addressFile, cmd.OutOrStdout())
}

func builderFromFlags(cmd *cobra.Command) simulation.Builder {
	builder := simulation.MakeBuilder().
		WithBackingStore(backingStorePath(cmd))

	if recordOn(cmd) {
		builder = builder.WithRecording()
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		builder = builder.WithRecording().WithOutputFileName(output)
	}

	if traceOn, _ := cmd.Flags().GetBool("trace"); traceOn {
		builder = builder.WithTraceLogger(
			log.New(cmd.ErrOrStderr(), "", 0))
	}

	return monitorFromFlags(cmd, builder)
}

func monitorFromFlags(
	cmd *cobra.Command,
	builder simulation.Builder,
) simulation.Builder {
	monitorOn, _ := cmd.Flags().GetBool("monitor")
	port := monitorPort(cmd)
	openBrowser, _ := cmd.Flags().GetBool("open-browser")

	if port > 0 || openBrowser {
		monitorOn = true
	}

	if !monitorOn {
		return builder
	}

	builder = builder.WithMonitoring()
	if port > 0 {
		builder = builder.WithMonitorPort(port)
	}
	if openBrowser {
		builder = builder.WithBrowser()
	}

	return builder
}

// Flags win over environment variables, which win over the defaults.

func backingStorePath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("backing-store")
	if !cmd.Flags().Changed("backing-store") {
		if env, ok := os.LookupEnv("VMSIM_BACKING_STORE"); ok {
			path = env
		}
	}

	return path
}

func recordOn(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("record")
	if !cmd.Flags().Changed("record") {
		if env, ok := os.LookupEnv("VMSIM_RECORD"); ok {
			on = env == "1" || strings.EqualFold(env, "true")
		}
	}

	return on
}

func monitorPort(cmd *cobra.Command) int {
	port, _ := cmd.Flags().GetInt("monitor-port")
	if !cmd.Flags().Changed("monitor-port") {
		if env, ok := os.LookupEnv("VMSIM_MONITOR_PORT"); ok {
			if p, err := strconv.Atoi(env); err == nil {
				port = p
			}
		}
	}

	return port
}
