package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xoelrdgz/tickerwatch/internal/app"
)

var (
	cfgFile        string
	sourcePath     string
	checkpointPath string
	logLevel       string
	readCount      int
	noTUI          bool

	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tickerwatch",
	Short: "Incremental stock ticker snapshot reader",
	Long: `Tickerwatch reads an append-only stock ticker log one snapshot at a
time and fans each snapshot out to the registered observers.

A snapshot is a "Last updated <time> ET" header, one line per stock, and a
blank line. The reader keeps a byte offset so every snapshot is delivered
once, and can persist that offset across restarts.

Observers:
  - Average:   mean current price per snapshot
  - HighLow:   stocks trading within 1% of their 52-week high or low
  - Selection: full lines for a configured watchlist`,
	SilenceUsage: true,
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Dispatch the snapshots currently in the source and exit",
	Long: `Read complete snapshots from the source, starting at the saved
checkpoint (if any), and deliver them to the configured observers.

Examples:
  tickerwatch read --source ./ticker.dat
  tickerwatch read --count 1 --checkpoint ./offsets.db`,
	RunE: runRead,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the source and dispatch snapshots as they are appended",
	Long: `Follow the source file, dispatching each snapshot as soon as its
terminating blank line is written. Serves Prometheus metrics and a readiness
endpoint, and reloads the selection watchlist when the config file changes.

Examples:
  tickerwatch watch --source ./ticker.dat
  tickerwatch watch --no-tui --checkpoint ./offsets.db`,
	RunE: runWatch,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the scripted observer add/remove scenario",
	Long: `Register and remove observers between single reads:
average, read, +highlow, read, +selection, read, -selection, read,
-highlow, read.`,
	RunE: runDemo,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Tickerwatch %s\n", Version)
		fmt.Printf("Commit:  %s\n", Commit)
		fmt.Printf("Built:   %s\n", BuildTime)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sourcePath, "source", "s", "", "ticker log to read")
	rootCmd.PersistentFlags().StringVar(&checkpointPath, "checkpoint", "", "bbolt file for persisted offsets (empty keeps offsets in memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	viper.BindPFlag("source.path", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("checkpoint.path", rootCmd.PersistentFlags().Lookup("checkpoint"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	readCmd.Flags().IntVarP(&readCount, "count", "n", 0, "maximum snapshots to read (0 reads all)")
	watchCmd.Flags().BoolVar(&noTUI, "no-tui", false, "disable TUI, log to stderr")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Missing .env is the common case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/tickerwatch")
	}

	app.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn().Err(err).Msg("Error reading config file")
		}
	}

	viper.SetEnvPrefix("TICKERWATCH")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

// setupLogging configures the global logger. Human-readable output goes to
// stderr unless the TUI owns the terminal; logging.file adds a rotated copy.
func setupLogging(console bool) io.Closer {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch viper.GetString("logging.level") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var out io.Writer = os.Stderr
	if console {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	path := viper.GetString("logging.file")
	if path == "" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return nopCloser{}
	}

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	if console {
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(out, rotated)).With().Timestamp().Logger()
	} else {
		// The TUI owns the terminal; only the file gets log lines.
		log.Logger = zerolog.New(rotated).With().Timestamp().Logger()
	}
	return rotated
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
