package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petems/audio-recorder/internal/capture"
	"github.com/petems/audio-recorder/internal/command"
	"github.com/petems/audio-recorder/internal/config"
	"github.com/petems/audio-recorder/internal/frame"
	"github.com/petems/audio-recorder/internal/logging"
	"github.com/petems/audio-recorder/internal/session"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"

	cfgFile        string
	logLevel       string
	logFile        string
	silentFailures bool
	force          bool
)

var rootCmd = &cobra.Command{
	Use:   "audio-recorder",
	Short: "Microphone capture helper",
	Long: `Audio Recorder - a long-lived capture helper driven over stdio.

It reads newline-delimited JSON commands (start, stop, list-devices)
on stdin and writes length-prefixed frames on stdout: JSON control
responses and 16 kHz mono s16le audio.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRecorder()
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture devices",
	Run: func(cmd *cobra.Command, args []string) {
		listDevices()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("audio-recorder %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is audio-recorder.yaml in the user config dir)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file in addition to stderr")
	rootCmd.Flags().BoolVar(&silentFailures, "silent-failures", false, "do not emit error frames when a start command fails")
	rootCmd.Flags().BoolVar(&force, "force", false, "allow binary frame output on a terminal")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRecorder() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if silentFailures {
		cfg.SilentFailures = true
	}

	// The frame stream is binary. Refuse to dump it on an interactive
	// terminal unless the caller insists.
	if term.IsTerminal(int(os.Stdout.Fd())) && !force {
		fmt.Fprintln(os.Stderr, "stdout is a terminal: pipe the frame stream to a consumer or pass --force")
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)

	engine, err := capture.NewEngine(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio engine")
	}
	defer engine.Close()

	writer := frame.NewWriter(os.Stdout)
	queue := command.NewQueue()
	source := command.NewSource(os.Stdin, queue, log)
	go source.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		queue.Close()
	}()

	ctrl := session.NewController(session.Config{
		Engine:         engine,
		Writer:         writer,
		Queue:          queue,
		Logger:         log,
		SilentFailures: cfg.SilentFailures,
	})

	log.Info().Str("version", Version).Msg("Audio recorder ready")
	ctrl.Run()
	log.Info().Msg("Audio recorder stopped")
}

func listDevices() {
	log := logging.New("error", "")

	engine, err := capture.NewEngine(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize audio engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	devices, err := engine.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}
	if len(devices) == 0 {
		fmt.Println("No input devices found.")
		return
	}
	for _, d := range devices {
		name := d.Name
		if name == "" {
			name = session.UnknownDeviceName
		}
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
}
