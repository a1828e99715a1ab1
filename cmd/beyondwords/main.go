// Package main provides the CLI entrypoint for the Meaning Beyond Language
// installation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayusman/beyondwords/internal/app"
	"github.com/ayusman/beyondwords/internal/config"
	"github.com/ayusman/beyondwords/internal/store"
)

var (
	configPath string

	runAddr       string
	runSimulate   bool
	runTray       bool
	runStaticDir  string
	runDB         string
	runSeed       int64
	runLogLevel   string
	runLogFormat  string
	runTransition string

	configInit bool

	sessionsLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "beyondwords",
		Short:         "Gesture-driven installation: three untranslatable words",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runInstallationCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file (TOML)")

	addRunFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the installation (the default command)",
		Args:  cobra.NoArgs,
		RunE:  runInstallationCmd,
	}
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSessionsCmd())

	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runAddr, "addr", "", "HTTP listen address for renderers, API and metrics")
	cmd.Flags().BoolVar(&runSimulate, "simulate", false, "replace the webcam and detector with a simulated visitor")
	cmd.Flags().BoolVar(&runTray, "tray", false, "show the operator menu in the system tray")
	cmd.Flags().StringVar(&runStaticDir, "static-dir", "", "directory holding the browser renderer")
	cmd.Flags().StringVar(&runDB, "db", "", "session journal database (empty string disables it)")
	cmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed (0 seeds from the clock)")
	cmd.Flags().StringVar(&runLogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&runLogFormat, "log-format", "", "log format: auto, console, json")
	cmd.Flags().StringVar(&runTransition, "transition", "", "transition style: scripted or simple")
}

// loadConfig reads defaults, the config file and the environment, then lets
// flags the user actually set win.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlag(cmd, "addr", &cfg.Addr, runAddr)
	applyFlag(cmd, "simulate", &cfg.Simulate, runSimulate)
	applyFlag(cmd, "tray", &cfg.Tray, runTray)
	applyFlag(cmd, "static-dir", &cfg.StaticDir, runStaticDir)
	applyFlag(cmd, "db", &cfg.DBPath, runDB)
	applyFlag(cmd, "seed", &cfg.Seed, runSeed)
	applyFlag(cmd, "log-level", &cfg.Log.Level, runLogLevel)
	applyFlag(cmd, "log-format", &cfg.Log.Format, runLogFormat)
	applyFlag(cmd, "transition", &cfg.Narrative.TransitionStyle, runTransition)

	if cfg.StaticDir == "" {
		cfg.StaticDir = findWebDir()
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyFlag[T any](cmd *cobra.Command, name string, target *T, value T) {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

// newLogger builds the process logger. "auto" picks the console writer on a
// terminal and JSON lines otherwise.
func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	console := cfg.Format == "console"
	if cfg.Format == "auto" {
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			console = true
		}
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func runInstallationCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, os.Stderr)
	if cfg.StaticDir != "" {
		logger.Info().Str("dir", cfg.StaticDir).Msg("serving renderer")
	}

	installation, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer installation.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr := installation.Tray()
	if tr == nil {
		return installation.Run(ctx)
	}

	// The tray owns the main goroutine; the installation runs beside it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	tr.OnQuit(cancel)
	tr.OnOpen(func() { logger.Info().Str("url", "http://localhost"+cfg.Addr).Msg("renderer address") })

	errCh := make(chan error, 1)
	go func() {
		errCh <- installation.Run(ctx)
		tr.Stop()
	}()
	tr.Run()
	cancel()
	return <-errCh
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective config, or create the config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configInit, "init", false, "write the defaults to the config file if it does not exist")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	if !configInit {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return config.Write(cmd.OutOrStdout(), cfg)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", configPath)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()
	if err := config.Write(f, config.Defaults()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
	return nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions [id]",
		Short: "List journaled journeys, or show one journey's phases",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSessionsCmd,
	}
	cmd.Flags().IntVar(&sessionsLimit, "limit", 20, "number of sessions to list (0 for all)")
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("no journal database configured")
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return printSession(out, st, args[0])
	}
	return printSessions(out, st, sessionsLimit)
}

func printSessions(out io.Writer, st *store.Store, limit int) error {
	sessions, err := st.Sessions().List(limit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "no sessions yet")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tCHAPTER\tCOMPLETED\tEVENTS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%d\n",
			s.ID, s.StartedAt.Local().Format(time.DateTime), s.ChapterReached+1, s.Completed, s.Events)
	}
	return tw.Flush()
}

func printSession(out io.Writer, st *store.Store, id string) error {
	sess, err := st.Sessions().GetByID(id)
	if err != nil {
		return fmt.Errorf("session %s: %w", id, err)
	}
	events, err := st.Sessions().Events(id)
	if err != nil {
		return fmt.Errorf("session %s events: %w", id, err)
	}

	fmt.Fprintf(out, "session %s (%s transitions)\n", sess.ID, sess.TransitionStyle)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tPHASE\tCHAPTER\tHAND")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n",
			e.EnteredAt.Sub(sess.StartedAt).Round(time.Millisecond), e.Phase, e.Chapter+1, e.Hand)
	}
	return tw.Flush()
}

// findWebDir searches for the renderer in common locations: "web", "../web",
// "../../web" and the data directory. Returns "" if none exists.
func findWebDir() string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(config.XDGDataHome(), "beyondwords", "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
