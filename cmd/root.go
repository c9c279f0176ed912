package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/config"
	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
)

var (
	filePath string
	verbose  bool
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "klg",
	Short: "klg – track time in plain-text Klog files",
	Long: `klg reads and writes time tracking data in the Klog plain-text format.
All data is stored in a single human-readable file, ~/.klog/time.klg by default.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Klog file to use (default ~/.klog/time.klg)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(outlookCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = loaded
	slog.Debug("configuration loaded", "file", cfg.File, "indentation", cfg.Render.Indentation)
	return nil
}

// workspace is the loaded Klog file plus the settings to write it back.
type workspace struct {
	path       string
	records    []*klog.Record
	render     klog.RenderOptions
	timeFormat klog.TimeFormat
}

// resolvePath picks --file, then the configured file, then the default path.
func resolvePath() (string, error) {
	if filePath != "" {
		return filePath, nil
	}
	if cfg.File != "" {
		return cfg.File, nil
	}
	return klogfile.DefaultPath()
}

// openWorkspace loads the Klog file. Storage and parse errors exit with 2,
// invalid settings with 1.
func openWorkspace() *workspace {
	render, err := cfg.RenderOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	timeFormat, err := cfg.TimeFormat()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	path, err := resolvePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	records, err := klogfile.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return &workspace{path: path, records: records, render: render, timeFormat: timeFormat}
}

func (w *workspace) save() {
	if err := klogfile.Save(w.path, w.records, w.render); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
