package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/edbridge/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved configuration and local state",
	Long: `Show the configuration the server would run with, and what local
state (history database, log file) exists on disk.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Printf("Config file: %s\n", loader.GetConfigPath())
	fmt.Printf("Data dir: %s\n", cfg.DataDir)
	fmt.Printf("Default model: %s\n", cfg.Models.Default)
	fmt.Printf("Edit format: %s\n", cfg.Engine.EditFormat)
	fmt.Printf("Search timeout: %s\n", cfg.SearchTimeout())

	if cfg.History.Enabled {
		fmt.Printf("History: %s\n", describeFile(cfg.History.Path))
	} else {
		fmt.Println("History: disabled")
	}
	fmt.Printf("Log file: %s\n", describeFile(cfg.Logging.File))

	return nil
}

func describeFile(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("%s (absent)", path)
	}
	return fmt.Sprintf("%s (%d bytes, modified %s ago)",
		path, info.Size(), formatDuration(time.Since(info.ModTime())))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
