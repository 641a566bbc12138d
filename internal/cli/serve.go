package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/edbridge/internal/config"
	"github.com/harun/edbridge/internal/logger"
	"github.com/harun/edbridge/pkg/bridge"
	"github.com/harun/edbridge/pkg/heartbeat"
	"github.com/harun/edbridge/pkg/history"
	"github.com/harun/edbridge/pkg/rpc"
	"github.com/harun/edbridge/pkg/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge server on stdin/stdout",
	Long: `Run the bridge server in the foreground. The server reads one
JSON-RPC frame per line from stdin and writes responses, notifications and
stream events to stdout. It exits on EOF, the __EXIT__ sentinel, or a fatal
read error.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    false,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer lg.Close()

	notifier := rpc.NewNotifier(os.Stdout)

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer hist.Close()
	}

	opts := bridge.Options{
		Events:        notifier,
		History:       hist,
		AutoCommits:   cfg.Engine.AutoCommits,
		DirtyCommits:  cfg.Engine.DirtyCommits,
		EditFormat:    cfg.Engine.EditFormat,
		SearchTimeout: cfg.SearchTimeout(),
	}

	if cfg.Watcher.Enabled {
		fw, err := watcher.New(watcher.Config{
			StabilityThreshold: cfg.StabilityThreshold(),
			OnChange: func(path string) {
				notifier.Notify(bridge.LevelWarning,
					fmt.Sprintf("File changed outside session: %s", path))
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		fw.Start()
		defer fw.Stop()
		opts.Watcher = fw
	}

	session := bridge.NewSession(opts)

	if cfg.Heartbeat.Enabled {
		hb, err := heartbeat.New(heartbeat.Config{
			Interval:      cfg.HeartbeatInterval(),
			PruneInterval: time.Hour,
			PruneMaxAge:   cfg.HistoryMaxAge(),
		}, notifier, hist)
		if err != nil {
			return fmt.Errorf("failed to create heartbeat: %w", err)
		}
		hb.Start()
		defer hb.Stop()
	}

	dispatcher := rpc.Registry(session, rpc.RegistryConfig{
		DefaultModel: cfg.Models.Default,
		ModelAliases: cfg.Models.Aliases,
	})

	server := rpc.NewServer(os.Stdin, notifier, dispatcher, session)
	return server.Run(cmd.Context())
}
