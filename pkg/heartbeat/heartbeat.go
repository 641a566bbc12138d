// Package heartbeat emits periodic liveness notifications and runs the
// history pruning schedule. Hosts that supervise the bridge as a child
// process use the heartbeat to detect a wedged session without issuing
// health calls of their own.
package heartbeat

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/harun/edbridge/pkg/bridge"
	"github.com/harun/edbridge/pkg/history"
)

// Config holds the schedules. Zero intervals disable the corresponding job.
type Config struct {
	// Interval between liveness notifications.
	Interval time.Duration

	// PruneInterval between history pruning runs; PruneMaxAge is the
	// retention window.
	PruneInterval time.Duration
	PruneMaxAge   time.Duration
}

// DefaultConfig returns production schedules.
func DefaultConfig() Config {
	return Config{
		Interval:      30 * time.Second,
		PruneInterval: time.Hour,
		PruneMaxAge:   30 * 24 * time.Hour,
	}
}

// Heartbeat owns the cron runner. Jobs fire on the runner's goroutine; the
// notifier serializes their frames against the transport loop's writes.
type Heartbeat struct {
	cron   *cron.Cron
	events bridge.Events
	hist   *history.Store
	config Config
}

// New registers the configured jobs. events must not be nil; hist may be
// nil if history recording is disabled.
func New(config Config, events bridge.Events, hist *history.Store) (*Heartbeat, error) {
	h := &Heartbeat{
		cron:   cron.New(),
		events: events,
		hist:   hist,
		config: config,
	}

	if config.Interval > 0 {
		spec := fmt.Sprintf("@every %s", config.Interval)
		if _, err := h.cron.AddFunc(spec, h.beat); err != nil {
			return nil, fmt.Errorf("failed to schedule heartbeat: %w", err)
		}
	}

	if config.PruneInterval > 0 && config.PruneMaxAge > 0 && hist != nil {
		spec := fmt.Sprintf("@every %s", config.PruneInterval)
		if _, err := h.cron.AddFunc(spec, h.prune); err != nil {
			return nil, fmt.Errorf("failed to schedule history pruning: %w", err)
		}
	}

	return h, nil
}

// Start launches the scheduler.
func (h *Heartbeat) Start() {
	h.cron.Start()
	log.Info().
		Dur("interval", h.config.Interval).
		Dur("prune_interval", h.config.PruneInterval).
		Msg("Heartbeat started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (h *Heartbeat) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Heartbeat stopped")
}

func (h *Heartbeat) beat() {
	h.events.Notify(bridge.LevelInfo, fmt.Sprintf("heartbeat pid=%d", os.Getpid()))
}

func (h *Heartbeat) prune() {
	if _, err := h.hist.Prune(h.config.PruneMaxAge); err != nil {
		log.Warn().Err(err).Msg("History pruning failed")
	}
}
